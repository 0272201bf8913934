package main

import "errors"

// Config is the binary's configuration surface, expanded with the ambient
// fields a deployable binary needs: where to log, where to expose metrics,
// and how to seed the demo producer. json/toml/yaml tags on every field,
// defaults applied by Check.
type Config struct {
	Host                  string `json:"Host" toml:"Host" yaml:"Host"`
	Port                  int    `json:"Port" toml:"Port" yaml:"Port"`
	IdleTimeoutSeconds    int    `json:"IdleTimeoutSeconds" toml:"IdleTimeoutSeconds" yaml:"IdleTimeoutSeconds"`
	RefreshIntervalMicros int    `json:"RefreshIntervalMicros" toml:"RefreshIntervalMicros" yaml:"RefreshIntervalMicros"`

	Debug   bool   `json:"Debug" toml:"Debug" yaml:"Debug"`
	LogFile string `json:"LogFile" toml:"LogFile" yaml:"LogFile"`

	MetricsAddr string `json:"MetricsAddr" toml:"MetricsAddr" yaml:"MetricsAddr"`

	DemoImagePath string `json:"DemoImagePath" toml:"DemoImagePath" yaml:"DemoImagePath"`
	DemoWatchDir  string `json:"DemoWatchDir" toml:"DemoWatchDir" yaml:"DemoWatchDir"`
	DemoFPS       int    `json:"DemoFPS" toml:"DemoFPS" yaml:"DemoFPS"`

	RemoteSourceURL   string `json:"RemoteSourceURL" toml:"RemoteSourceURL" yaml:"RemoteSourceURL"`
	RemotePollSeconds int    `json:"RemotePollSeconds" toml:"RemotePollSeconds" yaml:"RemotePollSeconds"`
}

// Check applies documented defaults (localhost, 8080, 10s, 30000us) and
// validates what can't be defaulted.
func (c *Config) Check() error {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port < 1 || c.Port > 65535 {
		c.Port = 8080
	}
	if c.IdleTimeoutSeconds < 1 {
		c.IdleTimeoutSeconds = 10
	}
	if c.RefreshIntervalMicros < 1 {
		c.RefreshIntervalMicros = 30000
	}
	if c.DemoFPS < 1 {
		c.DemoFPS = 15
	}
	if c.RemotePollSeconds < 1 {
		c.RemotePollSeconds = 5
	}
	if c.RemoteSourceURL != "" && c.DemoImagePath != "" {
		return errors.New("DemoImagePath and RemoteSourceURL are mutually exclusive")
	}
	return nil
}
