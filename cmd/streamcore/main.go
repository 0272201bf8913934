// Command streamcore serves an MJPEG stream plus a /snapshot and /ping
// status endpoint in front of a producer-fed frame slot.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/kardianos/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/warpcomdev/streamcore/internal/demosource"
	"github.com/warpcomdev/streamcore/internal/engine"
	"github.com/warpcomdev/streamcore/internal/feed"
	"github.com/warpcomdev/streamcore/internal/servicelog"
)

func loadConfig(path string) (*Config, error) {
	var config Config
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config %s: %w", path, err)
		}
		defer f.Close()
		if err := json.NewDecoder(f).Decode(&config); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}
	if err := config.Check(); err != nil {
		return nil, err
	}
	return &config, nil
}

func main() {
	configPath := flag.String("config", "", "path to a JSON config file")
	install := flag.Bool("install", false, "install as an OS service and exit")
	uninstall := flag.Bool("uninstall", false, "uninstall the OS service and exit")
	flag.Parse()

	config, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := servicelog.New(servicelog.Options{Debug: config.Debug, LogFile: config.LogFile})
	if err != nil {
		fmt.Fprintln(os.Stderr, "can't initialize logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	stream := feed.New()
	server := engine.New(
		stream,
		time.Duration(config.RefreshIntervalMicros)*time.Microsecond,
		time.Duration(config.IdleTimeoutSeconds)*time.Second,
		logger,
		prometheus.DefaultRegisterer,
	)
	if err := server.Listen(config.Host, config.Port); err != nil {
		logger.Fatal("listen failed", servicelog.Error(err))
	}

	if config.MetricsAddr != "" {
		go serveMetrics(config.MetricsAddr, logger)
	}

	stopProducer := startProducer(context.Background(), config, stream, logger)
	defer stopProducer()

	svcConfig := &service.Config{
		Name:        "streamcore",
		DisplayName: "streamcore MJPEG server",
		Description: "Serves an MJPEG stream, snapshot and ping endpoint from a producer-fed frame slot.",
	}
	prg := &program{server: server, logger: logger}
	svc, err := service.New(prg, svcConfig)
	if err != nil {
		logger.Fatal("service init failed", servicelog.Error(err))
	}

	switch {
	case *install:
		if err := svc.Install(); err != nil {
			logger.Fatal("service install failed", servicelog.Error(err))
		}
		fmt.Println("service installed")
		return
	case *uninstall:
		if err := svc.Uninstall(); err != nil {
			logger.Fatal("service uninstall failed", servicelog.Error(err))
		}
		fmt.Println("service uninstalled")
		return
	}

	logger.Info("starting", servicelog.String("addr", server.Addr().String()))
	if err := svc.Run(); err != nil {
		logger.Fatal("service run failed", servicelog.Error(err))
	}
}

func serveMetrics(addr string, logger servicelog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info("metrics listening", servicelog.String("addr", addr))
	srv := &http.Server{Addr: addr, Handler: mux}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics server stopped", servicelog.Error(err))
	}
}

// startProducer wires the demo frame producer chosen by config and returns
// a cleanup func. It is a no-op producer (stream just never updates, so
// the engine serves the blank picture forever) when neither DemoImagePath
// nor RemoteSourceURL is configured.
func startProducer(ctx context.Context, config *Config, stream *feed.Stream, logger servicelog.Logger) func() {
	ctx, cancel := context.WithCancel(ctx)
	switch {
	case config.RemoteSourceURL != "":
		remote := demosource.NewRemoteSource(config.RemoteSourceURL, nil, stream, logger)
		go remote.Run(ctx, time.Duration(config.RemotePollSeconds)*time.Second)
		return cancel
	case config.DemoImagePath != "":
		producer := demosource.New(stream, logger)
		if err := producer.Load(os.DirFS("."), config.DemoImagePath); err != nil {
			logger.Warn("demo image load failed", servicelog.Error(err))
		}
		go producer.Run(ctx, config.DemoFPS)
		if config.DemoWatchDir != "" {
			if _, err := demosource.Watch(producer, config.DemoWatchDir, logger); err != nil {
				logger.Warn("demo watch failed", servicelog.Error(err))
			}
		}
		return cancel
	default:
		return cancel
	}
}
