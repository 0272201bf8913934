// Package servicelog is the structured logging facade used throughout this
// module. It wraps go.uber.org/zap with a small attribute-builder API so
// call sites never import zap directly. It can write to a rotating file sink
// via gopkg.in/natefinch/lumberjack.v2, and mirrors Error and Fatal messages
// into a github.com/kardianos/service Logger when one is passed in Options.
package servicelog

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kardianos/service"
	"go.uber.org/zap"
	"gopkg.in/natefinch/lumberjack.v2"
)

type lumberjackSink struct {
	*lumberjack.Logger
}

func (lumberjackSink) Sync() error {
	return nil
}

// Attrib is one logging attribute, rendered lazily into a message.
type Attrib func(sb *strings.Builder)

func printer(name string, val interface{}) Attrib {
	return func(sb *strings.Builder) {
		sb.WriteString(", ")
		sb.WriteString(name)
		sb.WriteString("=")
		writeValue(sb, val)
	}
}

func writeValue(sb *strings.Builder, val interface{}) {
	switch v := val.(type) {
	case string:
		sb.WriteString(v)
	case error:
		if v != nil {
			sb.WriteString(v.Error())
		}
	default:
		fmt.Fprintf(sb, "%v", v)
	}
}

// String builds a string-valued attribute.
func String(name, value string) Attrib { return printer(name, value) }

// Error builds an "error=" attribute.
func Error(err error) Attrib { return printer("error", err) }

// Bool builds a bool-valued attribute.
func Bool(name string, value bool) Attrib { return printer(name, value) }

// Int builds an int-valued attribute.
func Int(name string, value int) Attrib { return printer(name, value) }

// Duration builds a time.Duration-valued attribute.
func Duration(name string, value time.Duration) Attrib { return printer(name, value) }

// Logger is the logging interface the rest of this module depends on.
type Logger interface {
	With(attrs ...Attrib) Logger
	Info(msg string, attrs ...Attrib)
	Error(msg string, attrs ...Attrib)
	Warn(msg string, attrs ...Attrib)
	Debug(msg string, attrs ...Attrib)
	Fatal(msg string, attrs ...Attrib)
	Sync() error
}

type logger struct {
	zap   *zap.Logger
	svc   service.Logger
	attrs []Attrib
}

// Options configure a Logger built by New.
type Options struct {
	Debug   bool           // development zap config instead of production
	LogFile string         // if set, registers a rotating lumberjack sink
	Service service.Logger // optional: mirror Fatal/Error into the OS service log
}

// New builds the module's Logger: a zap production or development config,
// with an optional lumberjack rotating-file sink registered under the
// "lumberjack://" scheme.
func New(opts Options) (Logger, error) {
	var config zap.Config
	if opts.Debug {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
	}
	if opts.LogFile != "" {
		zap.RegisterSink("lumberjack", func(u *url.URL) (zap.Sink, error) {
			return lumberjackSink{Logger: &lumberjack.Logger{Filename: u.Path}}, nil
		})
		config.OutputPaths = []string{"lumberjack://" + opts.LogFile}
	}
	z, err := config.Build()
	if err != nil {
		return nil, err
	}
	return &logger{zap: z, svc: opts.Service}, nil
}

func (l *logger) render(msg string, attrs ...Attrib) string {
	var sb strings.Builder
	sb.WriteString(msg)
	for _, a := range l.attrs {
		a(&sb)
	}
	for _, a := range attrs {
		a(&sb)
	}
	return sb.String()
}

func (l *logger) Info(msg string, attrs ...Attrib) {
	l.zap.Info(l.render(msg, attrs...))
}

func (l *logger) Error(msg string, attrs ...Attrib) {
	message := l.render(msg, attrs...)
	l.zap.Error(message)
	if l.svc != nil {
		l.svc.Error(message)
	}
}

func (l *logger) Warn(msg string, attrs ...Attrib) {
	l.zap.Warn(l.render(msg, attrs...))
}

func (l *logger) Debug(msg string, attrs ...Attrib) {
	l.zap.Debug(l.render(msg, attrs...))
}

func (l *logger) Fatal(msg string, attrs ...Attrib) {
	message := l.render(msg, attrs...)
	if l.svc != nil {
		l.svc.Error(message)
	}
	l.zap.Fatal(message)
}

func (l *logger) Sync() error {
	return l.zap.Sync()
}

func (l *logger) With(attrs ...Attrib) Logger {
	next := &logger{zap: l.zap, svc: l.svc}
	next.attrs = make([]Attrib, 0, len(l.attrs)+len(attrs))
	next.attrs = append(next.attrs, l.attrs...)
	next.attrs = append(next.attrs, attrs...)
	return next
}
