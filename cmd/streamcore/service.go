package main

import (
	"context"

	"github.com/kardianos/service"

	"github.com/warpcomdev/streamcore/internal/engine"
	"github.com/warpcomdev/streamcore/internal/servicelog"
)

// program adapts the engine's blocking Run/Stop lifecycle to
// github.com/kardianos/service's Start/Stop contract, so the same binary
// can run attached to a terminal or installed as a platform service
// (systemd, Windows Service, launchd).
type program struct {
	server *engine.Server
	logger servicelog.Logger
	cancel context.CancelFunc
}

func (p *program) Start(s service.Service) error {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	go func() {
		if err := p.server.Run(ctx); err != nil {
			p.logger.Error("engine run failed", servicelog.Error(err))
		}
	}()
	return nil
}

func (p *program) Stop(s service.Service) error {
	p.server.Stop()
	if p.cancel != nil {
		p.cancel()
	}
	// Close blocks until Run has actually returned before touching the
	// registry, so it is safe to call right after Stop here.
	return p.server.Close()
}
