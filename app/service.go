// Package app wires configuration, stores, the engine and the HTTP surface
// into a runnable service.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/platotv/plato/api"
	"github.com/platotv/plato/config"
	"github.com/platotv/plato/core/engine"
	corelogger "github.com/platotv/plato/core/logger"
	"github.com/platotv/plato/infra/logger"
	"github.com/platotv/plato/infra/metrics"
	"github.com/platotv/plato/infra/mqtt"
	"github.com/platotv/plato/infra/store"
	"github.com/platotv/plato/internal/eventbus"
)

// Store is the full persistence surface the service needs.
type Store interface {
	engine.SnapshotReader
	engine.TaskWriter
	engine.SettingsStore
}

// Service holds the wired components of the scheduling API.
type Service struct {
	Engine   *engine.Engine
	Settings engine.SettingsStore

	cfg     *config.Config
	bus     *eventbus.Bus
	log     corelogger.Logger
	mqttCli *mqtt.Client
	closers []func() error
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	st, closeStore, err := openStore(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	sink, err := metrics.FromConfig(cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	bus := eventbus.New()
	eng, err := engine.New(st, st, sink, bus, logger.New("engine"), engine.Config{
		MealTemplateName: cfg.Engine.MealTemplateName,
	})
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	svc := &Service{
		Engine:   eng,
		Settings: st,
		cfg:      cfg,
		bus:      bus,
		log:      logg,
	}
	if closeStore != nil {
		svc.closers = append(svc.closers, closeStore)
	}

	if cfg.MQTT.Enabled {
		cli, err := mqtt.NewClient(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.mqttCli = cli
	}
	return svc, nil
}

func openStore(cfg config.StoreConfig) (Store, func() error, error) {
	switch cfg.Driver {
	case "memory":
		return store.NewMemoryStore(), nil, nil
	default:
		st, err := store.NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	}
}

// Run starts the HTTP listener and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.mqttCli != nil {
		notifier := mqtt.NewNotifier(s.mqttCli, s.bus, s.cfg.MQTT.TopicPrefix, logger.New("mqtt-notifier"))
		go notifier.Run(ctx)
	}
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:    s.cfg.HTTP.Addr,
		Handler: api.NewMux(s.Engine, s.Settings),
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", s.cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if s.mqttCli != nil {
		s.mqttCli.Close()
	}
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
