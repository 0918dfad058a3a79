// Package server exposes the mixed feed and ratio preferences over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dtnitsch/localfeed/models"
	"github.com/dtnitsch/localfeed/pkg/db"
	"github.com/dtnitsch/localfeed/pkg/mixer"
	"github.com/dtnitsch/localfeed/pkg/ratio"
)

// ItemSource supplies the candidate pool for a feed. *db.DB implements it.
type ItemSource interface {
	GetItems(q db.ItemQuery) ([]models.ContentItem, error)
}

// Config holds the HTTP and feed settings of a Server.
type Config struct {
	DefaultN int
	MaxN     int
	// Mode is the match mode used when a request names none.
	Mode mixer.MatchMode
	// Window bounds item age. Zero means no bound.
	Window time.Duration
	// RateLimit is requests per minute per client IP. Zero disables it.
	RateLimit int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// poolLimit caps how many stored items one feed request considers.
const poolLimit = 2000

type Server struct {
	items   ItemSource
	prefs   *ratio.Service
	mixers  map[mixer.MatchMode]*mixer.Mixer
	cfg     Config
	logger  *zap.Logger
	metrics *Metrics
	now     func() time.Time
}

// New builds a Server. mixOpts are applied to the mixer of every match mode.
func New(items ItemSource, prefs *ratio.Service, cfg Config, logger *zap.Logger, mixOpts ...mixer.Option) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultN <= 0 {
		cfg.DefaultN = 20
	}
	if cfg.MaxN < cfg.DefaultN {
		cfg.MaxN = cfg.DefaultN
	}
	if cfg.Mode == "" {
		cfg.Mode = mixer.MatchHybrid
	}

	s := &Server{
		items:   items,
		prefs:   prefs,
		mixers:  make(map[mixer.MatchMode]*mixer.Mixer, 3),
		cfg:     cfg,
		logger:  logger.Named("server"),
		metrics: NewMetrics(),
		now:     time.Now,
	}

	for _, mode := range []mixer.MatchMode{mixer.MatchText, mixer.MatchTags, mixer.MatchHybrid} {
		m, err := mixer.NewMatcher(mode)
		if err != nil {
			return nil, err
		}
		opts := append([]mixer.Option{mixer.WithLogger(logger.Named("mixer"))}, mixOpts...)
		opts = append(opts, mixer.WithMatcher(m))
		s.mixers[mode] = mixer.New(opts...)
	}
	if _, ok := s.mixers[cfg.Mode]; !ok {
		return nil, fmt.Errorf("unknown match mode %q", cfg.Mode)
	}
	return s, nil
}

// Metrics returns the server's prometheus metrics.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
