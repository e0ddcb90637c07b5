package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"veriscan/internal/api"
	"veriscan/internal/config"
	"veriscan/internal/deps"
	"veriscan/internal/logging"
	"veriscan/internal/ocr"
	"veriscan/internal/ocr/tesseract"
	"veriscan/internal/reconcile"
	"veriscan/internal/report"
	"veriscan/internal/session"
	"veriscan/internal/store"
)

// Daemon wires the verification service together: the document store, the
// in-memory session manager, the extraction provider, and the HTTP API. It
// enforces single-instance execution via a file lock.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *store.Store
	manager  *session.Manager
	service  *api.DocumentService
	provider ocr.Provider
	server   *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	StorePath    string
	LockFilePath string
	Provider     string
	Documents    map[session.State]int
	StoreHealth  store.Health
	Dependencies []deps.Status
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, and logger")
	}

	provider := newProvider(cfg)
	manager := session.NewManager(st, session.Policy{
		Thresholds: reconcile.Thresholds{
			Match:      cfg.Verification.MatchThreshold,
			Divergence: cfg.Verification.DivergenceThreshold,
		},
		Required: cfg.RequiredKinds(),
	}, logger)
	reports := report.NewGenerator(cfg, logger)
	service := api.NewDocumentService(manager, provider, reports, cfg.Paths.UploadDir, logger)

	lockPath := filepath.Join(cfg.Paths.LogDir, "veriscand.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		manager:  manager,
		service:  service,
		provider: provider,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	server, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.server = server
	return d, nil
}

func newProvider(cfg *config.Config) ocr.Provider {
	if cfg.OCR.Enabled {
		return tesseract.New(cfg)
	}
	return ocr.Disabled()
}

// Start acquires the daemon lock, restores persisted sessions, and launches
// the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another veriscan daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.restoreSessions(d.ctx); err != nil {
		d.logger.Warn("failed to restore persisted sessions", logging.Error(err))
	}
	if err := d.server.start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("veriscan daemon started",
		logging.String("lock", d.lockPath),
		logging.String("provider", d.provider.Name()))
	return nil
}

func (d *Daemon) restoreSessions(ctx context.Context) error {
	sessions, err := d.store.List(ctx)
	if err != nil {
		return err
	}
	d.manager.Restore(sessions...)
	if len(sessions) > 0 {
		d.logger.Info("restored persisted sessions", logging.Int("count", len(sessions)))
	}
	return nil
}

// Stop shuts down the API server and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.server.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("veriscan daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Addr returns the listener address once the API server is running.
func (d *Daemon) Addr() string {
	return d.server.addr()
}

// Documents exposes the document service for API handlers and tests.
func (d *Daemon) Documents() *api.DocumentService {
	return d.service
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	health, err := d.store.CheckHealth(context.Background())
	if err != nil && health.Error == "" {
		health.Error = err.Error()
	}
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		StorePath:    d.store.Path(),
		LockFilePath: d.lockPath,
		Provider:     d.provider.Name(),
		Documents:    d.manager.Stats(),
		StoreHealth:  health,
		Dependencies: deps.CheckBinaries(deps.Requirements(d.cfg)),
	}
}
