package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gofrs/flock"

	"cinechat/internal/config"
	"cinechat/internal/favorites"
	"cinechat/internal/logging"
	"cinechat/internal/search"
)

// Daemon owns the HTTP service and enforces single-instance execution.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	pipeline  *search.Pipeline
	favorites *favorites.Store
	api       *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool   `json:"running"`
	Address       string `json:"address,omitempty"`
	Provider      string `json:"provider"`
	Model         string `json:"model"`
	Language      string `json:"language"`
	FavoritesPath string `json:"favorites_path,omitempty"`
	LockFilePath  string `json:"lock_file_path"`
}

// New constructs a daemon with initialized dependencies. The favorites store
// is optional; without it the favorites endpoints answer 503.
func New(cfg *config.Config, pipeline *search.Pipeline, store *favorites.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || pipeline == nil {
		return nil, errors.New("daemon requires config and search pipeline")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:       cfg,
		logger:    logger,
		pipeline:  pipeline,
		favorites: store,
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}
	d.api = newAPIServer(cfg.Server.Bind, cfg.Server.APIToken, d, logger)
	return d, nil
}

// Handler exposes the HTTP routes, including authentication.
func (d *Daemon) Handler() http.Handler {
	return d.api.handler
}

// Start acquires the instance lock and begins serving HTTP.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := d.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another cinechat server instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}
	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("cinechat server started",
		logging.String("address", d.api.address()),
		logging.String("provider", d.cfg.LLM.Provider),
		logging.String("model", d.cfg.ProviderModel()),
		logging.String("lock", d.lockPath),
	)
	return nil
}

// Stop stops serving and releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release server lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("cinechat server stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.favorites != nil {
		return d.favorites.Close()
	}
	return nil
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	status := Status{
		Running:      d.running.Load(),
		Provider:     d.cfg.LLM.Provider,
		Model:        d.cfg.ProviderModel(),
		Language:     d.cfg.TMDB.Language,
		LockFilePath: d.lockPath,
	}
	if status.Running {
		status.Address = d.api.address()
	}
	if d.favorites != nil {
		status.FavoritesPath = d.favorites.Path()
	}
	return status
}
