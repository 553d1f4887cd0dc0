package favorites

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"cinechat/internal/config"
	"cinechat/internal/services"
)

// DefaultCapacity is the number of favorites kept when none is configured.
const DefaultCapacity = 10

// Favorite is one saved movie.
type Favorite struct {
	MovieID      int64     `json:"id"`
	Title        string    `json:"title"`
	BackdropPath string    `json:"backdrop_path,omitempty"`
	SavedAt      time.Time `json:"saved_at"`
}

// Store manages favorites persistence backed by SQLite.
type Store struct {
	db       *sql.DB
	path     string
	capacity int
	now      func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source used for SavedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open initializes or connects to the favorites database described by cfg.
func Open(cfg *config.Config, opts ...Option) (*Store, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "favorites", "open", "config is required", nil)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.Favorites.Path, cfg.Favorites.Capacity, opts...)
}

// OpenPath opens the database at path keeping at most capacity entries.
func OpenPath(path string, capacity int, opts ...Option) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, services.Wrap(services.ErrConfiguration, "favorites", "open", "database path is required", nil)
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create favorites directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, capacity: capacity, now: time.Now}
	for _, opt := range opts {
		opt(store)
	}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Capacity returns the maximum number of entries kept.
func (s *Store) Capacity() int { return s.capacity }

// Add saves fav at the front of the list. Re-adding an existing movie moves it
// to the front and refreshes its title; entries beyond capacity are evicted
// oldest first. The evicted movie ids are returned.
func (s *Store) Add(ctx context.Context, fav Favorite) (Favorite, []int64, error) {
	if fav.MovieID <= 0 {
		return Favorite{}, nil, services.Wrap(services.ErrValidation, "favorites", "add", "movie id must be positive", nil)
	}
	fav.Title = strings.TrimSpace(fav.Title)
	if fav.Title == "" {
		return Favorite{}, nil, services.Wrap(services.ErrValidation, "favorites", "add", "title is required", nil)
	}
	fav.BackdropPath = strings.TrimSpace(fav.BackdropPath)
	fav.SavedAt = s.now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Favorite{}, nil, fmt.Errorf("begin add tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var seq int64
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) + 1 FROM favorites").Scan(&seq); err != nil {
		return Favorite{}, nil, fmt.Errorf("next sequence: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO favorites (movie_id, title, backdrop_path, saved_at, seq)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(movie_id) DO UPDATE SET
             title = excluded.title,
             backdrop_path = excluded.backdrop_path,
             saved_at = excluded.saved_at,
             seq = excluded.seq`,
		fav.MovieID,
		fav.Title,
		nullableString(fav.BackdropPath),
		fav.SavedAt.Format(time.RFC3339Nano),
		seq,
	)
	if err != nil {
		return Favorite{}, nil, fmt.Errorf("upsert favorite: %w", err)
	}

	evicted, err := evictBeyond(ctx, tx, s.capacity)
	if err != nil {
		return Favorite{}, nil, err
	}
	if err := tx.Commit(); err != nil {
		return Favorite{}, nil, fmt.Errorf("commit add: %w", err)
	}
	return fav, evicted, nil
}

func evictBeyond(ctx context.Context, tx *sql.Tx, capacity int) ([]int64, error) {
	rows, err := tx.QueryContext(ctx, "SELECT movie_id FROM favorites ORDER BY seq DESC LIMIT -1 OFFSET ?", capacity)
	if err != nil {
		return nil, fmt.Errorf("select overflow: %w", err)
	}
	var evicted []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan overflow: %w", err)
		}
		evicted = append(evicted, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate overflow: %w", err)
	}
	rows.Close()

	for _, id := range evicted {
		if _, err := tx.ExecContext(ctx, "DELETE FROM favorites WHERE movie_id = ?", id); err != nil {
			return nil, fmt.Errorf("evict favorite %d: %w", id, err)
		}
	}
	return evicted, nil
}

// List returns every favorite, most recently saved first.
func (s *Store) List(ctx context.Context) ([]Favorite, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT movie_id, title, backdrop_path, saved_at FROM favorites ORDER BY seq DESC")
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	favorites := []Favorite{}
	for rows.Next() {
		fav, err := scanFavorite(rows)
		if err != nil {
			return nil, err
		}
		favorites = append(favorites, fav)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorites: %w", err)
	}
	return favorites, nil
}

// Get returns the favorite for movieID, or nil when it is not saved.
func (s *Store) Get(ctx context.Context, movieID int64) (*Favorite, error) {
	row := s.db.QueryRowContext(ctx, "SELECT movie_id, title, backdrop_path, saved_at FROM favorites WHERE movie_id = ?", movieID)
	fav, err := scanFavorite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fav, nil
}

// Remove deletes movieID and reports whether it was saved.
func (s *Store) Remove(ctx context.Context, movieID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM favorites WHERE movie_id = ?", movieID)
	if err != nil {
		return false, fmt.Errorf("remove favorite: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Clear deletes every favorite and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM favorites")
	if err != nil {
		return 0, fmt.Errorf("clear favorites: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFavorite(row scanner) (Favorite, error) {
	var (
		fav      Favorite
		backdrop sql.NullString
		savedAt  string
	)
	if err := row.Scan(&fav.MovieID, &fav.Title, &backdrop, &savedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Favorite{}, err
		}
		return Favorite{}, fmt.Errorf("scan favorite: %w", err)
	}
	if backdrop.Valid {
		fav.BackdropPath = backdrop.String
	}
	if ts, err := time.Parse(time.RFC3339Nano, savedAt); err == nil {
		fav.SavedAt = ts
	}
	return fav, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
