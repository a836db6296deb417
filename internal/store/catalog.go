// Package store is the sqlite-backed movie catalog: movies, users, reviews,
// watchlists, genres, and awards, plus the release queries the notification
// scanner runs.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/cinehub/cinehub-service/internal/domain/model"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

const movieCacheSize = 512

// CatalogStore wraps a bounded sqlite pool. Movie-by-id reads go through an
// LRU cache that write paths invalidate.
type CatalogStore struct {
	db         *sqlx.DB
	movieCache *lru.Cache[int64, model.Movie]
	now        func() time.Time
}

// NewCatalogStore opens (or creates) the database at dbPath, enables WAL,
// bounds the pool, and applies pending schema migrations.
func NewCatalogStore(dbPath string, maxOpenConns int) (*CatalogStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %q: %w", pragma, err)
		}
	}

	if maxOpenConns <= 0 {
		maxOpenConns = 20
	}
	db.SetMaxOpenConns(maxOpenConns)

	cache, err := lru.New[int64, model.Movie](movieCacheSize)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("building movie cache: %w", err)
	}

	s := &CatalogStore{db: db, movieCache: cache, now: time.Now}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// WithClock overrides the store's time source. Test hook.
func (s *CatalogStore) WithClock(now func() time.Time) *CatalogStore {
	s.now = now
	return s
}

func (s *CatalogStore) Close() error {
	return s.db.Close()
}

func (s *CatalogStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}
	if tableCount > 0 {
		if err := s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}
	return nil
}

// Ping is the lightweight connectivity probe used by the scanner's health
// check.
func (s *CatalogStore) Ping(ctx context.Context) error {
	var one int
	return s.db.GetContext(ctx, &one, "SELECT 1")
}

// mapError translates driver errors into the store's sentinel taxonomy.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return ErrDuplicate
	default:
		return err
	}
}

// --- release queries (scanner collaborator) ---

const releaseColumns = "id, title, release_date, poster_url"

// UpcomingReleases returns movies releasing after now and within the window.
func (s *CatalogStore) UpcomingReleases(ctx context.Context, within time.Duration) ([]model.Release, error) {
	now := s.now().UTC()
	var out []model.Release
	err := s.db.SelectContext(ctx, &out, `
		SELECT `+releaseColumns+`
		FROM movies
		WHERE release_date IS NOT NULL
		  AND release_date > ?
		  AND release_date <= ?
		ORDER BY release_date ASC`,
		now, now.Add(within),
	)
	return out, err
}

// FutureReleases returns every movie with a release date after now, no
// window limit.
func (s *CatalogStore) FutureReleases(ctx context.Context) ([]model.Release, error) {
	var out []model.Release
	err := s.db.SelectContext(ctx, &out, `
		SELECT `+releaseColumns+`
		FROM movies
		WHERE release_date IS NOT NULL
		  AND release_date > ?
		ORDER BY release_date ASC`,
		s.now().UTC(),
	)
	return out, err
}

// TodayReleases returns movies whose release date falls on the current
// calendar day.
func (s *CatalogStore) TodayReleases(ctx context.Context) ([]model.Release, error) {
	var out []model.Release
	err := s.db.SelectContext(ctx, &out, `
		SELECT `+releaseColumns+`
		FROM movies
		WHERE release_date IS NOT NULL
		  AND date(release_date) = date(?)
		ORDER BY release_date ASC`,
		s.now().UTC(),
	)
	return out, err
}

// Usernames lists every registered user, the fan-out set for scanner passes.
func (s *CatalogStore) Usernames(ctx context.Context) ([]string, error) {
	var out []string
	err := s.db.SelectContext(ctx, &out, "SELECT username FROM users ORDER BY username")
	return out, err
}

// --- movies ---

func (s *CatalogStore) ListMovies(ctx context.Context) ([]model.Movie, error) {
	var out []model.Movie
	err := s.db.SelectContext(ctx, &out, "SELECT * FROM movies ORDER BY year DESC")
	return out, err
}

func (s *CatalogStore) GetMovie(ctx context.Context, id int64) (*model.Movie, error) {
	if m, ok := s.movieCache.Get(id); ok {
		return &m, nil
	}

	var m model.Movie
	if err := s.db.GetContext(ctx, &m, "SELECT * FROM movies WHERE id = ?", id); err != nil {
		return nil, mapError(err)
	}
	s.movieCache.Add(id, m)
	return &m, nil
}

func (s *CatalogStore) CreateMovie(ctx context.Context, m *model.Movie) error {
	res, err := s.db.NamedExecContext(ctx, `
		INSERT INTO movies (
			title, year, release_date, plot, budget, boxoffice,
			rating, runtime, votes, poster_url, rating_label, trailer_link
		) VALUES (
			:title, :year, :release_date, :plot, :budget, :boxoffice,
			:rating, :runtime, :votes, :poster_url, :rating_label, :trailer_link
		)`, m)
	if err != nil {
		return mapError(err)
	}
	m.ID, err = res.LastInsertId()
	return err
}

func (s *CatalogStore) UpdateMovie(ctx context.Context, m *model.Movie) error {
	res, err := s.db.NamedExecContext(ctx, `
		UPDATE movies SET
			title = :title, year = :year, release_date = :release_date,
			plot = :plot, budget = :budget, boxoffice = :boxoffice,
			rating = :rating, runtime = :runtime, votes = :votes,
			poster_url = :poster_url, rating_label = :rating_label,
			trailer_link = :trailer_link
		WHERE id = :id`, m)
	if err != nil {
		return mapError(err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	s.movieCache.Remove(m.ID)
	return nil
}

func (s *CatalogStore) DeleteMovie(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM movies WHERE id = ?", id)
	if err != nil {
		return mapError(err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	s.movieCache.Remove(id)
	return nil
}

func (s *CatalogStore) SearchMovies(ctx context.Context, query string) ([]model.Movie, error) {
	var out []model.Movie
	err := s.db.SelectContext(ctx, &out, `
		SELECT * FROM movies
		WHERE title LIKE ? OR plot LIKE ?
		ORDER BY rating DESC, votes DESC`,
		"%"+query+"%", "%"+query+"%",
	)
	return out, err
}

// UpcomingMovies lists full movie rows releasing after today.
func (s *CatalogStore) UpcomingMovies(ctx context.Context) ([]model.Movie, error) {
	var out []model.Movie
	err := s.db.SelectContext(ctx, &out, `
		SELECT * FROM movies
		WHERE release_date IS NOT NULL AND release_date > ?
		ORDER BY release_date ASC`,
		s.now().UTC(),
	)
	return out, err
}

// CountFutureMovies backs the notification count endpoint.
func (s *CatalogStore) CountFutureMovies(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM movies
		WHERE release_date IS NOT NULL AND release_date >= ?`,
		s.now().UTC(),
	)
	return count, err
}

func (s *CatalogStore) MovieAwards(ctx context.Context, movieID int64) ([]model.Award, error) {
	var out []model.Award
	err := s.db.SelectContext(ctx, &out, `
		SELECT award_name, category, year, status
		FROM movie_awards
		WHERE movie_id = ?
		ORDER BY year DESC, award_name`,
		movieID,
	)
	return out, err
}

// --- users ---

func (s *CatalogStore) CreateUser(ctx context.Context, u *model.User) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO users (username, name, email, birth_date, password, is_editor)
		VALUES (:username, :name, :email, :birth_date, :password, :is_editor)`, u)
	return mapError(err)
}

// Authenticate performs the plaintext credential match the legacy clients
// expect. Not a security boundary.
func (s *CatalogStore) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	var u model.User
	err := s.db.GetContext(ctx, &u, `
		SELECT username, name, email, birth_date, password, is_editor
		FROM users
		WHERE username = ? AND password = ?
		LIMIT 1`,
		username, password,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}

func (s *CatalogStore) GetUser(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := s.db.GetContext(ctx, &u, "SELECT * FROM users WHERE username = ?", username)
	if err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}

// --- reviews ---

func (s *CatalogStore) ListReviews(ctx context.Context, movieID int64) ([]model.Review, error) {
	var out []model.Review
	err := s.db.SelectContext(ctx, &out, `
		SELECT * FROM reviews WHERE movie_id = ? ORDER BY created_at DESC`,
		movieID,
	)
	return out, err
}

func (s *CatalogStore) CreateReview(ctx context.Context, r *model.Review) error {
	r.CreatedAt = s.now().UTC()
	res, err := s.db.NamedExecContext(ctx, `
		INSERT INTO reviews (movie_id, username, rating, content, created_at)
		VALUES (:movie_id, :username, :rating, :content, :created_at)`, r)
	if err != nil {
		return mapError(err)
	}
	r.ID, err = res.LastInsertId()
	return err
}

func (s *CatalogStore) DeleteReview(ctx context.Context, id int64, username string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM reviews WHERE id = ? AND username = ?", id, username)
	if err != nil {
		return mapError(err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// --- watchlists ---

func (s *CatalogStore) ListWatchlist(ctx context.Context, username string) ([]model.WatchlistItem, error) {
	var out []model.WatchlistItem
	err := s.db.SelectContext(ctx, &out, `
		SELECT * FROM watchlists WHERE username = ? ORDER BY added_at DESC`,
		username,
	)
	return out, err
}

func (s *CatalogStore) AddToWatchlist(ctx context.Context, username string, movieID int64) (*model.WatchlistItem, error) {
	item := model.WatchlistItem{
		Username: username,
		MovieID:  movieID,
		AddedAt:  s.now().UTC(),
	}
	res, err := s.db.NamedExecContext(ctx, `
		INSERT INTO watchlists (username, movie_id, added_at)
		VALUES (:username, :movie_id, :added_at)`, &item)
	if err != nil {
		return nil, mapError(err)
	}
	item.ID, err = res.LastInsertId()
	return &item, err
}

func (s *CatalogStore) RemoveFromWatchlist(ctx context.Context, username string, movieID int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM watchlists WHERE username = ? AND movie_id = ?", username, movieID)
	if err != nil {
		return mapError(err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// --- genres ---

func (s *CatalogStore) ListGenres(ctx context.Context) ([]model.Genre, error) {
	var out []model.Genre
	err := s.db.SelectContext(ctx, &out, "SELECT * FROM genres ORDER BY name")
	return out, err
}

func (s *CatalogStore) CreateGenre(ctx context.Context, g *model.Genre) error {
	res, err := s.db.NamedExecContext(ctx,
		"INSERT INTO genres (name) VALUES (:name)", g)
	if err != nil {
		return mapError(err)
	}
	g.ID, err = res.LastInsertId()
	return err
}

func (s *CatalogStore) AssignGenre(ctx context.Context, movieID, genreID int64) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO movie_genres (movie_id, genre_id) VALUES (?, ?)",
		movieID, genreID)
	return mapError(err)
}
