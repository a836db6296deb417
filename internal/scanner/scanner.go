// Package scanner runs the scheduled release passes that turn catalog rows
// into per-user notifications.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/cinehub/cinehub-service/internal/domain/model"
)

// Catalog answers the release queries the passes run.
type Catalog interface {
	UpcomingReleases(ctx context.Context, within time.Duration) ([]model.Release, error)
	FutureReleases(ctx context.Context) ([]model.Release, error)
	TodayReleases(ctx context.Context) ([]model.Release, error)
	Usernames(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}

// Inbox is the notification store surface the scanner writes to.
type Inbox interface {
	AddForUser(ctx context.Context, draft model.Notification, username string) bool
}

// Config carries the cron specs and query limits. Production cadence is
// hourly/daily; tests and demos shorten the specs.
type Config struct {
	UpcomingSpec   string        // upcoming-window pass
	DailySpec      string        // today + all-future passes
	HealthSpec     string        // connectivity probe
	UpcomingWindow time.Duration // release-date horizon of the upcoming pass
	QueryTimeout   time.Duration // per-pass budget before the run is abandoned
}

// triggerDays are the exact whole-day marks the upcoming-window pass
// notifies on.
var triggerDays = map[int]bool{7: true, 3: true, 1: true}

type Scanner struct {
	catalog Catalog
	inbox   Inbox
	guard   *Guard
	log     *slog.Logger
	now     func() time.Time
	cfg     Config

	cron *cron.Cron
}

func New(catalog Catalog, inbox Inbox, guard *Guard, cfg Config, log *slog.Logger) *Scanner {
	if cfg.UpcomingWindow <= 0 {
		cfg.UpcomingWindow = 7 * 24 * time.Hour
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 30 * time.Second
	}
	return &Scanner{
		catalog: catalog,
		inbox:   inbox,
		guard:   guard,
		log:     log,
		now:     time.Now,
		cfg:     cfg,
	}
}

// WithClock overrides the scanner's time source. Test hook.
func (s *Scanner) WithClock(now func() time.Time) *Scanner {
	s.now = now
	return s
}

// Start registers the recurring passes and begins the schedule.
func (s *Scanner) Start() error {
	c := cron.New()

	jobs := []struct {
		spec string
		name string
		run  func(context.Context) error
	}{
		{s.cfg.UpcomingSpec, "upcoming-window", s.CheckUpcomingReleases},
		{s.cfg.DailySpec, "today-releases", s.CheckTodayReleases},
		{s.cfg.DailySpec, "all-future", s.CheckAllFutureReleases},
		{s.cfg.HealthSpec, "health-probe", s.ProbeHealth},
	}

	for _, j := range jobs {
		job := j
		if _, err := c.AddFunc(job.spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), s.cfg.QueryTimeout)
			defer cancel()
			if err := job.run(ctx); err != nil {
				s.log.Warn("scan pass failed", "pass", job.name, "error", err)
			}
		}); err != nil {
			return fmt.Errorf("scheduling %s (%q): %w", job.name, job.spec, err)
		}
	}

	s.cron = c
	c.Start()
	s.log.Info("release scanner started",
		"upcoming", s.cfg.UpcomingSpec,
		"daily", s.cfg.DailySpec,
		"health", s.cfg.HealthSpec)
	return nil
}

// Stop halts the schedule and waits for any in-flight pass.
func (s *Scanner) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// ProbeHealth runs the lightweight connectivity query through the breaker.
func (s *Scanner) ProbeHealth(ctx context.Context) error {
	return s.guard.Probe(ctx, s.catalog.Ping)
}

// CheckUpcomingReleases notifies every registered user about movies whose
// remaining whole days-until-release land exactly on 7, 3, or 1.
func (s *Scanner) CheckUpcomingReleases(ctx context.Context) error {
	if !s.guard.Available() {
		s.log.Debug("skipping upcoming-window pass, catalog unavailable")
		return nil
	}
	return s.guard.Do(ctx, func(ctx context.Context) error {
		movies, err := s.catalog.UpcomingReleases(ctx, s.cfg.UpcomingWindow)
		if err != nil {
			return err
		}
		if len(movies) == 0 {
			return nil
		}
		users, err := s.catalog.Usernames(ctx)
		if err != nil {
			return err
		}

		now := s.now()
		for _, m := range movies {
			days := m.DaysUntil(now)
			if !triggerDays[days] {
				continue
			}
			draft := model.Notification{
				MovieID:     m.MovieID,
				Title:       m.Title,
				Message:     fmt.Sprintf("🎬 %q releases in %d %s!", m.Title, days, plural(days)),
				Kind:        model.KindUpcomingRelease,
				DaysUntil:   model.Days(days),
				ReleaseDate: m.ReleaseDate,
				PosterURL:   m.PosterURL,
			}
			s.fanOut(ctx, draft, users)
		}
		return nil
	})
}

// CheckAllFutureReleases notifies every user about every future release,
// recomputing the day count on each run. Dedup for this kind ignores the
// day count, so re-runs do not grow inboxes.
func (s *Scanner) CheckAllFutureReleases(ctx context.Context) error {
	if !s.guard.Available() {
		s.log.Debug("skipping all-future pass, catalog unavailable")
		return nil
	}
	return s.guard.Do(ctx, func(ctx context.Context) error {
		movies, err := s.catalog.FutureReleases(ctx)
		if err != nil {
			return err
		}
		if len(movies) == 0 {
			return nil
		}
		users, err := s.catalog.Usernames(ctx)
		if err != nil {
			return err
		}

		now := s.now()
		for _, m := range movies {
			s.fanOut(ctx, s.futureDraft(m, now), users)
		}
		return nil
	})
}

// CheckTodayReleases notifies every user about movies releasing on the
// current calendar day.
func (s *Scanner) CheckTodayReleases(ctx context.Context) error {
	if !s.guard.Available() {
		s.log.Debug("skipping today pass, catalog unavailable")
		return nil
	}
	return s.guard.Do(ctx, func(ctx context.Context) error {
		movies, err := s.catalog.TodayReleases(ctx)
		if err != nil {
			return err
		}
		if len(movies) == 0 {
			return nil
		}
		users, err := s.catalog.Usernames(ctx)
		if err != nil {
			return err
		}

		for _, m := range movies {
			draft := model.Notification{
				MovieID:     m.MovieID,
				Title:       m.Title,
				Message:     fmt.Sprintf("🎉 %q is now released!", m.Title),
				Kind:        model.KindTodayRelease,
				ReleaseDate: m.ReleaseDate,
				PosterURL:   m.PosterURL,
			}
			s.fanOut(ctx, draft, users)
		}
		return nil
	})
}

// SendAllFuture files a future_release notification for every upcoming movie
// into a single user's inbox. Administrative entry point; returns how many
// movies were processed.
func (s *Scanner) SendAllFuture(ctx context.Context, username string) (int, error) {
	sent := 0
	err := s.guard.Do(ctx, func(ctx context.Context) error {
		movies, err := s.catalog.FutureReleases(ctx)
		if err != nil {
			return err
		}
		now := s.now()
		for _, m := range movies {
			s.inbox.AddForUser(ctx, s.futureDraft(m, now), username)
			sent++
		}
		return nil
	})
	return sent, err
}

func (s *Scanner) futureDraft(m model.Release, now time.Time) model.Notification {
	days := m.DaysUntil(now)
	return model.Notification{
		MovieID:     m.MovieID,
		Title:       m.Title,
		Message:     fmt.Sprintf("📅 %q will release in %d %s!", m.Title, days, plural(days)),
		Kind:        model.KindFutureRelease,
		DaysUntil:   model.Days(days),
		ReleaseDate: m.ReleaseDate,
		PosterURL:   m.PosterURL,
	}
}

func (s *Scanner) fanOut(ctx context.Context, draft model.Notification, users []string) {
	for _, username := range users {
		s.inbox.AddForUser(ctx, draft, username)
	}
}

func plural(n int) string {
	if n == 1 {
		return "day"
	}
	return "days"
}
