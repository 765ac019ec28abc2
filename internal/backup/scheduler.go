// Package backup writes timestamped CSV copies of the catalog on a cron
// schedule while the web server runs.
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ErrNoSchedule is returned by Start when the scheduler has no schedule.
var ErrNoSchedule = errors.New("no backup schedule configured")

// Exporter writes the whole catalog to a CSV file.
type Exporter interface {
	ExportCSV(path string) error
}

// parser accepts standard five-field cron expressions and descriptors such
// as "@daily" or "@every 1h".
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateSchedule reports whether schedule is a usable cron expression.
func ValidateSchedule(schedule string) error {
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", schedule, err)
	}
	return nil
}

// Scheduler runs catalog backups on a cron schedule.
type Scheduler struct {
	store    Exporter
	dir      string
	schedule string
	log      *zap.Logger
	now      func() time.Time

	cron    *cron.Cron
	mu      sync.Mutex
	running bool
}

// NewScheduler creates a scheduler that exports store into dir according to
// schedule. It does not start until Start is called.
func NewScheduler(store Exporter, dir, schedule string, log *zap.Logger) (*Scheduler, error) {
	if schedule == "" {
		return nil, ErrNoSchedule
	}
	if err := ValidateSchedule(schedule); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		store:    store,
		dir:      dir,
		schedule: schedule,
		log:      log.Named("backup"),
		now:      time.Now,
		cron:     cron.New(cron.WithParser(parser)),
	}, nil
}

// Start schedules the backup job and stops it when ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if _, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.RunOnce(); err != nil {
			s.log.Error("backup failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule backup job: %w", err)
	}
	s.cron.Start()
	s.running = true
	s.log.Info("backup scheduler started", zap.String("schedule", s.schedule), zap.String("dir", s.dir))

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop stops the scheduler and waits for a running backup to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.log.Info("backup scheduler stopped")
}

// RunOnce writes one backup now and returns its path.
func (s *Scheduler) RunOnce() (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	path := filepath.Join(s.dir, fmt.Sprintf("perpustakaan-%s.csv", s.now().Format("20060102-150405")))
	if err := s.store.ExportCSV(path); err != nil {
		return "", err
	}
	s.log.Info("backup written", zap.String("path", path))
	return path, nil
}
