package backup

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rentfusion/rentfusion/internal/logger/adapter/stdlogger"
)

// Scheduler runs backups on a cron schedule.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler registers a backup job on spec, a standard five field cron
// expression. An empty spec returns a scheduler without jobs.
func NewScheduler(db *gorm.DB, spec, dir string) (*Scheduler, error) {
	l := cron.PrintfLogger(stdlogger.NewComponent("cron", zerolog.DebugLevel))
	c := cron.New(cron.WithLogger(l), cron.WithChain(cron.SkipIfStillRunning(l)))

	if spec != "" {
		_, err := c.AddFunc(spec, func() {
			if _, err := Run(context.Background(), db, dir); err != nil {
				log.Error().Err(err).Msg("scheduled backup failed")
			}
		})
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		log.Info().Str("schedule", spec).Msg("database backup scheduled")
	}

	return &Scheduler{cron: c}, nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for a running backup.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Len returns the number of scheduled jobs.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}
