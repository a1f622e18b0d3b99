package config

import (
	"time"

	"github.com/urfave/cli/v3"
)

// Scheduler holds flags for the document watch worker.
type Scheduler struct {
	enabled  bool
	interval time.Duration
}

func (s *Scheduler) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "scheduler-enabled",
			Category:    "Scheduler",
			Usage:       "Enable periodic document change detection",
			Value:       true,
			Sources:     cli.EnvVars("PMSYNC_SCHEDULER_ENABLED"),
			Destination: &s.enabled,
		},
		&cli.DurationFlag{
			Name:        "scheduler-interval",
			Category:    "Scheduler",
			Usage:       "Interval between document checks",
			Value:       5 * time.Minute,
			Sources:     cli.EnvVars("PMSYNC_SCHEDULER_INTERVAL"),
			Destination: &s.interval,
		},
	}
}

func (s *Scheduler) Enabled() bool {
	return s.enabled
}

func (s *Scheduler) Interval() time.Duration {
	return s.interval
}
