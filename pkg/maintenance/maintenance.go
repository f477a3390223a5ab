// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package maintenance runs the periodic connection-pool health sweep
// across every cached array agent, the same gocron-scheduled-job shape
// pkg/disk/probing.ProbeScheduler uses for SMART probes, applied here to
// pruning dead SSH sessions instead.
package maintenance

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/stratastor/logger"
	"github.com/stratastor/svcgate/pkg/agent"
	"github.com/stratastor/svcgate/pkg/errors"
)

// Sweeper periodically prunes dead idle connections from every cached
// agent's pool so a silently-dropped SSH session doesn't sit in the free
// list until the next request pays for discovering it.
type Sweeper struct {
	log       logger.Logger
	agents    *agent.Registry
	interval  time.Duration
	scheduler gocron.Scheduler
}

// New creates a Sweeper that, once Start is called, prunes agents every
// interval. interval <= 0 disables scheduling entirely; Start becomes a
// no-op in that case.
func New(agents *agent.Registry, interval time.Duration, l logger.Logger) (*Sweeper, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.Wrap(err, errors.LifecycleHook).WithMetadata("operation", "create_maintenance_scheduler")
	}
	return &Sweeper{log: l, agents: agents, interval: interval, scheduler: scheduler}, nil
}

// Start registers and begins running the sweep job. It's a no-op if the
// configured interval is non-positive.
func (s *Sweeper) Start() error {
	if s.interval <= 0 {
		s.log.Debug("maintenance sweep disabled")
		return nil
	}

	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.sweep),
		gocron.WithName("pool-health-sweep"),
	)
	if err != nil {
		return errors.Wrap(err, errors.LifecycleHook).WithMetadata("operation", "register_maintenance_job")
	}

	s.scheduler.Start()
	s.log.Info("maintenance sweep started", "interval", s.interval.String())
	return nil
}

// Stop shuts down the scheduler. Any sweep in flight is allowed to
// finish; Stop does not cancel it.
func (s *Sweeper) Stop() error {
	if err := s.scheduler.Shutdown(); err != nil {
		return errors.Wrap(err, errors.LifecycleHook).WithMetadata("operation", "stop_maintenance_scheduler")
	}
	return nil
}

func (s *Sweeper) sweep() {
	before := s.agents.Len()
	reaped := s.agents.PruneAll()
	s.log.Debug("pool health sweep complete", "agents", before, "reaped", reaped)
}
