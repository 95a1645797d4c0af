// Package scheduler drives the periodic debt recalculation cycle.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/propreg/api/internal/lock"
	"github.com/propreg/api/internal/logger"
	"github.com/propreg/api/internal/services"
)

// recalcLockName is the lock guarding a recalculation run. A tick that
// cannot take it is skipped, never queued.
const recalcLockName = "debt-recalculation"

// Scheduler runs the debt recalculation job on a fixed interval.
type Scheduler struct {
	debts    services.DebtService
	locker   lock.Locker
	log      *logger.Logger
	interval time.Duration
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New creates a scheduler firing the recalculation every interval.
func New(debts services.DebtService, locker lock.Locker, interval time.Duration, log *logger.Logger) *Scheduler {
	return &Scheduler{
		debts:    debts,
		locker:   locker,
		log:      log,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the ticker loop in a background goroutine.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()

	s.log.Info("Debt recalculation scheduler started", map[string]interface{}{
		"interval": s.interval.String(),
	})
}

// Stop halts the loop and waits for an in-flight cycle to finish.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()

	s.log.Info("Debt recalculation scheduler stopped", nil)
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.runCycle()
		}
	}
}

// runCycle executes one recalculation under the overlap lock. The lock TTL
// is twice the interval: long enough that a crashed holder does not block
// the very next tick forever, short enough to self-heal.
func (s *Scheduler) runCycle() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	acquired, err := s.locker.Acquire(ctx, recalcLockName, 2*s.interval)
	if err != nil {
		s.log.Error("Failed to acquire recalculation lock", err, nil)
		return
	}
	if !acquired {
		s.log.Warn("Skipping recalculation cycle, previous run still in progress", nil)
		return
	}
	defer func() {
		if err := s.locker.Release(context.Background(), recalcLockName); err != nil {
			s.log.Error("Failed to release recalculation lock", err, nil)
		}
	}()

	s.log.Info("Recounting debt for debtors", nil)

	if _, err := s.debts.Recalculate(ctx); err != nil {
		s.log.Error("Recalculation cycle failed", err, nil)
	}
}
