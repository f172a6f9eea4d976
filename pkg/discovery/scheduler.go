// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package discovery drives the per-queue matchmaking cycle: run the queue's
// algorithm, sleep the configured interval, repeat for the life of the
// process.
package discovery

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/queue-matchmaker/pkg/envelope"
	"github.com/AccelByte/queue-matchmaker/pkg/matchmaker"
	"github.com/AccelByte/queue-matchmaker/pkg/models"
)

// Scheduler owns one discovery loop per configured queue. Queues never share
// state; a stalled store call in one queue's loop does not affect the others.
type Scheduler struct {
	queues []models.QueueConfig
	svc    matchmaker.Services

	mu      sync.Mutex
	started bool
	wg      sync.WaitGroup
}

func New(queues []models.QueueConfig, svc matchmaker.Services) *Scheduler {
	return &Scheduler{queues: queues, svc: svc}
}

// Start launches the discovery loops. It is a no-op when the scheduler was
// already started in this process. The loops run until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		logrus.Warn("discovery scheduler already started, ignoring")
		return nil
	}

	runners := make(map[string]matchmaker.CycleRunner, len(s.queues))
	for _, queue := range s.queues {
		runner, err := matchmaker.ForQueue(queue, s.svc)
		if err != nil {
			return err
		}
		runners[queue.QueueID] = runner
	}

	s.started = true
	for _, queue := range s.queues {
		s.wg.Add(1)
		go s.runLoop(ctx, queue, runners[queue.QueueID])
	}

	return nil
}

// Wait blocks until every discovery loop has stopped.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) runLoop(ctx context.Context, queue models.QueueConfig, runner matchmaker.CycleRunner) {
	defer s.wg.Done()

	log := logrus.WithField("queueID", queue.QueueID)
	log.WithField("interval", queue.Interval()).Info("discovery loop started")

	for {
		s.runCycle(ctx, queue, runner)

		select {
		case <-ctx.Done():
			log.Info("discovery loop stopped")
			return
		case <-time.After(queue.Interval()):
		}
	}
}

// runCycle executes one discovery pass. A panic inside the cycle is
// recovered and logged so the loop always reaches its next sleep.
func (s *Scheduler) runCycle(ctx context.Context, queue models.QueueConfig, runner matchmaker.CycleRunner) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("queueID", queue.QueueID).
				WithField("panic", r).
				Error("discovery cycle panicked")
		}
	}()

	scope := envelope.NewRootScope(ctx, "discovery:"+queue.QueueID, "")
	defer scope.Finish()

	startTime := time.Now()
	runner.RunCycle(scope)

	if s.svc.Metrics != nil {
		s.svc.Metrics.DiscoveryCycleElapsedTimeMs(queue.QueueID, time.Since(startTime))
	}
}
