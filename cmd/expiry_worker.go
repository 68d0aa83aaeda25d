package cmd

import (
	"context"
	"time"

	"barrierbet/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// expiryWorker periodically settles abandoned open sessions as losses
type expiryWorker struct {
	settlement interfaces.SessionSettlement
	olderThan  time.Duration
	interval   time.Duration
}

func newExpiryWorker(settlement interfaces.SessionSettlement, olderThan, interval time.Duration) *expiryWorker {
	return &expiryWorker{
		settlement: settlement,
		olderThan:  olderThan,
		interval:   interval,
	}
}

// Start runs a sweep immediately and then on every tick. The returned
// function stops the worker and waits for an in-flight sweep to finish.
func (w *expiryWorker) Start(ctx context.Context) func() {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		log.WithFields(log.Fields{
			"olderThan": w.olderThan,
			"interval":  w.interval,
		}).Info("Session expiry worker started")

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			w.sweep(ctx)

			select {
			case <-ctx.Done():
				log.Info("Session expiry worker shutting down")
				return
			case <-ticker.C:
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

func (w *expiryWorker) sweep(ctx context.Context) {
	expired, err := w.settlement.ExpireStaleSessions(ctx, w.olderThan)
	if err != nil {
		if ctx.Err() == nil {
			log.WithError(err).Error("Failed to expire stale sessions")
		}
		return
	}
	if expired > 0 {
		log.WithField("count", expired).Info("Expired stale sessions")
	}
}
