package workers

import (
	"context"
	"time"

	"realty_backend/internal/logger"
	"realty_backend/internal/services"
)

// SubscriptionWorker periodically expires lapsed listing subscriptions.
type SubscriptionWorker struct {
	billing  *services.BillingService
	interval time.Duration
}

func NewSubscriptionWorker(billing *services.BillingService, interval time.Duration) *SubscriptionWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SubscriptionWorker{billing: billing, interval: interval}
}

// Run blocks until the context is cancelled. One pass on startup, then one
// per interval.
func (w *SubscriptionWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.pass()
	for {
		select {
		case <-ctx.Done():
			logger.Info("subscription worker stopping")
			return
		case <-ticker.C:
			w.pass()
		}
	}
}

func (w *SubscriptionWorker) pass() {
	expired, err := w.billing.ExpireLapsed(time.Now())
	logger.WorkerLog("subscription", "expire_lapsed", err)
	if err == nil && expired > 0 {
		logger.Info("expired lapsed subscriptions", "count", expired)
	}
}
