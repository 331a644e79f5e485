package services

import (
	"context"
	"time"

	"github.com/robfig/cron"
	"github.com/sirupsen/logrus"

	"appforge/internal/domain"
	"appforge/internal/infra/rabbitmq"
	"appforge/internal/repository"
)

// Watchdog flags orders parked in a non-terminal status with no movement
// for longer than the threshold. It only observes: a stuck order is logged
// and announced, never transitioned.
type Watchdog struct {
	orders    repository.OrderRepository
	publisher rabbitmq.PublisherInterface
	threshold time.Duration
	schedule  string
	cron      *cron.Cron
	log       *logrus.Entry
}

func NewWatchdog(orders repository.OrderRepository, publisher rabbitmq.PublisherInterface, schedule string, threshold time.Duration) *Watchdog {
	return &Watchdog{
		orders:    orders,
		publisher: publisher,
		threshold: threshold,
		schedule:  schedule,
		log:       logrus.WithField("component", "watchdog"),
	}
}

func (w *Watchdog) Start() error {
	w.cron = cron.New()
	if err := w.cron.AddFunc(w.schedule, w.Sweep); err != nil {
		return err
	}
	w.cron.Start()
	return nil
}

func (w *Watchdog) Stop() {
	if w.cron != nil {
		w.cron.Stop()
	}
}

// Sweep runs one pass. Exported so operators can trigger it on demand.
func (w *Watchdog) Sweep() {
	orders, err := w.orders.FindAll()
	if err != nil {
		w.log.WithError(err).Error("sweep: order listing failed")
		return
	}

	cutoff := time.Now().UTC().Add(-w.threshold)
	for _, o := range orders {
		if o.Status.Terminal() || o.Status == domain.StatusDelivered {
			continue
		}
		if o.UpdatedAt.After(cutoff) {
			continue
		}

		w.log.WithFields(logrus.Fields{
			"orderId":   o.ID,
			"status":    o.Status,
			"updatedAt": o.UpdatedAt,
		}).Warn("order appears stuck")

		if w.publisher != nil {
			event := domain.OrderStuckEvent{OrderID: o.ID, Status: o.Status, UpdatedAt: o.UpdatedAt}
			if err := w.publisher.Publish(context.Background(), domain.EventOrderStuck, event); err != nil {
				w.log.WithError(err).Warn("stuck event publish failed")
			}
		}
	}
}
