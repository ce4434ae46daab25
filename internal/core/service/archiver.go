package service

import (
	"context"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/rl1809/scoop-shop/internal/core/domain"
	"github.com/rl1809/scoop-shop/internal/port"
)

const (
	archiveTimeout        = 5 * time.Second
	archiveTripFailures   = 5
	archiveBreakerTimeout = 30 * time.Second
)

// Archiver drains the confirmed-order queue into the order repository. A
// nil repository means the archive is disabled and orders are only logged.
type Archiver struct {
	repo    port.OrderRepository
	breaker *gobreaker.CircuitBreaker[struct{}]
	log     *zap.Logger
}

func NewArchiver(repo port.OrderRepository, log *zap.Logger) *Archiver {
	if log == nil {
		log = zap.NewNop()
	}
	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "order-archive",
		MaxRequests: 1,
		Timeout:     archiveBreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= archiveTripFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &Archiver{repo: repo, breaker: breaker, log: log}
}

// Run processes orders until the queue is closed.
func (a *Archiver) Run(workerID int, queue <-chan domain.Order) {
	for order := range queue {
		a.archive(workerID, order)
	}
}

func (a *Archiver) archive(workerID int, order domain.Order) {
	log := a.log.With(zap.Int("worker", workerID), zap.String("order_id", order.ID))

	if a.repo == nil {
		log.Info("order archive disabled, skipping", zap.Int("total", order.Total))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()

	_, err := a.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, a.repo.SaveOrder(ctx, order)
	})
	if err != nil {
		log.Error("failed to archive order", zap.Error(err))
		return
	}
	log.Info("archived order", zap.Int("lines", len(order.Lines)), zap.Int("total", order.Total))
}

func (a *Archiver) State() gobreaker.State {
	return a.breaker.State()
}
