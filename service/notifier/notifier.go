// Package notifier delivers committed listing events to subscribers on a
// worker pool. Delivery is best effort, a failing or panicking subscriber is
// logged and never reaches the operation that emitted the event.
package notifier

import (
	"context"
	"sync"

	"github.com/viney-shih/goroutines"

	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/base/goroutine"
	"github.com/x-xyz/escrow/base/log"
	"github.com/x-xyz/escrow/base/metrics"
	"github.com/x-xyz/escrow/domain/notification"
)

const (
	defaultWorkers     = 8
	defaultQueueLength = 1024
)

type Config struct {
	Workers     int
	QueueLength int
	Subscribers []notification.Subscriber
}

type Notifier struct {
	pool *goroutines.Pool
	met  metrics.Service
	wg   sync.WaitGroup

	mu   sync.RWMutex
	subs []notification.Subscriber
}

func New(cfg *Config) *Notifier {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	queue := cfg.QueueLength
	if queue <= 0 {
		queue = defaultQueueLength
	}

	return &Notifier{
		pool: goroutines.NewPool(workers,
			goroutines.WithTaskQueueLength(queue),
			goroutines.WithPreAllocWorkers(workers),
		),
		met:  metrics.New("notifier"),
		subs: append([]notification.Subscriber{}, cfg.Subscribers...),
	}
}

// Subscribe adds s to the subscribers of later Publish calls
func (n *Notifier) Subscribe(s notification.Subscriber) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = append(n.subs, s)
}

func (n *Notifier) subscribers() []notification.Subscriber {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]notification.Subscriber{}, n.subs...)
}

// Publish schedules one task per subscriber, each task hands the events over
// in order. The returned error only reports scheduling failures.
func (n *Notifier) Publish(c ctx.Ctx, events ...notification.Event) error {
	if len(events) == 0 {
		return nil
	}
	// deliveries outlive the request the events were committed in
	c = ctx.Wrap(c, context.Background())

	var scheduleErr error
	for _, sub := range n.subscribers() {
		sub := sub
		n.wg.Add(1)
		if err := n.pool.Schedule(func() {
			defer n.wg.Done()
			n.deliver(c, sub, events)
		}); err != nil {
			n.wg.Done()
			n.met.BumpSum("schedule.err", 1, "subscriber", sub.Name())
			c.WithFields(log.Fields{"err": err, "subscriber": sub.Name()}).Error("pool.Schedule failed")
			scheduleErr = err
		}
	}
	return scheduleErr
}

func (n *Notifier) deliver(c ctx.Ctx, sub notification.Subscriber, events []notification.Event) {
	name := sub.Name()
	defer n.met.BumpTime("deliver.time", "subscriber", name).End()

	for _, e := range events {
		err := goroutine.Recover(func() error {
			return sub.Handle(c, e)
		})
		if err != nil {
			n.met.BumpSum("deliver.err", 1, "subscriber", name, "type", string(e.Type))
			c.WithFields(log.Fields{
				"err":        err,
				"subscriber": name,
				"event":      e.Id,
				"type":       e.Type,
			}).Error("subscriber.Handle failed")
			continue
		}
		n.met.BumpSum("deliver", 1, "subscriber", name, "type", string(e.Type))
	}
}

// Close waits for scheduled deliveries and releases the workers
func (n *Notifier) Close() {
	n.wg.Wait()
	n.pool.Release()
}
