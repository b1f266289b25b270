package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"github.com/viney-shih/goroutines"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/base/metrics"
	"github.com/x-xyz/settlement/domain/event"
	"github.com/x-xyz/settlement/service/kv"
)

type EmitterCfg struct {
	Store      kv.Store
	Publishers []event.Publisher
	Metrics    metrics.Service

	// Async hands deliveries to a worker pool, otherwise they run inline
	// right after commit
	Async          bool
	PublishTimeout time.Duration
	TimeNow        func() time.Time
}

type sink struct {
	publisher event.Publisher
	breaker   *gobreaker.CircuitBreaker
}

type Emitter struct {
	store   kv.Store
	sinks   []sink
	met     metrics.Service
	pool    *goroutines.Pool
	timeout time.Duration
	now     func() time.Time
}

func NewEmitter(cfg *EmitterCfg) *Emitter {
	im := &Emitter{
		store:   cfg.Store,
		met:     cfg.Metrics,
		timeout: cfg.PublishTimeout,
		now:     cfg.TimeNow,
	}
	if im.timeout <= 0 {
		im.timeout = 3 * time.Second
	}
	if im.now == nil {
		im.now = time.Now
	}
	if cfg.Async {
		im.pool = goroutines.NewPool(32, goroutines.WithTaskQueueLength(1024), goroutines.WithPreAllocWorkers(8))
	}
	for _, p := range cfg.Publishers {
		im.sinks = append(im.sinks, sink{publisher: p, breaker: newCircuitBreaker(p.Name())})
	}
	return im
}

func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests > 20 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger := log.Log().WithFields(log.Fields{"publisher": name, "from": from.String(), "to": to.String()})
			if to == gobreaker.StateOpen {
				logger.Warn("publisher seems down, stop delivering")
			} else {
				logger.Info("publisher state changed")
			}
		},
	})
}

// Emit builds the event now and delivers it once the running transaction
// commits, a rolled back call emits nothing
func (im *Emitter) Emit(c ctx.Ctx, contract string, name event.Name, fields event.Fields) {
	e := &event.Event{
		Id:       uuid.NewString(),
		Name:     name,
		Contract: contract,
		Time:     im.now().Unix(),
		Fields:   fields,
	}
	im.store.AfterCommit(c, func() {
		im.dispatch(ctx.WithContext(c, context.Background()), e)
	})
}

func (im *Emitter) dispatch(c ctx.Ctx, e *event.Event) {
	for _, s := range im.sinks {
		s := s
		if im.pool == nil {
			im.publish(c, s, e)
			continue
		}
		if err := im.pool.ScheduleWithTimeout(im.timeout, func() {
			pc, cancel := ctx.WithTimeout(c, im.timeout)
			defer cancel()
			im.publish(pc, s, e)
		}); err != nil {
			c.WithFields(log.Fields{
				"err":       err,
				"eventId":   e.Id,
				"publisher": s.publisher.Name(),
			}).Error("failed to ScheduleWithTimeout")
			im.met.BumpSum("publish.err", 1, "publisher", s.publisher.Name(), "reason", "schedule")
		}
	}
}

func (im *Emitter) publish(c ctx.Ctx, s sink, e *event.Event) {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.publisher.Publish(c, e)
	})
	if err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"eventId":   e.Id,
			"event":     e.Name,
			"publisher": s.publisher.Name(),
		}).Warn("publish failed")
		im.met.BumpSum("publish.err", 1, "publisher", s.publisher.Name())
		return
	}
	im.met.BumpSum("publish", 1, "publisher", s.publisher.Name(), "event", string(e.Name))
}

// Close waits for queued deliveries
func (im *Emitter) Close() {
	if im.pool != nil {
		im.pool.Release()
	}
}
