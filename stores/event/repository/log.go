package repository

import (
	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain/event"
)

type logPublisher struct{}

// NewLogPublisher writes every event as one structured log line
func NewLogPublisher() event.Publisher {
	return &logPublisher{}
}

func (p *logPublisher) Name() string {
	return "log"
}

func (p *logPublisher) Publish(c ctx.Ctx, e *event.Event) error {
	c.WithFields(log.Fields{
		"eventId":  e.Id,
		"event":    e.Name,
		"contract": e.Contract,
		"time":     e.Time,
		"fields":   e.Fields,
	}).Info("event")
	return nil
}
