package repository

import (
	"sync"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/domain/event"
)

// MemoryPublisher keeps the newest events in process
type MemoryPublisher struct {
	mu     sync.RWMutex
	size   int
	events []*event.Event
}

func NewMemoryPublisher(size int) *MemoryPublisher {
	return &MemoryPublisher{size: size}
}

func (p *MemoryPublisher) Name() string {
	return "memory"
}

func (p *MemoryPublisher) Publish(c ctx.Ctx, e *event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	if len(p.events) > p.size {
		p.events = p.events[len(p.events)-p.size:]
	}
	return nil
}

func (p *MemoryPublisher) Recent(c ctx.Ctx, offset, limit int) ([]*event.Event, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	res := []*event.Event{}
	for i := len(p.events) - 1 - offset; i >= 0 && len(res) < limit; i-- {
		res = append(res, p.events[i])
	}
	return res, nil
}

// Names lists the names of every retained event, oldest first
func (p *MemoryPublisher) Names() []event.Name {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]event.Name, 0, len(p.events))
	for _, e := range p.events {
		names = append(names, e.Name)
	}
	return names
}
