package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/domain/event"
)

// Publisher is a mock type for the event.Publisher type
type Publisher struct {
	mock.Mock
}

func (_m *Publisher) Name() string {
	ret := _m.Called()
	return ret.String(0)
}

func (_m *Publisher) Publish(c ctx.Ctx, e *event.Event) error {
	ret := _m.Called(c, e)
	return ret.Error(0)
}
