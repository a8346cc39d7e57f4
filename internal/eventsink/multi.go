package eventsink

import (
	"context"
	"errors"

	"github.com/alexanderramin/strategos/internal/domain"
)

// Publisher is implemented by every sink in this package.
type Publisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// Multi fans an event out to every sink. All sinks are attempted; their
// errors are joined.
type Multi struct {
	sinks []Publisher
}

func NewMulti(sinks ...Publisher) *Multi {
	out := make([]Publisher, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return &Multi{sinks: out}
}

func (m *Multi) Publish(ctx context.Context, event domain.Event) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
