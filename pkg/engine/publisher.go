package engine

import (
	"context"
	"errors"
)

// MultiPublisher fans each event out to every publisher, for setups where
// both the event bus and a gateway need the stream.
type MultiPublisher []EventPublisher

func (m MultiPublisher) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
