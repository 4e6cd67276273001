package worklist

import (
	"context"
)

// Follow calls emit with the worker's formatted list, then again each time
// changes fires and the rendered list differs from the last one emitted. It
// returns when ctx is done, changes is closed, or a read or emit fails.
func (s *TodoListStore) Follow(ctx context.Context, worker string, changes <-chan struct{}, emit func(string) error) error {
	last, err := s.CurrentFormatted(ctx, worker)
	if err != nil {
		return err
	}
	if err := emit(last); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}

			out, err := s.CurrentFormatted(ctx, worker)
			if err != nil {
				return err
			}
			if out == last {
				continue
			}

			last = out
			if err := emit(out); err != nil {
				return err
			}
		}
	}
}
