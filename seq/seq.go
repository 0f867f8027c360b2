package seq

import (
	"context"
	"iter"
)

// Iterator provides pull-based sequential access to a stream of values.
type Iterator[T any] interface {
	// Next returns the next value. Returns (zero, false, nil) when exhausted.
	Next(ctx context.Context) (T, bool, error)
	// Close releases any resources held by the iterator.
	Close() error
}

// Seq is a lazy, restartable sequence. No work happens until it is walked.
type Seq[T any] struct {
	create func(ctx context.Context) Iterator[T]
}

// Iter returns a fresh Iterator. The caller must Close it.
func (s *Seq[T]) Iter(ctx context.Context) Iterator[T] {
	return s.create(ctx)
}

// Items walks a fresh Iterator, yielding each value with a nil error. An
// iterator error is yielded once and ends the walk. The iterator is closed
// when the walk ends for any reason.
func (s *Seq[T]) Items(ctx context.Context) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		it := s.create(ctx)
		closed := false
		defer func() {
			if !closed {
				_ = it.Close()
			}
		}()
		for {
			v, ok, err := it.Next(ctx)
			if err != nil {
				yield(nil, err)
				return
			}
			if !ok {
				break
			}
			if !yield(v, nil) {
				return
			}
		}
		closed = true
		if err := it.Close(); err != nil {
			yield(nil, err)
		}
	}
}

// Collect walks s and returns its values.
func Collect[T any](ctx context.Context, s *Seq[T]) ([]T, error) {
	it := s.create(ctx)
	defer it.Close()
	var out []T
	for {
		v, ok, err := it.Next(ctx)
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, v)
	}
}

// --- Constructors ---

// FromIterator wraps an existing Iterator. The result can be walked once.
func FromIterator[T any](it Iterator[T]) *Seq[T] {
	return &Seq[T]{create: func(context.Context) Iterator[T] { return it }}
}

// FromFunc creates a Seq from an Iterator factory.
func FromFunc[T any](fn func(ctx context.Context) Iterator[T]) *Seq[T] {
	return &Seq[T]{create: fn}
}

// FromSlice yields the elements of items in order.
func FromSlice[T any](items []T) *Seq[T] {
	return Generate(func(_ context.Context, i int) (T, bool, error) {
		if i >= len(items) {
			var zero T
			return zero, false, nil
		}
		return items[i], true, nil
	})
}

// Range yields start, start+1, ..., end-1.
func Range(start, end int) *Seq[int] {
	return Generate(func(_ context.Context, i int) (int, bool, error) {
		n := start + i
		return n, n < end, nil
	})
}

// Count yields start, start+1, ... without end. Bound it with Take or walk it
// under a context that gets cancelled.
func Count(start int) *Seq[int] {
	return Generate(func(_ context.Context, i int) (int, bool, error) {
		return start + i, true, nil
	})
}

// Generate calls fn with 0, 1, 2, ... until it reports no value or fails.
func Generate[T any](fn func(ctx context.Context, i int) (T, bool, error)) *Seq[T] {
	return &Seq[T]{create: func(context.Context) Iterator[T] {
		return &genIter[T]{fn: fn}
	}}
}

type genIter[T any] struct {
	fn   func(context.Context, int) (T, bool, error)
	i    int
	done bool
}

func (it *genIter[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if it.done {
		return zero, false, nil
	}
	v, ok, err := it.fn(ctx, it.i)
	if err != nil || !ok {
		it.done = true
		return zero, false, err
	}
	it.i++
	return v, true, nil
}

func (it *genIter[T]) Close() error { return nil }
