package seq

import (
	"context"
	stderrors "errors"
)

// Take yields at most the first n values of s.
func Take[T any](s *Seq[T], n int) *Seq[T] {
	return &Seq[T]{create: func(ctx context.Context) Iterator[T] {
		return &takeIter[T]{source: s.create(ctx), left: n}
	}}
}

type takeIter[T any] struct {
	source Iterator[T]
	left   int
}

func (it *takeIter[T]) Next(ctx context.Context) (T, bool, error) {
	if it.left <= 0 {
		var zero T
		return zero, false, nil
	}
	v, ok, err := it.source.Next(ctx)
	if ok {
		it.left--
	}
	return v, ok, err
}

func (it *takeIter[T]) Close() error { return it.source.Close() }

// Concat yields every value of each Seq in turn.
func Concat[T any](seqs ...*Seq[T]) *Seq[T] {
	return &Seq[T]{create: func(ctx context.Context) Iterator[T] {
		iters := make([]Iterator[T], len(seqs))
		for i, s := range seqs {
			iters[i] = s.create(ctx)
		}
		return &concatIter[T]{iters: iters}
	}}
}

type concatIter[T any] struct {
	iters []Iterator[T]
	idx   int
}

func (it *concatIter[T]) Next(ctx context.Context) (T, bool, error) {
	for it.idx < len(it.iters) {
		v, ok, err := it.iters[it.idx].Next(ctx)
		if err != nil {
			return v, false, err
		}
		if ok {
			return v, true, nil
		}
		it.idx++
	}
	var zero T
	return zero, false, nil
}

func (it *concatIter[T]) Close() error {
	var errs []error
	for _, i := range it.iters {
		if err := i.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
