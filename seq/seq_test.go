package seq

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/typedflow/errors"
	"github.com/kbukum/typedflow/flow"
)

var _ flow.Iterable = (*Seq[int])(nil)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		seq  *Seq[int]
		want []int
	}{
		{"slice", FromSlice([]int{3, 1, 2}), []int{3, 1, 2}},
		{"empty slice", FromSlice([]int{}), nil},
		{"range", Range(2, 5), []int{2, 3, 4}},
		{"empty range", Range(5, 5), nil},
		{"take count", Take(Count(10), 3), []int{10, 11, 12}},
		{"take more than available", Take(Range(0, 2), 5), []int{0, 1}},
		{"take zero", Take(Count(0), 0), nil},
		{"concat", Concat(Range(0, 2), FromSlice([]int{9}), Range(4, 4)), []int{0, 1, 9}},
		{"generate", Generate(func(_ context.Context, i int) (int, bool, error) { return i * i, i < 4, nil }), []int{0, 1, 4, 9}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Collect(context.Background(), tc.seq)
			if err != nil {
				t.Fatalf("Collect: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSeqIsRestartable(t *testing.T) {
	s := Take(Count(1), 3)
	for range 2 {
		got, err := Collect(context.Background(), s)
		if err != nil {
			t.Fatalf("Collect: %v", err)
		}
		if diff := cmp.Diff([]int{1, 2, 3}, got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestGenerateError(t *testing.T) {
	boom := stderrors.New("boom")
	s := Generate(func(_ context.Context, i int) (int, bool, error) {
		if i == 2 {
			return 0, false, boom
		}
		return i, true, nil
	})
	got, err := Collect(context.Background(), s)
	if !stderrors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if diff := cmp.Diff([]int{0, 1}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

type countingIter struct {
	items  []string
	closes int
}

func (it *countingIter) Next(context.Context) (string, bool, error) {
	if len(it.items) == 0 {
		return "", false, nil
	}
	v := it.items[0]
	it.items = it.items[1:]
	return v, true, nil
}

func (it *countingIter) Close() error {
	it.closes++
	return nil
}

func TestItemsClosesIterator(t *testing.T) {
	it := &countingIter{items: []string{"a", "b", "c"}}
	var got []any
	for v, err := range FromIterator[string](it).Items(context.Background()) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = append(got, v)
		if len(got) == 2 {
			break
		}
	}
	if diff := cmp.Diff([]any{"a", "b"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if it.closes != 1 {
		t.Errorf("expected one Close, got %d", it.closes)
	}
}

func TestFeedsFlow(t *testing.T) {
	f, err := flow.New(flow.Sum[int]())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	nums := Take(Count(1), 4)
	for range 2 {
		res, err := f.Call(context.Background(), nums)
		if err != nil {
			t.Fatalf("Call: %v", err)
		}
		total, _ := flow.Output[int](res, flow.OutputSum)
		if total != 10 {
			t.Errorf("total = %d, want 10", total)
		}
	}
}

func TestIteratorErrorEndsRun(t *testing.T) {
	boom := stderrors.New("boom")
	s := Concat(Range(0, 3), Generate(func(context.Context, int) (int, bool, error) { return 0, false, boom }))
	f, err := flow.New(flow.Sum[int]())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := f.Call(context.Background(), s); !stderrors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestInfiniteSourceStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seen := 0
	f, err := flow.New(flow.NewSink(func(int) {
		seen++
		if seen == 5 {
			cancel()
		}
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = f.Call(ctx, Count(0))
	if !errors.HasCode(err, errors.ErrCodeRunCancelled) {
		t.Fatalf("expected RUN_CANCELLED, got %v", err)
	}
	if seen != 5 {
		t.Errorf("expected the run to stop after 5 items, got %d", seen)
	}
}
