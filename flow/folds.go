package flow

// Number is the constraint for Sum.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64
}

// Default output names of the built-in folds.
const (
	OutputCollect = "everything"
	OutputSum     = "total"
)

// Collect gathers every item into a []T, published as "everything" unless
// renamed with Out. An empty stream yields an empty slice.
func Collect[T any]() *Fold {
	return NewFold(func(acc []T, item T) []T { return append(acc, item) }, []T{}).Named(OutputCollect)
}

// Sum adds the items, published as "total" unless renamed with Out. An empty
// stream sums to zero.
func Sum[T Number]() *Fold {
	var zero T
	return NewFold(func(acc, item T) T { return acc + item }, zero).Named(OutputSum)
}

// Reduce is a typed NewFold with an initial value. The initial value is
// shared by every run and must not be mutated by fn.
func Reduce[A, T any](fn func(acc A, item T) A, initial A) *Fold {
	return NewFold(fn, initial)
}
