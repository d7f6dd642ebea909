package order

import (
	"math"
	"slices"
)

const (
	// HighestPrecedence is the smallest order value.
	HighestPrecedence = math.MinInt32
	// LowestPrecedence is the largest order value and the value assumed for unordered objects.
	LowestPrecedence = math.MaxInt32
)

// Ordered is implemented by objects that declare an explicit order value.
type Ordered interface {
	Order() int
}

// PriorityOrdered marks an Ordered object as belonging to the priority tier.
type PriorityOrdered interface {
	Ordered
	PriorityOrdered()
}

// Tier is the coarse ranking class of an object.
type Tier int

const (
	TierPriority Tier = iota
	TierOrdered
	TierUnordered
)

// TierOf returns the ranking class of v.
func TierOf(v any) Tier {
	switch v.(type) {
	case PriorityOrdered:
		return TierPriority
	case Ordered:
		return TierOrdered
	default:
		return TierUnordered
	}
}

// ValueOf returns the order value of v, LowestPrecedence if it declares none.
func ValueOf(v any) int {
	if o, ok := v.(Ordered); ok {
		return o.Order()
	}
	return LowestPrecedence
}

// Compare returns -1 if a sorts before b, 1 if after, 0 if they are equivalent.
func Compare(a, b any) int {
	ta, tb := TierOf(a), TierOf(b)
	switch {
	case ta < tb:
		return -1
	case ta > tb:
		return 1
	}

	va, vb := ValueOf(a), ValueOf(b)
	switch {
	case va < vb:
		return -1
	case va > vb:
		return 1
	}
	return 0
}

// Sort sorts items in place with Compare. The sort is stable.
func Sort[T any](items []T) {
	slices.SortStableFunc(items, func(a, b T) int {
		return Compare(a, b)
	})
}

// Sorted returns a sorted copy of items.
func Sorted[T any](items []T) []T {
	out := slices.Clone(items)
	Sort(out)
	return out
}

// Value attaches an order value to an object that cannot implement Ordered itself.
type Value struct {
	Target any
	Value  int
}

// Order implements Ordered.
func (v Value) Order() int { return v.Value }

// Priority attaches a priority-tier order value to an object.
type Priority struct {
	Target any
	Value  int
}

// Order implements Ordered.
func (p Priority) Order() int { return p.Value }

// PriorityOrdered implements PriorityOrdered.
func (Priority) PriorityOrdered() {}

// Unwrap returns the object carried by a Value or Priority wrapper, or v itself.
func Unwrap(v any) any {
	switch w := v.(type) {
	case Value:
		return w.Target
	case *Value:
		return w.Target
	case Priority:
		return w.Target
	case *Priority:
		return w.Target
	}
	return v
}
