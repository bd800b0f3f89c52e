package generic

// Optional holds a value that may be absent. The zero value is empty.
type Optional[T any] struct {
	value T
	ok    bool
}

// Some wraps v as a present value.
func Some[T any](v T) Optional[T] { return Optional[T]{value: v, ok: true} }

// None returns an empty Optional.
func None[T any]() Optional[T] { return Optional[T]{} }

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) { return o.value, o.ok }

// IsSome reports whether a value is present.
func (o Optional[T]) IsSome() bool { return o.ok }

// OrElse returns the value, or fallback when empty.
func (o Optional[T]) OrElse(fallback T) T {
	if o.ok {
		return o.value
	}
	return fallback
}
