package store

// Derived is a read-only view computed from a source. It keeps only the last
// computed value and never writes back to the source.
type Derived[S, T any] struct {
	out  *Store[T]
	stop func()
}

// NewDerived subscribes to src and recomputes fn on every source notification.
// The first computation happens before NewDerived returns.
func NewDerived[S, T any](src Readable[S], fn func(S) T) *Derived[S, T] {
	var zero T
	d := &Derived[S, T]{out: New(zero)}
	d.stop = src.Subscribe(func(v S) {
		d.out.Set(fn(v))
	})
	return d
}

// Get returns the last computed value.
func (d *Derived[S, T]) Get() T { return d.out.Get() }

// Subscribe registers fn for recomputed values; fn is called immediately.
func (d *Derived[S, T]) Subscribe(fn func(T)) func() { return d.out.Subscribe(fn) }

// Stop detaches the view from its source. Later source changes are ignored.
func (d *Derived[S, T]) Stop() {
	if d.stop != nil {
		d.stop()
	}
}
