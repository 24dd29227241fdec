package pool

// Observer receives lifecycle events from a Pool. Implementations must not
// call back into the pool.
type Observer interface {
	// Created fires when the loader materialized a new instance.
	Created(template string)
	// Adopted fires when a resource materialized outside the pool is wrapped.
	Adopted(template string)
	// Acquired fires when an instance is handed out; hit is false when it was freshly created.
	Acquired(template string, hit bool)
	// Released fires when an instance is parked on its idle stack.
	Released(template string)
	// Prepared fires for each warm-up instance parked by Prepare.
	Prepared(template string)
	// Destroyed fires when an instance is torn down; wasIdle reports whether it was parked.
	Destroyed(template string, wasIdle bool)
	// LoadFailed fires when the loader could not materialize an instance.
	LoadFailed(template string, err error)
}

type nopObserver struct{}

func (nopObserver) Created(string)           {}
func (nopObserver) Adopted(string)           {}
func (nopObserver) Acquired(string, bool)    {}
func (nopObserver) Released(string)          {}
func (nopObserver) Prepared(string)          {}
func (nopObserver) Destroyed(string, bool)   {}
func (nopObserver) LoadFailed(string, error) {}

// NopObserver returns an Observer that ignores every event.
func NopObserver() Observer {
	return nopObserver{}
}
