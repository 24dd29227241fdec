package pool

// registry is the authoritative set of every instance the pool has produced,
// in use or idle, keyed by instance id. Entries leave only through destruction.
type registry struct {
	byID map[InstanceID]*Instance
}

func newRegistry() *registry {
	return &registry{byID: make(map[InstanceID]*Instance)}
}

// add registers in. It reports false and leaves the registry untouched when
// the id is already present.
func (r *registry) add(in *Instance) bool {
	if _, exists := r.byID[in.id]; exists {
		return false
	}
	r.byID[in.id] = in
	return true
}

func (r *registry) get(id InstanceID) (*Instance, bool) {
	in, ok := r.byID[id]
	return in, ok
}

func (r *registry) remove(id InstanceID) (*Instance, bool) {
	in, ok := r.byID[id]
	if ok {
		delete(r.byID, id)
	}
	return in, ok
}

// ids returns a snapshot of the registered ids so callers can mutate the
// registry while iterating.
func (r *registry) ids() []InstanceID {
	out := make([]InstanceID, 0, len(r.byID))
	for id := range r.byID {
		out = append(out, id)
	}
	return out
}

func (r *registry) len() int {
	return len(r.byID)
}

func (r *registry) reset() {
	r.byID = make(map[InstanceID]*Instance)
}
