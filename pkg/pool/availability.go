package pool

import "sort"

// availability holds the idle instances of each template as a LIFO stack:
// the most recently parked instance is handed out first.
type availability struct {
	stacks map[string][]*Instance
	total  int
}

func newAvailability() *availability {
	return &availability{stacks: make(map[string][]*Instance)}
}

// ensure maps template to a stack, creating an empty one if needed.
func (a *availability) ensure(template string) {
	if _, ok := a.stacks[template]; !ok {
		a.stacks[template] = nil
	}
}

func (a *availability) push(in *Instance) {
	a.stacks[in.template] = append(a.stacks[in.template], in)
	a.total++
}

// pop removes and returns the top of the template's stack. The key stays
// mapped to an empty stack, as a warmed template usually refills soon.
func (a *availability) pop(template string) (*Instance, bool) {
	stack := a.stacks[template]
	n := len(stack)
	if n == 0 {
		return nil, false
	}
	in := stack[n-1]
	stack[n-1] = nil
	a.stacks[template] = stack[:n-1]
	a.total--
	return in, true
}

// remove deletes the entry for id from the template's stack, scanning from the
// top since recently parked entries are the likeliest targets. An emptied
// stack drops its key.
func (a *availability) remove(template string, id InstanceID) bool {
	stack, ok := a.stacks[template]
	if !ok {
		return false
	}
	removed := false
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].id == id {
			copy(stack[i:], stack[i+1:])
			stack[len(stack)-1] = nil
			stack = stack[:len(stack)-1]
			a.total--
			removed = true
			break
		}
	}
	if !removed {
		return false
	}
	if len(stack) == 0 {
		delete(a.stacks, template)
		return true
	}
	a.stacks[template] = stack
	return true
}

func (a *availability) count(template string) int {
	return len(a.stacks[template])
}

func (a *availability) has(template string) bool {
	_, ok := a.stacks[template]
	return ok
}

// snapshot returns a copy of the template's stack, bottom first.
func (a *availability) snapshot(template string) []*Instance {
	stack := a.stacks[template]
	out := make([]*Instance, len(stack))
	copy(out, stack)
	return out
}

func (a *availability) keys() []string {
	out := make([]string, 0, len(a.stacks))
	for k := range a.stacks {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (a *availability) len() int {
	return a.total
}

func (a *availability) reset() {
	a.stacks = make(map[string][]*Instance)
	a.total = 0
}
