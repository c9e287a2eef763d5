package internal

// Scope is an ordered list of steps entered one after another. Every step may
// return an exit function; exits run in reverse order of entry.
type Scope[T any] []func(T) (T, func())

// Enter runs every step on t and returns the result with a function that
// leaves the scope. The exit function must be called exactly once, usually deferred.
func (steps Scope[T]) Enter(t T) (T, func()) {
	exits := make([]func(), 0, len(steps))
	for _, step := range steps {
		var exit func()
		if t, exit = step(t); exit != nil {
			exits = append(exits, exit)
		}
	}

	return t, func() {
		for i := len(exits) - 1; i >= 0; i-- {
			exits[i]()
		}
	}
}
