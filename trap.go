package whoops

import "sync"

const defaultMaxFrames = 64

// trap is the process-wide slot errors escaping the request call path are
// reported to. Registrations stack, the most recent one is in charge.
var trap struct {
	mu   sync.Mutex
	regs []*registration
}

type registration struct {
	run *Run
}

// Register installs run as the process-wide trap until the returned function
// is called. Calling the returned function more than once is a no-op.
func (run *Run) Register() (unregister func()) {
	reg := &registration{run: run}

	trap.mu.Lock()
	trap.regs = append(trap.regs, reg)
	trap.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			trap.mu.Lock()
			defer trap.mu.Unlock()

			for i := len(trap.regs) - 1; i >= 0; i-- {
				if trap.regs[i] == reg {
					trap.regs = append(trap.regs[:i], trap.regs[i+1:]...)
					break
				}
			}
			if len(trap.regs) == 0 {
				trap.regs = nil
			}
		})
	}
}

// Installed returns the run currently registered as the trap, or nil.
func Installed() *Run {
	trap.mu.Lock()
	defer trap.mu.Unlock()

	if n := len(trap.regs); n > 0 {
		return trap.regs[n-1].run
	}
	return nil
}

// Guard reports a panic to the installed trap and panics again.
// It must be deferred directly by goroutines running outside a boundary:
//
//	go func() {
//	    defer whoops.Guard()
//	    ...
//	}()
func Guard() {
	rec := recover()
	if rec == nil {
		return
	}

	if run := Installed(); run != nil {
		event := NewEvent(nil, newPanicError(rec, 2, defaultMaxFrames), defaultMaxFrames)

		run.WriteToOutput(true)
		_ = run.HandleEscaped(event)
		run.WriteToOutput(false)
	}

	panic(rec)
}

// Go runs fn in a new goroutine guarded by Guard.
func Go(fn func()) {
	go func() {
		defer Guard()
		fn()
	}()
}
