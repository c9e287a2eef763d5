package whoops

import (
	"sort"

	"github.com/google/uuid"
)

type Middleware[H any] struct {
	ID       string
	Priority int
	Func     func(H) H
}

// Middlewares is a stack of middlewares wrapped around a final handler.
type Middlewares[H any] []*Middleware[H]

// Build wraps handler with the middlewares sorted by priority, the lowest
// priority being the outermost one. Middlewares without an ID get a random one.
func (mws Middlewares[H]) Build(handler H) H {
	sort.SliceStable(mws, func(i, j int) bool {
		return mws[i].Priority < mws[j].Priority
	})

	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i].ID == "" {
			mws[i].ID = uuid.NewString()
		}
		handler = mws[i].Func(handler)
	}

	return handler
}

// Chain is a shorthand for Middlewares.Build with anonymous middlewares
// executed in the order they are given.
func Chain(handler Handler, middlewareFuncs ...func(Handler) Handler) Handler {
	mws := make(Middlewares[Handler], len(middlewareFuncs))
	for i, fn := range middlewareFuncs {
		mws[i] = &Middleware[Handler]{Func: fn}
	}
	return mws.Build(handler)
}
