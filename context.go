package whoops

import (
	"context"
	"sync/atomic"
)

type (
	requestIDKey    struct{}
	eventTrackerKey struct{}
)

// ContextWithRequestID returns a copy of ctx carrying the request ID shown in
// the error reports of that request.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func CtxRequestID(ctx context.Context) string {
	value, _ := ctx.Value(requestIDKey{}).(string)
	return value
}

type eventTracker struct {
	event atomic.Pointer[Event]
}

// TrackEvent returns a copy of ctx in which a boundary records the event of
// a failed request, and a function returning that event, nil while there is none.
//
// It is meant for middlewares mounted outside the boundary, which only see
// the rendered 500 response.
func TrackEvent(ctx context.Context) (context.Context, func() *Event) {
	tracker := &eventTracker{}
	return context.WithValue(ctx, eventTrackerKey{}, tracker), tracker.event.Load
}

func trackEvent(ctx context.Context, event *Event) {
	if tracker, ok := ctx.Value(eventTrackerKey{}).(*eventTracker); ok {
		tracker.event.Store(event)
	}
}
