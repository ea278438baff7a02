package middleware

import (
	"context"
	"net/http"
	"sync"
)

type ctxStateKeyStruct struct{}

var ctxStateKey = ctxStateKeyStruct{}

// RequestState is the per request information handlers report back to the
// middlewares.
type RequestState struct {
	cache string
	lock  sync.Mutex
}

func initializeState(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxStateKey, &RequestState{})
}

func getState(ctx context.Context) *RequestState {
	state, _ := ctx.Value(ctxStateKey).(*RequestState)
	return state
}

// SetCacheState records how the response to r was obtained. It is a no-op
// for requests that did not go through StateHandler.
func SetCacheState(r *http.Request, value string) {
	if state := getState(r.Context()); state != nil {
		state.lock.Lock()
		defer state.lock.Unlock()
		state.cache = value
	}
}

func GetCacheState(ctx context.Context) string {
	state := getState(ctx)
	if state == nil {
		return "N/A"
	}

	state.lock.Lock()
	defer state.lock.Unlock()

	if state.cache == "" {
		return "N/A"
	}
	return state.cache
}

func StateHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = r.WithContext(initializeState(r.Context()))
		next.ServeHTTP(w, r)
	})
}
