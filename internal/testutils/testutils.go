package testutils

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLogger(tb testing.TB) *zerolog.Logger {
	tb.Helper()

	logger := zerolog.New(zerolog.NewConsoleWriter(zerolog.ConsoleTestWriter(tb)))
	return &logger
}

// Clock is a clock only moving when told to.
type Clock struct {
	now  time.Time
	lock sync.Mutex
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now = c.now.Add(d)
}

// RequestRecorder records the requests reaching a handler.
type RequestRecorder struct {
	requests []*http.Request
	lock     sync.Mutex
}

func (r *RequestRecorder) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.lock.Lock()
		r.requests = append(r.requests, req.Clone(req.Context()))
		r.lock.Unlock()
		next.ServeHTTP(w, req)
	})
}

func (r *RequestRecorder) Count() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.requests)
}

// Last returns the last request received, or nil.
func (r *RequestRecorder) Last() *http.Request {
	r.lock.Lock()
	defer r.lock.Unlock()

	if len(r.requests) == 0 {
		return nil
	}
	return r.requests[len(r.requests)-1]
}
