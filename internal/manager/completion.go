package manager

import (
	"context"
	"time"
)

// Result describes a finished generation or load.
type Result struct {
	Root      string
	Lines     int           // lines kept in the store
	Bytes     int64         // tag file size
	Generated bool          // the external generator ran
	Cached    bool          // the index was already loaded; nothing was read
	Duration  time.Duration // wall time of the request
}

// Completion is the handle for an asynchronous generate or load request.
// Several callers may hold the same Completion when a request joined one
// already in flight.
type Completion struct {
	done chan struct{}
	res  Result
	err  error
}

func newCompletion() *Completion {
	return &Completion{done: make(chan struct{})}
}

func completed(res Result, err error) *Completion {
	c := newCompletion()
	c.finish(res, err)
	return c
}

func (c *Completion) finish(res Result, err error) {
	c.res = res
	c.err = err
	close(c.done)
}

// Done is closed once the request has finished.
func (c *Completion) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the request finishes or ctx is done. Giving up on ctx
// does not stop the request itself.
func (c *Completion) Wait(ctx context.Context) (Result, error) {
	select {
	case <-c.done:
		return c.res, c.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Err returns the request error, or nil while it is still running.
func (c *Completion) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}
