package arbiter

import (
	"sync"

	"github.com/abhisek/geofix/internal/geo"
)

// completion is a write-once resolution cell. A second write panics:
// resolve-once is a structural invariant here, not a convention the
// engine merely follows.
type completion struct {
	mu     sync.Mutex
	done   chan struct{}
	sample geo.Sample
	err    error
}

func newCompletion() *completion {
	return &completion{done: make(chan struct{})}
}

// resolve writes the terminal outcome and closes the done channel.
func (c *completion) resolve(s geo.Sample, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.done:
		panic("arbiter: completion resolved twice")
	default:
	}

	c.sample = s
	c.err = err
	close(c.done)
}

// doneCh is closed once the cell is resolved.
func (c *completion) doneCh() <-chan struct{} { return c.done }

// result returns the outcome. Valid only after doneCh is closed.
func (c *completion) result() (geo.Sample, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sample, c.err
}
