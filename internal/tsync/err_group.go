package tsync

import (
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrorGroup runs tasks concurrently and collects every error instead of
// keeping only the first one like errgroup does. Wait returns the joined
// errors, so a single failed task fails the whole group.
type ErrorGroup struct {
	sync.Mutex
	errors []error
	eg     errgroup.Group
}

func (g *ErrorGroup) SetLimit(n int) {
	g.eg.SetLimit(n)
}

func (g *ErrorGroup) Go(n func() error) {
	g.eg.Go(func() error {
		if err := n(); err != nil {
			g.Lock()
			defer g.Unlock()
			g.errors = append(g.errors, err)
		}
		return nil
	})
}

func (g *ErrorGroup) Wait() error {
	_ = g.eg.Wait()
	return errors.Join(g.errors...)
}
