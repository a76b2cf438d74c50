package ecs

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Dispatcher runs the members of one parallel group and waits for all of them.
type Dispatcher interface {
	Dispatch(tasks []func() error) error
}

// GroupDispatcher runs tasks on goroutines, at most Limit at a time.
type GroupDispatcher struct {
	Limit int
}

// NewGroupDispatcher returns a dispatcher bounded by GOMAXPROCS.
func NewGroupDispatcher() *GroupDispatcher {
	return &GroupDispatcher{Limit: runtime.GOMAXPROCS(0)}
}

// Dispatch starts every task and returns the first error once all have finished.
func (d *GroupDispatcher) Dispatch(tasks []func() error) error {
	if len(tasks) == 1 {
		return tasks[0]()
	}

	var g errgroup.Group
	if d.Limit > 0 {
		g.SetLimit(d.Limit)
	}
	for _, task := range tasks {
		g.Go(task)
	}
	return g.Wait()
}
