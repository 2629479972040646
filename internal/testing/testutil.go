// Package testing provides test utilities for the nmon report tool: an
// nmon fixture builder and a safe way to assert from goroutines.
package testing

import (
	"context"
	"sync"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

// =============================================================================
// Concurrent Assertions
// =============================================================================

// GoroutineTest collects errors from goroutines.
//
// Using t.Fatal or t.FailNow in a goroutine causes undefined behavior because
// these functions call runtime.Goexit() which only exits the current goroutine,
// not the test goroutine. Goroutines return errors instead:
//
//	func TestConcurrentRuns(t *testing.T) {
//	    gt := nmontest.NewGoroutineTest(t)
//	    defer gt.Wait()
//
//	    gt.Go(func(ctx context.Context) error {
//	        data, err := nmon.ParseFiles(ctx, paths, opts)
//	        if err != nil {
//	            return fmt.Errorf("parse: %w", err)
//	        }
//	        return nil
//	    })
//	}
type GoroutineTest struct {
	t      *testing.T
	group  errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	errs []error
}

// NewGoroutineTest creates a new GoroutineTest helper.
func NewGoroutineTest(t *testing.T) *GoroutineTest {
	return NewGoroutineTestWithTimeout(t, 0)
}

// NewGoroutineTestWithTimeout creates a GoroutineTest whose context expires
// after timeout. timeout <= 0 means no deadline.
func NewGoroutineTestWithTimeout(t *testing.T, timeout time.Duration) *GoroutineTest {
	ctx, cancel := context.WithCancel(context.Background())
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), timeout)
	}
	return &GoroutineTest{t: t, ctx: ctx, cancel: cancel}
}

// Go runs fn in a goroutine and records its error. Unlike a plain errgroup,
// every error is kept, not only the first.
func (gt *GoroutineTest) Go(fn func(ctx context.Context) error) {
	gt.group.Go(func() error {
		if err := fn(gt.ctx); err != nil {
			gt.mu.Lock()
			gt.errs = append(gt.errs, err)
			gt.mu.Unlock()
		}
		return nil
	})
}

// Wait waits for all goroutines and fails the test if any returned an error.
//
//	gt := nmontest.NewGoroutineTest(t)
//	defer gt.Wait()
func (gt *GoroutineTest) Wait() {
	_ = gt.group.Wait()
	gt.cancel()

	gt.mu.Lock()
	defer gt.mu.Unlock()
	if len(gt.errs) == 0 {
		return
	}
	for i, err := range gt.errs {
		gt.t.Errorf("goroutine error [%d/%d]: %v", i+1, len(gt.errs), err)
	}
	gt.t.FailNow()
}

// Context returns the context passed to every goroutine.
func (gt *GoroutineTest) Context() context.Context {
	return gt.ctx
}
