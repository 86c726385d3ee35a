// Package scroll drives the back-to-top control: its visibility and the
// eased scroll animation back to the top of the page.
package scroll

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultBackTopThreshold is the scroll offset above which the
	// back-to-top control is shown.
	DefaultBackTopThreshold = 300
	// DefaultInterval is the delay between animation frames.
	DefaultInterval = 16 * time.Millisecond

	decay   = 0.9
	minStep = 1.0
)

// Viewport is the port to the scrollable window.
type Viewport interface {
	ScrollTop() float64
	SetScrollTop(top float64)
}

// ShowBackTop reports whether the back-to-top control should be visible.
func ShowBackTop(top, threshold float64) bool {
	return top > threshold
}

// InitialStep is the first frame's distance: a tenth of the scrollable range.
func InitialStep(scrollHeight, windowHeight float64) float64 {
	return (scrollHeight - windowHeight) / 10
}

// Step computes one animation frame. Each frame moves up by step and shrinks
// the next step by 10%. Once the remaining distance is within one step (or
// under a pixel) the frame lands on 0 and done is true.
func Step(top, step float64) (newTop, newStep float64, done bool) {
	if step < minStep {
		step = minStep
	}
	if top > step && top >= minStep {
		return top - step, step * decay, false
	}
	return 0, step, true
}

// Animator runs at most one scroll animation at a time.
type Animator struct {
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewAnimator creates an Animator; a non-positive interval uses
// DefaultInterval.
func NewAnimator(interval time.Duration) *Animator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Animator{interval: interval}
}

// ScrollToTop starts animating vp to the top. It returns false, leaving the
// running animation alone, if one is already in progress.
func (a *Animator) ScrollToTop(ctx context.Context, vp Viewport, step float64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return false
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	a.cancel = cancel
	a.done = done

	go a.run(ctx, cancel, done, vp, step)
	return true
}

func (a *Animator) run(ctx context.Context, cancel context.CancelFunc, done chan struct{}, vp Viewport, step float64) {
	defer func() {
		cancel()
		a.mu.Lock()
		a.cancel = nil
		a.done = nil
		a.mu.Unlock()
		close(done)
	}()

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			top, next, finished := Step(vp.ScrollTop(), step)
			vp.SetScrollTop(top)
			if finished {
				return
			}
			step = next
		}
	}
}

// Running reports whether an animation is in progress.
func (a *Animator) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cancel != nil
}

// Stop cancels the running animation, if any, and waits for it to exit.
func (a *Animator) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Wait blocks until the running animation, if any, finishes.
func (a *Animator) Wait() {
	a.mu.Lock()
	done := a.done
	a.mu.Unlock()
	if done != nil {
		<-done
	}
}
