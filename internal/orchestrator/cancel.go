// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"context"
	"sync"
)

// =============================================================================
// CANCELLATION CONTROLLER
// =============================================================================

// Controller holds the cancellation handle for the in-flight streaming
// request. Exactly one handle is current at a time: replacing the handle
// cancels the previous one so a stale stream can never resume into a newer
// send.
//
// IMPORTANT: Must be used as a pointer so the mutex is never copied.
type Controller struct {
	mu         sync.Mutex
	cancelFunc context.CancelFunc
}

// NewController creates a new Controller.
func NewController() *Controller {
	return &Controller{}
}

// Replace stores a new cancel function, cancelling any previous one first.
func (c *Controller) Replace(fn context.CancelFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelFunc != nil {
		c.cancelFunc()
	}
	c.cancelFunc = fn
}

// Cancel invokes the stored cancel function and clears it. Idempotent:
// repeated stops are harmless.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelFunc != nil {
		c.cancelFunc()
		c.cancelFunc = nil
	}
}

// Clear cancels the context (if present) and removes the cancel function.
// Always cancels to prevent context leaks.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelFunc != nil {
		c.cancelFunc()
		c.cancelFunc = nil
	}
}

// Active reports whether a cancellation handle is currently held.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelFunc != nil
}
