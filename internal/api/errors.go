// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"fmt"
)

// Error variables for common backend errors.
var (
	// ErrUnavailable indicates the backend could not be reached at all.
	ErrUnavailable = errors.New("backend unavailable")

	// ErrBadRequest indicates the backend rejected the request payload.
	ErrBadRequest = errors.New("bad request")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")
)

// APIError represents a non-OK response from the backend.
type APIError struct {
	Endpoint string
	Status   int
	Message  string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend error (HTTP %d) on %s: %s", e.Status, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("backend error (HTTP %d) on %s", e.Status, e.Endpoint)
}

// Is maps status codes onto the sentinel errors so callers can use errors.Is.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrBadRequest:
		return e.Status == 400 || e.Status == 422
	case ErrNotFound:
		return e.Status == 404
	}
	return false
}

// IsCanceled reports whether err is a context cancellation. Cancellation is
// not a failure: callers treat it as a silent no-op.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
