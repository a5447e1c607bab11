// SPDX-License-Identifier: MPL-2.0

package core

import "errors"

// Error kinds used across the core. Callers classify with errors.Is and the
// web layer maps them to HTTP statuses. Wrap with fmt.Errorf("...: %w", Err...)
// to add context.
var (
	// Malformed input (bad static JSON, rejected SQL, out-of-range layout values).
	// The previous valid state is always retained.
	ErrValidation = errors.New("validation error")
	// Dashboard or query id lookup miss.
	ErrNotFound = errors.New("not found")
	// Mutation of a public dashboard without toggle rights, or of a public query.
	// Rejected before any state changes.
	ErrPermission = errors.New("permission denied")
	// API fetch or network failure. The dataset of record is left unchanged.
	ErrTransport = errors.New("transport error")
	// A referenced query exists but cannot serve data (inactive).
	ErrResolution = errors.New("resolution error")
)
