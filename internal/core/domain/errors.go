package domain

import "errors"

var (
	// ErrNotFound means a node, request or team identifier did not resolve.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput covers malformed identifiers, urgencies and payloads.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidTransition is returned for lifecycle moves the SOS state
	// machine does not allow (anything out of Rescued, Pending -> Rescued).
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrConnectionLost marks a subscriber that could not take a delivery.
	ErrConnectionLost = errors.New("connection lost")
	// ErrSearchLimit is returned when a route search exceeds its expansion budget.
	ErrSearchLimit = errors.New("route search expansion limit exceeded")
)
