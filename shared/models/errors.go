package models

import "errors"

// Application-wide standard errors
var (
	// Common Resource/DB Errors
	ErrNotFound      = errors.New("resource not found") // General not found
	ErrEventNotFound = errors.New("game event not found")
	ErrStateNotFound = errors.New("progression state not found")

	// State machine errors
	ErrInvalidEventState   = errors.New("event state does not permit this transition")
	ErrEventNotActive      = errors.New("event is not active")
	ErrDuplicateNaturalKey = errors.New("unresolved event with the same natural key already exists")

	// Candidate/payload validation
	ErrInvalidCandidate = errors.New("candidate is malformed")
	ErrInvalidPayload   = errors.New("event payload does not match event type")
	ErrInvalidInput     = errors.New("invalid input data")

	// Token Errors
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")

	// General Request/Server Errors
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternalServer = errors.New("internal server error")
	ErrStore          = errors.New("persistence failure") // Opaque store-layer error: retry or surface

	// Add other specific errors as needed
)
