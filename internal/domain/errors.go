package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to response envelopes without
// leaking infrastructure details.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrBadRequest = errors.New("bad request")
	ErrExpired    = errors.New("expired")
	ErrMismatch   = errors.New("mismatch")
	ErrDispatch   = errors.New("dispatch failed")
)
