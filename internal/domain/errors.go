package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid request")
	ErrEmailTaken     = errors.New("email taken")
	ErrQuotaExceeded  = errors.New("quota exceeded")
	ErrPlanningFailed = errors.New("planning failed")
	ErrStorageFailed  = errors.New("storage failed")
)
