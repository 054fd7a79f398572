package apperrors

import "errors"

var (
	ErrCatalogNotBuilt  = errors.New("catalog has not been built")
	ErrEmptyQuestion    = errors.New("question must not be empty")
	ErrContextRequired  = errors.New("semantic context is required")
	ErrSecurityRejected = errors.New("query rejected by security validation")
	ErrRepairExhausted  = errors.New("repair budget exhausted")
	ErrUnknownTaskType  = errors.New("unknown task type")
	ErrTableNotFound    = errors.New("table not found in catalog")
	ErrSnapshotCorrupt  = errors.New("catalog snapshot is malformed")
)
