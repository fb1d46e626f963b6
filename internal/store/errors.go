package store

import (
	apperrors "github.com/vocabkeep/vocabkeep/internal/errors"
)

// Sentinel errors. They carry domain codes so callers can match them with
// errors.Is against either these values or the apperrors sentinels.
var (
	ErrNotFound       = apperrors.NotFound("record not found")
	ErrAlreadyExists  = apperrors.Duplicate("record already exists")
	ErrNotInitialized = apperrors.Storage(nil, "store not initialized: no default list")
)
