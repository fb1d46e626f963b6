package errors_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vocabkeep/vocabkeep/internal/errors"
)

func TestIs_MatchesByCode(t *testing.T) {
	err := errors.NotFound("word word-123 not found")

	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.False(t, errors.Is(err, errors.ErrValidation))
}

func TestIs_ThroughWrapping(t *testing.T) {
	err := fmt.Errorf("delete word: %w", errors.Duplicate("list name taken"))

	assert.True(t, errors.Is(err, errors.ErrDuplicate))
	assert.Equal(t, errors.CodeDuplicate, errors.CodeOf(err))
}

func TestStorage_KeepsCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := errors.Storage(cause, "commit transaction")

	assert.ErrorIs(t, err, errors.ErrStorage)
	assert.Equal(t, cause, errors.Unwrap(err))
	assert.Equal(t, "commit transaction: disk full", err.Error())
}

func TestCodeOf_UnknownIsInternal(t *testing.T) {
	assert.Equal(t, errors.CodeInternal, errors.CodeOf(fmt.Errorf("boom")))
}

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.CodeValidation, http.StatusBadRequest},
		{errors.CodeNotFound, http.StatusNotFound},
		{errors.CodeDuplicate, http.StatusConflict},
		{errors.CodeStorage, http.StatusServiceUnavailable},
		{errors.CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestWithDetails_DoesNotMutateSentinel(t *testing.T) {
	detailed := errors.ErrValidation.WithDetails(map[string]string{"text": "is required"})

	assert.NotNil(t, detailed.Details)
	assert.Nil(t, errors.ErrValidation.Details)
}
