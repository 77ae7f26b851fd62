package apperrors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	t.Run("chaining", func(t *testing.T) {
		ErrBaseErr := New("base error")
		assert.Equal(t, "base error", ErrBaseErr.Error())
		assert.Equal(t, "msg", ErrBaseErr.New("msg").Error())
		assert.ErrorIs(t, ErrBaseErr, ErrBaseErr)

		ErrFirstLevel := ErrBaseErr.New("first level")
		assert.Equal(t, "first level", ErrFirstLevel.Error())
		assert.ErrorIs(t, ErrFirstLevel, ErrBaseErr)

		ErrAnotherErr := New("another error")
		ErrWrappedErr := ErrFirstLevel.Err(ErrAnotherErr.Msg("another error msg"))
		assert.Equal(t, "first level", ErrWrappedErr.Error())
		assert.ErrorIs(t, ErrWrappedErr, ErrBaseErr)
		assert.ErrorIs(t, ErrWrappedErr, ErrFirstLevel)
		assert.ErrorIs(t, ErrWrappedErr, ErrAnotherErr)

		err := errors.New("error")
		ErrWrappedErr = ErrFirstLevel.MsgErr("msg", err)
		assert.Equal(t, "msg", ErrWrappedErr.Error())
		assert.ErrorIs(t, ErrWrappedErr, ErrBaseErr)
		assert.ErrorIs(t, ErrWrappedErr, err)
		assert.Equal(t, "msg; error", ErrWrappedErr.ErrorAll())

		goErr := fmt.Errorf("go error")
		assert.ErrorIs(t, ErrFirstLevel.Err(goErr), goErr)
	})

	t.Run("status and body", func(t *testing.T) {
		e := New("boom").SetStatusCode(http.StatusTeapot).WithBody("short and stout")
		assert.Equal(t, http.StatusTeapot, e.StatusCode())
		assert.Equal(t, "short and stout", e.Body())
		assert.Equal(t, "boom: short and stout", e.Error())
		assert.Equal(t, http.StatusTeapot, StatusCode(fmt.Errorf("wrapped: %w", e)))
		assert.Equal(t, 0, StatusCode(errors.New("plain")))
	})
}

func TestFromStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   error
	}{
		{"not found", http.StatusNotFound, ErrNotFound},
		{"forbidden", http.StatusForbidden, ErrForbidden},
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"bad request", http.StatusBadRequest, ErrServerOrClient},
		{"conflict", http.StatusConflict, ErrServerOrClient},
		{"internal", http.StatusInternalServerError, ErrServerOrClient},
		{"gateway", http.StatusBadGateway, ErrServerOrClient},
	}
	kinds := []error{ErrNotFound, ErrForbidden, ErrUnauthorized, ErrServerOrClient, ErrParse, ErrValidation, ErrTransport}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromStatus(tt.status, `{"detail":"nope"}`)
			if assert.Error(t, err) {
				assert.ErrorIs(t, err, tt.kind)
				for _, k := range kinds {
					if k != tt.kind {
						assert.NotErrorIs(t, err, k)
					}
				}
				assert.Equal(t, tt.status, err.StatusCode())
				assert.Equal(t, `{"detail":"nope"}`, err.Body())
				assert.Contains(t, err.Error(), `{"detail":"nope"}`)
			}
		})
	}

	assert.Nil(t, FromStatus(http.StatusOK, "ok"))
	assert.Nil(t, FromStatus(http.StatusNoContent, ""))
	assert.True(t, IsNotFound(FromStatus(http.StatusNotFound, "")))
}

func TestValidationErrors(t *testing.T) {
	ves := ValidationErrors{
		ErrMissingRequiredAttribute("engine"),
		ErrMissingRequiredAttribute("description"),
	}
	assert.ErrorIs(t, ves, ErrValidation)
	assert.Equal(t, "engine: missing required attribute; description: missing required attribute", ves.Error())
	assert.Equal(t, []string{"engine", "description"}, ves.Fields())

	var target ValidationErrors
	assert.True(t, errors.As(fmt.Errorf("create: %w", ves), &target))

	single := ErrEmptyList("datasources", "a mind needs at least one datasource")
	assert.ErrorIs(t, single, ErrValidation)
	assert.NotErrorIs(t, single, ErrNotFound)
	assert.Equal(t, "datasources: cannot be empty; a mind needs at least one datasource", single.Error())
}
