package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sociable/messenger-backend/faults"
)

func TestWriteError_StatusMapping(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"invalid argument", faults.New(faults.InvalidArgument, "content too long"), http.StatusBadRequest, "content too long"},
		{"not found", faults.New(faults.NotFound, "user not found"), http.StatusNotFound, "user not found"},
		{"conflict", faults.New(faults.Conflict, "friend request already sent"), http.StatusConflict, "friend request already sent"},
		{"unauthenticated", faults.New(faults.Unauthenticated, "credential expired"), http.StatusUnauthorized, "credential expired"},
		{"forbidden", faults.New(faults.Forbidden, "blocked"), http.StatusForbidden, "blocked"},
		{"unavailable", faults.New(faults.Unavailable, "database unreachable"), http.StatusServiceUnavailable, "database unreachable"},
		{"internal", faults.New(faults.Internal, "relationship has no status events"), http.StatusInternalServerError, "relationship has no status events"},
		{"untyped", errors.New("driver: bad connection"), http.StatusInternalServerError, "unknown"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(logger, rec, tc.err)

			assert.Equal(t, tc.status, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.body, body["error"])
		})
	}
}

func TestWriteError_NeverLeaksWrappedInternals(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	rec := httptest.NewRecorder()
	err := faults.Wrap(faults.Unavailable, "user create failed", errors.New("pq: secret dsn detail"))
	WriteError(logger, rec, err)

	assert.NotContains(t, rec.Body.String(), "secret dsn detail")
	assert.Contains(t, rec.Body.String(), "user create failed")
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]int{"id": 7})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":7}`, rec.Body.String())
}
