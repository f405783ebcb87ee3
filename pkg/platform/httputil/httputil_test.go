package httputil

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dErrors "marketgate/pkg/domain-errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainCodeToHTTPStatus(t *testing.T) {
	cases := map[dErrors.Code]int{
		dErrors.CodeLockedOut:       http.StatusTooManyRequests,
		dErrors.CodeRateLimited:     http.StatusTooManyRequests,
		dErrors.CodeValidation:      http.StatusBadRequest,
		dErrors.CodePayloadTooLarge: http.StatusRequestEntityTooLarge,
		dErrors.CodeAddressBlocked:  http.StatusForbidden,
		dErrors.CodeThrottled:       http.StatusServiceUnavailable,
		dErrors.CodeNotFound:        http.StatusNotFound,
		dErrors.Code("unmapped"):    http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, DomainCodeToHTTPStatus(code), string(code))
	}
}

func TestWriteError(t *testing.T) {
	t.Run("domain error uses mapped status and envelope", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeNotFound, "no lockout for address"))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var body ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.Equal(t, "no lockout for address", body.Message)
		assert.Equal(t, "not_found", body.Error)
	})

	t.Run("plain error becomes 500", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("boom"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "boom")
	})
}

type blockRequest struct {
	Address string `json:"address"`
}

func (r *blockRequest) Normalize() {
	r.Address = strings.TrimSpace(r.Address)
}

func (r *blockRequest) Validate() error {
	if r.Address == "" {
		return errors.New("address is required")
	}
	return nil
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("normalizes and returns request", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"address":"  198.51.100.4 "}`))
		w := httptest.NewRecorder()

		req, ok := DecodeAndPrepare[blockRequest](w, r, logger, r.Context(), "req-1")
		require.True(t, ok)
		assert.Equal(t, "198.51.100.4", req.Address)
	})

	t.Run("validation error writes 400", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"address":" "}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[blockRequest](w, r, logger, r.Context(), "req-1")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "address is required")
	})

	t.Run("malformed json writes 400", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{`))
		w := httptest.NewRecorder()

		_, ok := DecodeJSON[blockRequest](w, r, logger, r.Context(), "req-1")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("body over the reader limit writes 413", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"address":"`+strings.Repeat("1", 64)+`"}`))
		w := httptest.NewRecorder()
		r.Body = http.MaxBytesReader(w, r.Body, 16)

		_, ok := DecodeJSON[blockRequest](w, r, logger, r.Context(), "req-1")
		assert.False(t, ok)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}
