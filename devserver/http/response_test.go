package http_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lakehouselib/lakehouse"
	"github.com/lakehouselib/lakehouse/devserver"
	devhttp "github.com/lakehouselib/lakehouse/devserver/http"
	"github.com/stretchr/testify/assert"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantDetail string
	}{
		{name: "not found", err: fmt.Errorf("file f-1: %w", devserver.ErrNotFound), wantCode: http.StatusNotFound},
		{name: "invalid input", err: fmt.Errorf("bad version: %w", devserver.ErrInvalidInput), wantCode: http.StatusBadRequest},
		{name: "invalid filter", err: fmt.Errorf("%w: operator", lakehouse.ErrInvalidFilterFormat), wantCode: http.StatusUnprocessableEntity},
		{name: "conflict", err: devserver.ErrConflict, wantCode: http.StatusConflict},
		{
			name:       "unauthorized hides cause",
			err:        fmt.Errorf("token expired: %w", devserver.ErrUnauthorized),
			wantCode:   http.StatusUnauthorized,
			wantDetail: "Could not validate credentials",
		},
		{
			name:       "unexpected",
			err:        errors.New("disk on fire"),
			wantCode:   http.StatusInternalServerError,
			wantDetail: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			devhttp.HandleError(w, tt.err)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			want := tt.wantDetail
			if want == "" {
				want = tt.err.Error()
			}
			assert.Equal(t, want, detail(t, w))
		})
	}
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	err := devhttp.WriteJSON(w, http.StatusCreated, lakehouse.NewRecord("b", 1, "a", "x"))

	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "{\"b\":1,\"a\":\"x\"}\n", w.Body.String())
}
