package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHandleStatus(t *testing.T) {
	t.Run("returns service info and kinds", func(t *testing.T) {
		tagStore := NewMockTagStore()
		tagStore.On("Kinds").Return([]string{"artifact", "function", "feature-set"})
		handler := handleStatus(tagStore)

		req := httptest.NewRequest("GET", "/", nil)
		w := httptest.NewRecorder()

		handler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

		var resp StatusResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "metastore", resp.Service)
		assert.Equal(t, []string{"artifact", "function", "feature-set"}, resp.Kinds)
	})
}

func TestHandleHealth(t *testing.T) {
	t.Run("ok when the database answers", func(t *testing.T) {
		healthStore := NewMockHealthStore()
		healthStore.On("CheckConnectivity", mock.Anything).Return(nil)

		req := httptest.NewRequest("GET", "/healthz", nil)
		w := httptest.NewRecorder()
		handleHealth(healthStore)(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	})

	t.Run("unavailable when the database does not", func(t *testing.T) {
		healthStore := NewMockHealthStore()
		healthStore.On("CheckConnectivity", mock.Anything).Return(errors.New("connection refused"))

		req := httptest.NewRequest("GET", "/healthz", nil)
		w := httptest.NewRecorder()
		handleHealth(healthStore)(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}
