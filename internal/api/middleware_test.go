package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mkozlov/chatterbox/internal/database"
	"github.com/stretchr/testify/assert"
)

func TestErrorHandlerRecoversPanics(t *testing.T) {
	tcases := []struct {
		name  string
		panic interface{}
	}{
		{name: "error value", panic: errors.New("boom")},
		{name: "string value", panic: "boom"},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			app, _, _ := newTestApp(t, &database.MockChatRepository{})

			h := app.errorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic(tc.panic)
			}))

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, http.StatusInternalServerError, rr.Code)
			assert.Equal(t, "close", rr.Header().Get("Connection"))

			var body ApiError
			assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, "internal server error", body.Message)
		})
	}
}

func TestErrorHandlerPassesThrough(t *testing.T) {
	app, _, _ := newTestApp(t, &database.MockChatRepository{})

	h := app.errorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rr.Code)
}
