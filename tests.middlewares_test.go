package main

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// This file contains unit tests for the api middlewares.

// TestMiddlewaresStacks ensures the public stack carries the maintenance
// gate while the ops stack does not.
func TestMiddlewaresStacks(t *testing.T) {
	api := newTestAPIHandler(nil)
	public, ops := api.MiddlewaresStacks()
	assert.Len(t, *public, 7)
	assert.Len(t, *ops, 6)
}

// TestChain ensures middlewares wrap the handle from first to last.
func TestChain(t *testing.T) {
	var calls []string
	tag := func(name string) MiddlewareFunc {
		return func(next httprouter.Handle) httprouter.Handle {
			return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
				calls = append(calls, name)
				next(w, r, ps)
			}
		}
	}
	stack := Middlewares{tag("first"), tag("second"), tag("third")}
	handle := stack.Chain(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		calls = append(calls, "handler")
	})
	handle(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), httprouter.Params{})
	assert.Equal(t, []string{"first", "second", "third", "handler"}, calls)
}

// TestRequestIDMiddleware ensures each request context receives a unique id.
func TestRequestIDMiddleware(t *testing.T) {
	api := newTestAPIHandler(nil)
	var requestID string
	handle := api.RequestIDMiddleware(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		requestID = GetValueFromContext(r.Context(), RequestIDContextKey)
	})
	handle(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), httprouter.Params{})
	assert.Equal(t, RequestIDPrefix+":"+testISBN, requestID)
}

// TestRequestsCounterMiddleware ensures the received requests counter moves
// and lands in the request context.
func TestRequestsCounterMiddleware(t *testing.T) {
	api := newTestAPIHandler(nil)
	var num uint64
	handle := api.RequestsCounterMiddleware(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		num = GetRequestNumberFromContext(r.Context())
	})
	handle(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), httprouter.Params{})
	assert.Equal(t, uint64(1), num)
	handle(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), httprouter.Params{})
	assert.Equal(t, uint64(2), num)
}

// TestCORSMiddleware ensures cors headers are applied to the response.
func TestCORSMiddleware(t *testing.T) {
	handle := CORSMiddleware(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {})
	w := httptest.NewRecorder()
	handle(w, httptest.NewRequest(http.MethodGet, "/", nil), httprouter.Params{})
	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, res.Header.Get("Access-Control-Allow-Methods"), http.MethodDelete)
}

// TestStatusRecorderMiddleware ensures the response status lands in the
// per-status statistics.
func TestStatusRecorderMiddleware(t *testing.T) {
	api := newTestAPIHandler(nil)
	handle := api.StatusRecorderMiddleware(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		w.WriteHeader(http.StatusTeapot)
	})
	handle(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), httprouter.Params{})
	api.stats.mu.RLock()
	defer api.stats.mu.RUnlock()
	assert.Equal(t, uint64(1), api.stats.status[http.StatusTeapot])
}

// TestMaintenanceModeMiddleware ensures public requests are short-circuited
// with a 503 only while the mode is enabled.
func TestMaintenanceModeMiddleware(t *testing.T) {
	api := newTestAPIHandler(nil)
	var reached bool
	handle := api.MaintenanceModeMiddleware(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})

	t.Run("disabled mode lets the request through", func(t *testing.T) {
		w := httptest.NewRecorder()
		handle(w, httptest.NewRequest(http.MethodGet, "/books", nil), httprouter.Params{})
		assert.True(t, reached)
		assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	})

	t.Run("enabled mode answers 503", func(t *testing.T) {
		reached = false
		api.mode.message = "upgrading storage"
		api.mode.started = NewMockClocker().Now()
		api.mode.enabled.Store(true)
		defer api.mode.enabled.Store(false)
		w := httptest.NewRecorder()
		handle(w, httptest.NewRequest(http.MethodGet, "/books", nil), httprouter.Params{})
		res := w.Result()
		defer res.Body.Close()
		assert.False(t, reached)
		assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
		body := decodeJSONMap(t, res)
		assert.Equal(t, "service currently unavailable.", body["message"])
		assert.Equal(t, "upgrading storage", body["reason"])
	})
}

// TestMaintenanceModeConcurrentToggle exercises the maintenance handler and
// the public middleware from concurrent goroutines so the race detector can
// check the mode message and start time accesses.
func TestMaintenanceModeConcurrentToggle(t *testing.T) {
	api := newTestAPIHandler(nil)
	handle := api.MaintenanceModeMiddleware(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/ops/maintenance?status=enable&msg=upgrading", nil)
			api.Maintenance(httptest.NewRecorder(), req, httprouter.Params{})
		}()
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/ops/maintenance?status=disable", nil)
			api.Maintenance(httptest.NewRecorder(), req, httprouter.Params{})
		}()
		go func() {
			defer wg.Done()
			handle(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/books", nil), httprouter.Params{})
		}()
	}
	wg.Wait()
}

// TestPanicRecoveryMiddleware ensures a panicking handler still produces a
// well-formed 500 response.
func TestPanicRecoveryMiddleware(t *testing.T) {
	api := newTestAPIHandler(nil)
	handle := api.PanicRecoveryMiddleware(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		panic("boom")
	})
	w := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handle(w, httptest.NewRequest(http.MethodGet, "/books", nil), httprouter.Params{})
	})
	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	body := decodeJSONMap(t, res)
	assert.Equal(t, "internal server error", body["error"])
}
