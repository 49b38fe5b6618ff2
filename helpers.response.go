package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// CustomResponseWriter is a wrapper for http.ResponseWriter. It is
// used to record response details like status code and body size.
// The underlying network connection is tracked for dynamic read/write
// deadline setup.
type CustomResponseWriter struct {
	http.ResponseWriter
	conn  net.Conn
	code  int
	bytes int
	wrote bool
}

// NewCustomResponseWriter provides CustomResponseWriter with 200 as status code.
func NewCustomResponseWriter(rw http.ResponseWriter, c net.Conn) *CustomResponseWriter {
	return &CustomResponseWriter{
		ResponseWriter: rw,
		conn:           c,
		code:           200,
	}
}

// Header implements http.Header interface.
func (cw *CustomResponseWriter) Header() http.Header {
	return cw.ResponseWriter.Header()
}

// WriteHeader implements http.WriteHeader interface.
func (cw *CustomResponseWriter) WriteHeader(code int) {
	if cw.Header().Get("X-BRS-ABORTED") != "" {
		cw.code = code
		cw.wrote = true
		return
	}

	if !cw.wrote {
		cw.code = code
		cw.wrote = true
		cw.ResponseWriter.WriteHeader(code)
	}
}

// Write implements http.Write interface. If the header X-BRS-ABORTED was set
// that means the timeout middleware was already triggered so the final handler
// should not send any response to client.
func (cw *CustomResponseWriter) Write(bytes []byte) (int, error) {
	if cw.Header().Get("X-BRS-ABORTED") != "" {
		return 0, fmt.Errorf("handler: request timed out or cancelled")
	}

	if !cw.wrote {
		cw.WriteHeader(cw.code)
	}

	n, err := cw.ResponseWriter.Write(bytes)
	cw.bytes += n
	return n, err
}

// Status returns the written status code.
func (cw *CustomResponseWriter) Status() int {
	return cw.code
}

// Bytes returns bytes written as response body.
func (cw *CustomResponseWriter) Bytes() int {
	return cw.bytes
}

// Unwrap returns native response writer and used by
// the http.ResponseController during its operation.
func (cw *CustomResponseWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}

// SetWriteDeadline rewrites the underlying connection write deadline.
// This is called by http.ResponseController SetWriteDeadline method.
func (cw *CustomResponseWriter) SetWriteDeadline(t time.Time) error {
	if cw.conn == nil {
		return errors.New("response writer: no tracked connection")
	}
	return cw.conn.SetWriteDeadline(t)
}

// SetReadDeadline rewrites the underlying connection read deadline.
// This is called by http.ResponseController SetReadDeadline method.
func (cw *CustomResponseWriter) SetReadDeadline(t time.Time) error {
	if cw.conn == nil {
		return errors.New("response writer: no tracked connection")
	}
	return cw.conn.SetReadDeadline(t)
}

// APIError is the error wire format shared by all failing operations.
type APIError struct {
	Error string `json:"error"`
}

// ValidationFailure lists every violated field rule of a rejected payload.
type ValidationFailure struct {
	Errors []string `json:"errors"`
}

// WriteJSON sends v as the response body with the given status code. In case
// the client closed the request, it reports the Nginx non standard status
// code 499 (Client Closed Request). In case of request processing timeout it
// sets the status code to 504, the timeout middleware already kicked-in and
// did send a message to the client.
func WriteJSON(ctx context.Context, w http.ResponseWriter, status int, v interface{}) error {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			w.WriteHeader(http.StatusGatewayTimeout)
		} else {
			w.WriteHeader(499)
		}
		return ctx.Err()
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// WriteNoContent confirms a successful deletion. A 204 carries no body.
func WriteNoContent(ctx context.Context, w http.ResponseWriter) error {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			w.WriteHeader(http.StatusGatewayTimeout)
		} else {
			w.WriteHeader(499)
		}
		return ctx.Err()
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// WriteOperationError translates the classified error kinds to their wire
// responses: collected field violations to 400 with an errors list, a body
// format failure to 400, a missing record to 404. Anything unclassified
// surfaces as a generic 500 fault.
func WriteOperationError(ctx context.Context, w http.ResponseWriter, opErr error) error {
	var fields FieldErrors
	var bodyErr *BodyFormatError
	switch {
	case errors.As(opErr, &fields):
		return WriteJSON(ctx, w, http.StatusBadRequest, ValidationFailure{Errors: []string(fields)})
	case errors.As(opErr, &bodyErr):
		return WriteJSON(ctx, w, http.StatusBadRequest, APIError{Error: bodyErr.Error()})
	case errors.Is(opErr, ErrBookNotFound):
		return WriteJSON(ctx, w, http.StatusNotFound, APIError{Error: "not found"})
	default:
		return WriteJSON(ctx, w, http.StatusInternalServerError, APIError{Error: "internal server error"})
	}
}
