package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"
)

var ErrBookNotFound = errors.New("book not found")

type ContextKey string

const (
	RequestIDPrefix         string     = "r"
	RequestIDContextKey     ContextKey = "request.id"
	RequestNumberContextKey ContextKey = "request.number"
	ConnContextKey          ContextKey = "http-conn"
)

// FieldErrors carries one message per violated field of a request payload.
type FieldErrors []string

func (fe FieldErrors) Error() string {
	return strings.Join(fe, "; ")
}

// BodyFormatError reports a request body which is not parseable json.
// Its message embeds the quoted parser failure.
type BodyFormatError struct {
	reason string
}

func (e *BodyFormatError) Error() string {
	return fmt.Sprintf("invalid request body format : %q", e.reason)
}

// publication date layouts accepted on create and update requests.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

// DecodeBookPayload reads the content of a book creation or update request.
// An unparseable body comes back as *BodyFormatError. A field holding the
// wrong primitive type is reported as a field-level violation instead.
func DecodeBookPayload(r *http.Request) (BookPayload, error) {
	var payload BookPayload
	if r.Body == nil {
		return payload, &BodyFormatError{reason: "empty request body"}
	}
	err := json.NewDecoder(r.Body).Decode(&payload)
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return payload, FieldErrors{fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type)}
	}
	if err != nil {
		return payload, &BodyFormatError{reason: err.Error()}
	}
	return payload, nil
}

// ValidateBookPayload checks every rule of the book schema and collects all
// violations instead of stopping at the first one. On success it returns the
// normalized record, its ISBN left to the caller.
func ValidateBookPayload(payload BookPayload) (Book, error) {
	var book Book
	var violations FieldErrors

	if payload.Author == nil || len(*payload.Author) == 0 {
		violations = append(violations, "author is required")
	} else {
		book.Author = *payload.Author
	}

	if payload.Title == nil || len(*payload.Title) == 0 {
		violations = append(violations, "title is required")
	} else {
		book.Title = *payload.Title
	}

	if payload.Description == nil || len(*payload.Description) == 0 {
		violations = append(violations, "description is required")
	} else {
		book.Description = *payload.Description
	}

	switch {
	case payload.PublicationDate == nil || len(*payload.PublicationDate) == 0:
		violations = append(violations, "publication_date is required")
	case !isParseableDate(*payload.PublicationDate):
		violations = append(violations, "publication_date must be a valid date")
	default:
		book.PublicationDate = *payload.PublicationDate
	}

	if payload.Available == nil {
		violations = append(violations, "available is required")
	} else {
		book.Available = *payload.Available
	}

	if len(violations) > 0 {
		return book, violations
	}
	return book, nil
}

// DecodeAndValidateBookPayload reads a create or update request body and
// applies every schema rule on it. Field violations are collected together:
// a mistyped field counts as one violation among the missing ones instead of
// masking them. The decoder keeps processing the object past a type error,
// so the remaining fields are still present for validation.
func DecodeAndValidateBookPayload(r *http.Request) (Book, error) {
	payload, err := DecodeBookPayload(r)
	var typeViolations FieldErrors
	if err != nil && !errors.As(err, &typeViolations) {
		return Book{}, err
	}

	book, verr := ValidateBookPayload(payload)
	if len(typeViolations) == 0 {
		return book, verr
	}

	mistyped := make(map[string]string, len(typeViolations))
	for _, violation := range typeViolations {
		field, _, _ := strings.Cut(violation, " ")
		mistyped[field] = violation
	}

	var collected FieldErrors
	errors.As(verr, &collected)
	merged := make(FieldErrors, 0, len(collected)+len(typeViolations))
	for _, violation := range collected {
		// a mistyped field decodes to nil and shows up here as missing:
		// report the type violation in its place.
		field, _, _ := strings.Cut(violation, " ")
		if typeViolation, ok := mistyped[field]; ok {
			merged = append(merged, typeViolation)
			delete(mistyped, field)
			continue
		}
		merged = append(merged, violation)
	}
	for _, violation := range typeViolations {
		field, _, _ := strings.Cut(violation, " ")
		if _, ok := mistyped[field]; ok {
			merged = append(merged, violation)
		}
	}
	return book, merged
}

func isParseableDate(value string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

// GetValueFromContext returns the value of a given key in the context
// if this key is not available, it returns an empty string.
func GetValueFromContext(ctx context.Context, contextKey ContextKey) string {
	if val := ctx.Value(contextKey); val != nil {
		return val.(string)
	}
	return ""
}

// GetRequestNumberFromContext returns the request number set in
// the context. if not previously set then it returns 0.
func GetRequestNumberFromContext(ctx context.Context) uint64 {
	if val := ctx.Value(RequestNumberContextKey); val != nil {
		return val.(uint64)
	}
	return 0
}

// GetRequestSourceIP helps find the source IP of the caller.
func GetRequestSourceIP(r *http.Request) string {
	// Get IP from the X-REAL-IP header
	ip := r.Header.Get("X-REAL-IP")
	netIP := net.ParseIP(ip)
	if netIP != nil {
		return ip
	}

	// Get IP from X-FORWARDED-FOR header
	ips := r.Header.Get("X-FORWARDED-FOR")
	splitIps := strings.Split(ips, ",")
	for _, ip := range splitIps {
		netIP = net.ParseIP(ip)
		if netIP != nil {
			return ip
		}
	}

	// Get IP from RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return ""
	}
	netIP = net.ParseIP(ip)
	if netIP != nil {
		return ip
	}
	return ""
}

// IsAppRunningInDocker checks the existence of the .dockerenv
// file at the root directory and returns a boolean result. This
// helps know if the App is running in a docker container or not.
func IsAppRunningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}

// SaveConnInContext is the hook used by the server under ConnContext.
// It sets the underlying connection into the request context for later
// use by ReadDeadline or WriteDeadline method on *CustomResponseWriter.
func SaveConnInContext(ctx context.Context, c net.Conn) context.Context {
	return context.WithValue(ctx, ConnContextKey, c)
}

// GetConnFromContext returns the connection saved into the context,
// or nil when the request does not come from a real network listener.
func GetConnFromContext(ctx context.Context) net.Conn {
	if c, ok := ctx.Value(ConnContextKey).(net.Conn); ok {
		return c
	}
	return nil
}
