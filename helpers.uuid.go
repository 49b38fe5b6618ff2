package main

import (
	"github.com/gofrs/uuid"
)

var _ UIDHandler = (*IDsHandler)(nil) // ensure IDsHandler implements UIDHandler.

// UIDHandler is an interface for getting unique identifiers.
type UIDHandler interface {
	Generate(prefix string) string
	NewISBN() string
}

// IDsHandler implements the UIDHandler interface.
type IDsHandler struct{}

// NewIDsHandler returns a ready to use IDsHandler.
func NewIDsHandler() *IDsHandler {
	return &IDsHandler{}
}

// Generate provides a prefixed random unique identifier.
func (idh *IDsHandler) Generate(prefix string) string {
	id, _ := uuid.NewV4()
	return prefix + ":" + id.String()
}

// NewISBN provides the random identifier assigned to a new book record.
// There is no collision check before the record is stored.
func (idh *IDsHandler) NewISBN() string {
	id, _ := uuid.NewV4()
	return id.String()
}
