package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// CreateBook registers a new book record from the request body. The record
// identifier is assigned server-side, never taken from the payload. On
// success the full stored record is returned with a 201.
func (api *APIHandler) CreateBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	book, err := DecodeAndValidateBookPayload(r)
	if err != nil {
		api.logger.Error("failed to validate create book payload", zap.String("request.id", requestID), zap.Error(err))
		if werr := WriteOperationError(r.Context(), w, err); werr != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(werr))
		}
		return
	}

	book.ISBN = api.ids.NewISBN()

	if err = api.bookService.Add(r.Context(), book.ISBN, book); err != nil {
		api.logger.Error("failed to create book", zap.String("book.isbn", book.ISBN), zap.String("request.id", requestID), zap.Error(err))
		if werr := WriteOperationError(r.Context(), w, err); werr != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(werr))
		}
		return
	}
	api.logger.Info("success to create book", zap.String("book.isbn", book.ISBN), zap.String("request.id", requestID))
	if err = WriteJSON(r.Context(), w, http.StatusCreated, book); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// GetOneBook serves the record matching the path identifier.
func (api *APIHandler) GetOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	isbn := ps.ByName("isbn")
	book, err := api.bookService.GetOne(r.Context(), isbn)
	if err != nil {
		api.logger.Error("failed to get book", zap.String("book.isbn", isbn), zap.String("request.id", requestID), zap.Error(err))
		if werr := WriteOperationError(r.Context(), w, err); werr != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(werr))
		}
		return
	}
	api.logger.Info("success to get book", zap.String("book.isbn", isbn), zap.String("request.id", requestID))
	if err = WriteJSON(r.Context(), w, http.StatusOK, book); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// UpdateBook replaces every field of an existing record with the payload
// content, keeping the path identifier. The existence check happens strictly
// before the body is read so an unknown identifier answers 404 regardless of
// payload validity. There is no partial patch semantic.
func (api *APIHandler) UpdateBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	isbn := ps.ByName("isbn")
	if _, err := api.bookService.GetOne(r.Context(), isbn); err != nil {
		api.logger.Error("failed to check if the book exist", zap.String("book.isbn", isbn), zap.String("request.id", requestID), zap.Error(err))
		if werr := WriteOperationError(r.Context(), w, err); werr != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(werr))
		}
		return
	}

	book, err := DecodeAndValidateBookPayload(r)
	if err != nil {
		api.logger.Error("failed to validate update book payload", zap.String("book.isbn", isbn), zap.String("request.id", requestID), zap.Error(err))
		if werr := WriteOperationError(r.Context(), w, err); werr != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(werr))
		}
		return
	}

	book.ISBN = isbn
	book, err = api.bookService.Update(r.Context(), isbn, book)
	if err != nil {
		api.logger.Error("failed to update book", zap.String("book.isbn", isbn), zap.String("request.id", requestID), zap.Error(err))
		if werr := WriteOperationError(r.Context(), w, err); werr != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(werr))
		}
		return
	}
	api.logger.Info("success to update book", zap.String("book.isbn", isbn), zap.String("request.id", requestID))
	if err = WriteJSON(r.Context(), w, http.StatusOK, book); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// DeleteOneBook removes an existing record and confirms with a 204.
func (api *APIHandler) DeleteOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	isbn := ps.ByName("isbn")
	if _, err := api.bookService.GetOne(r.Context(), isbn); err != nil {
		api.logger.Error("failed to check if the book exist", zap.String("book.isbn", isbn), zap.String("request.id", requestID), zap.Error(err))
		if werr := WriteOperationError(r.Context(), w, err); werr != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(werr))
		}
		return
	}

	if err := api.bookService.Delete(r.Context(), isbn); err != nil {
		api.logger.Error("failed to delete book", zap.String("book.isbn", isbn), zap.String("request.id", requestID), zap.Error(err))
		if werr := WriteOperationError(r.Context(), w, err); werr != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(werr))
		}
		return
	}
	api.logger.Info("success to delete book", zap.String("book.isbn", isbn), zap.String("request.id", requestID))
	if err := WriteNoContent(r.Context(), w); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// GetAllBooks serves every stored record as a json array, unordered and
// unpaginated. The write deadline is pushed back since the full scan can
// outlast the default request budget on large tables.
//
//nolint:bodyclose
func (api *APIHandler) GetAllBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(api.clock.Now().Add(api.config.Server.LongRequestWriteTimeout)); err != nil {
		api.logger.Error("http: failed to update the write deadline", zap.String("request.id", requestID), zap.Error(err))
	}

	books, err := api.bookService.GetAll(r.Context())
	if err != nil {
		api.logger.Error("failed to get all books", zap.String("request.id", requestID), zap.Error(err))
		if werr := WriteOperationError(r.Context(), w, err); werr != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(werr))
		}
		return
	}
	api.logger.Info("success to get all books", zap.Int("books.total", len(books)), zap.String("request.id", requestID))
	if err = WriteJSON(r.Context(), w, http.StatusOK, books); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}
