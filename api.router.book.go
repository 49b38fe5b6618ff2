package main

import (
	"github.com/julienschmidt/httprouter"
)

// SetupBookRoutes injects the book records api endpoints.
func (api *APIHandler) SetupBookRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.RedirectTrailingSlash = true
	router.GET("/", m.public(api.Index))
	router.GET("/status", m.public(api.Status))
	router.POST("/book", m.public(api.CreateBook))
	router.GET("/book/:isbn", m.public(api.GetOneBook))
	router.PUT("/book/:isbn", m.public(api.UpdateBook))
	router.DELETE("/book/:isbn", m.public(api.DeleteOneBook))
	router.GET("/books", m.public(api.GetAllBooks))
	return router
}
