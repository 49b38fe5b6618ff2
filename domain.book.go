package main

import "context"

// Book represents a single book record stored under its ISBN.
type Book struct {
	ISBN            string `json:"isbn"`
	Author          string `json:"author"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	PublicationDate string `json:"publication_date"`
	Available       bool   `json:"available"`
}

// BookPayload is the shape of a create or update request body. Fields are
// pointers so that a missing key can be told apart from a zero value when
// collecting validation violations.
type BookPayload struct {
	Author          *string `json:"author"`
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	PublicationDate *string `json:"publication_date"`
	Available       *bool   `json:"available"`
}

// BookStorage defines possible operations on book records.
type BookStorage interface {
	Add(ctx context.Context, isbn string, book Book) error
	GetOne(ctx context.Context, isbn string) (Book, error)
	Delete(ctx context.Context, isbn string) error
	Update(ctx context.Context, isbn string, book Book) (Book, error)
	GetAll(ctx context.Context) ([]Book, error)
}
