package main

import (
	"context"

	"go.uber.org/zap"
)

type BookServiceProvider interface {
	Add(ctx context.Context, isbn string, book Book) error
	GetOne(ctx context.Context, isbn string) (Book, error)
	Delete(ctx context.Context, isbn string) error
	Update(ctx context.Context, isbn string, book Book) (Book, error)
	GetAll(ctx context.Context) ([]Book, error)
}

// BookService performs each operation against the primary storage and feeds
// the mirror queue on mutations. A queue failure never fails the request,
// the mirror is best-effort.
type BookService struct {
	logger  *zap.Logger
	config  *Config
	storage BookStorage
	queue   Queuer
}

func NewBookService(logger *zap.Logger, config *Config, storage BookStorage, queue Queuer) BookServiceProvider {
	return &BookService{
		logger:  logger,
		config:  config,
		storage: storage,
		queue:   queue,
	}
}

func (bs *BookService) Add(ctx context.Context, isbn string, book Book) error {
	if err := bs.queue.Push(ctx, CreateQueue, book); err != nil {
		bs.logger.Error("service: failed to push book to queue", zap.String("qid", CreateQueue), zap.Error(err))
	}
	return bs.storage.Add(ctx, isbn, book)
}

func (bs *BookService) GetOne(ctx context.Context, isbn string) (Book, error) {
	return bs.storage.GetOne(ctx, isbn)
}

func (bs *BookService) Delete(ctx context.Context, isbn string) error {
	if err := bs.queue.Push(ctx, DeleteQueue, Book{ISBN: isbn}); err != nil {
		bs.logger.Error("service: failed to push to queue", zap.String("qid", DeleteQueue), zap.Error(err))
	}
	return bs.storage.Delete(ctx, isbn)
}

func (bs *BookService) Update(ctx context.Context, isbn string, book Book) (Book, error) {
	if err := bs.queue.Push(ctx, UpdateQueue, book); err != nil {
		bs.logger.Error("service: failed to push to queue", zap.String("qid", UpdateQueue), zap.Error(err))
	}
	return bs.storage.Update(ctx, isbn, book)
}

func (bs *BookService) GetAll(ctx context.Context) ([]Book, error) {
	return bs.storage.GetAll(ctx)
}
