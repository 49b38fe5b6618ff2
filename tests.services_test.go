package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// This file contains unit tests for the book service and the mirror consumer.

// TestBookServiceMutations ensures each mutation feeds the mirror queue and
// still reaches the primary storage even when the queue push fails.
func TestBookServiceMutations(t *testing.T) {
	book := Book{ISBN: testISBN, Author: "A", Title: "T", Description: "D", PublicationDate: "2020-01-01", Available: true}

	t.Run("add pushes to the create queue then stores", func(t *testing.T) {
		var pushedQid string
		var pushedBook Book
		var stored bool
		queue := &MockQueuer{
			PushFunc: func(ctx context.Context, qid string, b Book) error {
				pushedQid = qid
				pushedBook = b
				return nil
			},
		}
		storage := &MockBookStorage{
			AddFunc: func(ctx context.Context, isbn string, b Book) error {
				stored = true
				return nil
			},
		}
		bs := NewBookService(zap.NewNop(), &Config{}, storage, queue)
		require.NoError(t, bs.Add(context.Background(), book.ISBN, book))
		assert.Equal(t, CreateQueue, pushedQid)
		assert.Equal(t, book, pushedBook)
		assert.True(t, stored)
	})

	t.Run("queue push failure does not fail the mutation", func(t *testing.T) {
		queue := &MockQueuer{
			PushFunc: func(ctx context.Context, qid string, b Book) error {
				return errors.New("queue down")
			},
		}
		storage := &MockBookStorage{
			AddFunc: func(ctx context.Context, isbn string, b Book) error {
				return nil
			},
		}
		bs := NewBookService(zap.NewNop(), &Config{}, storage, queue)
		assert.NoError(t, bs.Add(context.Background(), book.ISBN, book))
	})

	t.Run("update pushes to the update queue", func(t *testing.T) {
		var pushedQid string
		queue := &MockQueuer{
			PushFunc: func(ctx context.Context, qid string, b Book) error {
				pushedQid = qid
				return nil
			},
		}
		storage := &MockBookStorage{
			UpdateFunc: func(ctx context.Context, isbn string, b Book) (Book, error) {
				return b, nil
			},
		}
		bs := NewBookService(zap.NewNop(), &Config{}, storage, queue)
		updated, err := bs.Update(context.Background(), book.ISBN, book)
		require.NoError(t, err)
		assert.Equal(t, UpdateQueue, pushedQid)
		assert.Equal(t, book, updated)
	})

	t.Run("delete pushes only the identifier to the delete queue", func(t *testing.T) {
		var pushedQid string
		var pushedBook Book
		queue := &MockQueuer{
			PushFunc: func(ctx context.Context, qid string, b Book) error {
				pushedQid = qid
				pushedBook = b
				return nil
			},
		}
		storage := &MockBookStorage{
			DeleteFunc: func(ctx context.Context, isbn string) error {
				return nil
			},
		}
		bs := NewBookService(zap.NewNop(), &Config{}, storage, queue)
		require.NoError(t, bs.Delete(context.Background(), book.ISBN))
		assert.Equal(t, DeleteQueue, pushedQid)
		assert.Equal(t, Book{ISBN: book.ISBN}, pushedBook)
	})

	t.Run("reads bypass the queue", func(t *testing.T) {
		storage := &MockBookStorage{
			GetOneFunc: func(ctx context.Context, isbn string) (Book, error) {
				return book, nil
			},
			GetAllFunc: func(ctx context.Context) ([]Book, error) {
				return []Book{book}, nil
			},
		}
		// a nil push func would panic if the queue were touched.
		bs := NewBookService(zap.NewNop(), &Config{}, storage, &MockQueuer{})
		got, err := bs.GetOne(context.Background(), book.ISBN)
		require.NoError(t, err)
		assert.Equal(t, book, got)
		all, err := bs.GetAll(context.Background())
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

// TestBoltDBConsumer ensures dequeued mutations are applied to the mirror
// repository and that context cancellation stops the loop cleanly.
func TestBoltDBConsumer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	type event struct {
		qid  string
		book Book
	}
	events := []event{
		{CreateQueue, Book{ISBN: "1", Title: "created"}},
		{UpdateQueue, Book{ISBN: "1", Title: "updated"}},
		{DeleteQueue, Book{ISBN: "1"}},
	}

	var next int
	queue := &MockQueuer{
		PopFunc: func(ctx context.Context, qids ...string) (string, Book, error) {
			if next >= len(events) {
				cancel()
				return "", Book{}, ctx.Err()
			}
			ev := events[next]
			next++
			return ev.qid, ev.book, nil
		},
	}

	var added, updated, deleted []Book
	mirror := &MockBookStorage{
		AddFunc: func(ctx context.Context, isbn string, b Book) error {
			added = append(added, b)
			return nil
		},
		UpdateFunc: func(ctx context.Context, isbn string, b Book) (Book, error) {
			updated = append(updated, b)
			return b, nil
		},
		DeleteFunc: func(ctx context.Context, isbn string) error {
			deleted = append(deleted, Book{ISBN: isbn})
			return nil
		},
	}

	consumer := NewBoltDBConsumer(zap.NewNop(), queue, mirror)
	err := consumer.Consume(ctx, CreateQueue, UpdateQueue, DeleteQueue)
	require.NoError(t, err)
	assert.Equal(t, []Book{{ISBN: "1", Title: "created"}}, added)
	assert.Equal(t, []Book{{ISBN: "1", Title: "updated"}}, updated)
	assert.Equal(t, []Book{{ISBN: "1"}}, deleted)
}

// TestBoltDBConsumerRetriesAfterPopFailure ensures a transient pop failure is
// waited out and the following mutation still gets applied.
func TestBoltDBConsumerRetriesAfterPopFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls int
	queue := &MockQueuer{
		PopFunc: func(ctx context.Context, qids ...string) (string, Book, error) {
			calls++
			switch calls {
			case 1:
				return "", Book{}, errors.New("transient failure")
			case 2:
				return CreateQueue, Book{ISBN: "1", Title: "created"}, nil
			default:
				cancel()
				return "", Book{}, ctx.Err()
			}
		},
	}

	var added []Book
	mirror := &MockBookStorage{
		AddFunc: func(ctx context.Context, isbn string, b Book) error {
			added = append(added, b)
			return nil
		},
	}

	consumer := &boltDBConsumer{logger: zap.NewNop(), queue: queue, repo: mirror, retryDelay: time.Millisecond}
	err := consumer.Consume(ctx, CreateQueue)
	require.NoError(t, err)
	assert.Equal(t, []Book{{ISBN: "1", Title: "created"}}, added)
}
