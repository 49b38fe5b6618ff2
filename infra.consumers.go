package main

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Consumer drains mirror queues until its context is done.
type Consumer interface {
	Consume(ctx context.Context, qids ...string) error
}

type boltDBConsumer struct {
	logger *zap.Logger
	queue  Queuer
	repo   BookStorage
	// time to wait after a failed queue pop before retrying.
	retryDelay time.Duration
}

func NewBoltDBConsumer(logger *zap.Logger, q Queuer, repo BookStorage) Consumer {
	return &boltDBConsumer{logger: logger, queue: q, repo: repo, retryDelay: time.Second}
}

// Consume applies each dequeued mutation to the bolt mirror store. A failed
// apply is logged and skipped, the primary store already holds the truth.
func (bc *boltDBConsumer) Consume(ctx context.Context, qids ...string) error {
	var book Book
	var err error
	var qid string
	for {
		qid, book, err = bc.queue.Pop(ctx, qids...)
		if err != nil && ctx.Err() != nil {
			bc.logger.Info("consumer: queue pop call: context is done: exit", zap.String("reason", ctx.Err().Error()))
			return nil
		}

		if err != nil {
			bc.logger.Error("consumer: error on queue pop call", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(bc.retryDelay):
			}
			continue
		}

		switch qid {
		case CreateQueue:
			if err = bc.repo.Add(ctx, book.ISBN, book); err != nil {
				bc.logger.Error("consumer: failed to create", zap.Any("book", book), zap.Error(err))
			}
		case UpdateQueue:
			if _, err = bc.repo.Update(ctx, book.ISBN, book); err != nil {
				bc.logger.Error("consumer: failed to update", zap.Any("book", book), zap.Error(err))
			}
		case DeleteQueue:
			if err = bc.repo.Delete(ctx, book.ISBN); err != nil {
				bc.logger.Error("consumer: failed to delete", zap.String("isbn", book.ISBN), zap.Error(err))
			}
		default:
			bc.logger.Warn("consumer: received book on unknown queue id", zap.String("qid", qid), zap.Any("book", book))
		}
	}
}
