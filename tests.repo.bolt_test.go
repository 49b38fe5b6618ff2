package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestBoltStore returns a bolt-based storage backed by a temporary file.
func newTestBoltStore() (*boltBookStorage, error) {
	f, err := os.CreateTemp("", "tmp.bolt.db-")
	if err != nil {
		return nil, err
	}
	f.Close()
	testConfig := &Config{
		BoltDB: BoltDBConfig{
			FilePath:   f.Name(),
			Timeout:    5 * time.Second,
			BucketName: "test.books",
		},
	}

	client, err := GetBoltDBClient(testConfig)

	return &boltBookStorage{
		logger: zap.NewNop(),
		client: client,
		config: &testConfig.BoltDB,
	}, err
}

// closeTestBoltStore closes the temporary bolt store and removes the underlying data file.
func (bs *boltBookStorage) closeTestBoltStore() error {
	defer os.Remove(bs.config.FilePath)
	return bs.Close()
}

// Ensure bolt store can insert then serve back a book record.
func TestBoltStore_AddBook(t *testing.T) {
	bs, err := newTestBoltStore()
	require.NoError(t, err, "failed in creating a test bolt store")
	defer bs.closeTestBoltStore()
	testISBN := "b-0"

	b := Book{ISBN: testISBN, Author: "Bolt test author", Title: "Bolt test book title"}
	err = bs.Add(context.TODO(), testISBN, b)
	assert.NoError(t, err)

	book, err := bs.GetOne(context.TODO(), testISBN)
	assert.NoError(t, err)
	assert.Equal(t, testISBN, book.ISBN)
	assert.Equal(t, "Bolt test book title", book.Title)
}

// Ensure fetching an unknown record fails with the not found sentinel.
func TestBoltStore_GetNonExistentBook(t *testing.T) {
	bs, err := newTestBoltStore()
	require.NoError(t, err, "failed in creating a test bolt store")
	defer bs.closeTestBoltStore()

	book, err := bs.GetOne(context.TODO(), "missing")
	assert.Equal(t, ErrBookNotFound, err)
	assert.Equal(t, Book{}, book)
}

// Ensure bolt store full record lifecycle: update, list and delete.
func TestBoltStore_Lifecycle(t *testing.T) {
	bs, err := newTestBoltStore()
	require.NoError(t, err, "failed in creating a test bolt store")
	defer bs.closeTestBoltStore()

	first := Book{ISBN: "b-0", Author: "A", Title: "T", Description: "D", PublicationDate: "2020-01-01", Available: true}
	second := Book{ISBN: "b-1", Author: "B", Title: "U", Description: "E", PublicationDate: "2021-02-02", Available: false}
	require.NoError(t, bs.Add(context.TODO(), first.ISBN, first))
	require.NoError(t, bs.Add(context.TODO(), second.ISBN, second))

	// full overwrite of the first record.
	first.Title = "T2"
	updated, err := bs.Update(context.TODO(), first.ISBN, first)
	assert.NoError(t, err)
	assert.Equal(t, first, updated)

	book, err := bs.GetOne(context.TODO(), first.ISBN)
	assert.NoError(t, err)
	assert.Equal(t, first, book)

	books, err := bs.GetAll(context.TODO())
	assert.NoError(t, err)
	assert.Len(t, books, 2)

	assert.NoError(t, bs.Delete(context.TODO(), first.ISBN))
	_, err = bs.GetOne(context.TODO(), first.ISBN)
	assert.Equal(t, ErrBookNotFound, err)

	books, err = bs.GetAll(context.TODO())
	assert.NoError(t, err)
	assert.Len(t, books, 1)
}
