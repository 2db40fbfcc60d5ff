package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeStore struct {
	constraintErr error
	closed        int
}

func (f *fakeStore) EnsureConstraints(context.Context) error { return f.constraintErr }

func (f *fakeStore) Close(context.Context) error {
	f.closed++
	return nil
}

func TestPrepareStore_FailureClosesStore(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	failure := errors.New("forbidden")
	store := &fakeStore{constraintErr: failure}

	err := prepareStore(context.Background(), store, zap.New(core))
	assert.ErrorIs(t, err, failure)
	assert.Equal(t, 1, store.closed)
	assert.Equal(t, 1, logs.FilterMessage("failed to ensure constraints").Len())
}

func TestPrepareStore_Success(t *testing.T) {
	store := &fakeStore{}
	assert.NoError(t, prepareStore(context.Background(), store, zap.NewNop()))
	assert.Zero(t, store.closed)
}

func TestParseAllowedOrigins(t *testing.T) {
	assert.Nil(t, parseAllowedOrigins(""))
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, parseAllowedOrigins(" http://a.test, ,http://b.test "))
}
