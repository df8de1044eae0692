package interpret

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blocking answers only when released, or fails when its context ends.
type blocking struct {
	started chan string
	release chan struct{}
}

func (b *blocking) Interpret(ctx context.Context, description string) (string, error) {
	b.started <- description
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-b.release:
		return "leitura de " + description, nil
	}
}

func TestLatestCancelsPrevious(t *testing.T) {
	inner := &blocking{started: make(chan string, 2), release: make(chan struct{})}
	l := NewLatest(inner)

	firstErr := make(chan error, 1)
	go func() {
		_, err := l.Interpret(context.Background(), "primeiro")
		firstErr <- err
	}()
	require.Equal(t, "primeiro", <-inner.started)

	secondOut := make(chan string, 1)
	go func() {
		text, err := l.Interpret(context.Background(), "segundo")
		assert.NoError(t, err)
		secondOut <- text
	}()
	require.Equal(t, "segundo", <-inner.started)

	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, ErrSuperseded)
		assert.ErrorIs(t, err, ErrUnavailable)
	case <-time.After(2 * time.Second):
		t.Fatal("first request was not cancelled")
	}

	close(inner.release)
	assert.Equal(t, "leitura de segundo", <-secondOut)
}

func TestLatestCancel(t *testing.T) {
	inner := &blocking{started: make(chan string, 1), release: make(chan struct{})}
	l := NewLatest(inner)

	errc := make(chan error, 1)
	go func() {
		_, err := l.Interpret(context.Background(), "x")
		errc <- err
	}()
	<-inner.started
	l.Cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("request was not cancelled")
	}
}
