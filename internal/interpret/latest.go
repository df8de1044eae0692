package interpret

import (
	"context"
	"fmt"
	"sync"
)

// ErrSuperseded is returned to a request replaced by a newer one.
var ErrSuperseded = fmt.Errorf("%w: superseded by a newer request", ErrUnavailable)

// Latest lets only the most recent request stand: starting one cancels the
// one still in flight.
type Latest struct {
	inner Interpreter

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

var _ Interpreter = (*Latest)(nil)

func NewLatest(inner Interpreter) *Latest {
	return &Latest{inner: inner}
}

func (l *Latest) Interpret(ctx context.Context, description string) (string, error) {
	ctx, cancel := context.WithCancel(ctx)

	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.seq++
	mine := l.seq
	l.cancel = cancel
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		if l.seq == mine {
			l.cancel = nil
		}
		l.mu.Unlock()
		cancel()
	}()

	text, err := l.inner.Interpret(ctx, description)

	l.mu.Lock()
	stale := l.seq != mine
	l.mu.Unlock()
	if stale {
		return "", ErrSuperseded
	}
	return text, err
}

// Cancel abandons the in-flight request, if any.
func (l *Latest) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.seq++
}
