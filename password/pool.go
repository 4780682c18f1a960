package password

import (
	"context"
	"runtime"
)

// Pool runs a [Hasher] behind a bounded concurrency gate. Argon2id is
// deliberately memory-hard, so the number of simultaneous derivations must be
// capped to keep the process within its memory budget and off the request
// fast path.
type Pool struct {
	hasher *Hasher
	slots  chan struct{}
}

// NewPool wraps hasher with at most size concurrent derivations. A size of
// zero or less defaults to GOMAXPROCS.
func NewPool(hasher *Hasher, size int) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}

	return &Pool{
		hasher: hasher,
		slots:  make(chan struct{}, size),
	}
}

// Encode hashes raw once a worker slot is free. It returns the context error
// if ctx is cancelled while queued.
func (p *Pool) Encode(ctx context.Context, raw string) (string, error) {
	if err := p.acquire(ctx); err != nil {
		return "", err
	}
	defer p.release()

	return p.hasher.Encode(raw)
}

// Matches verifies raw against encoded once a worker slot is free.
func (p *Pool) Matches(ctx context.Context, raw string, encoded string) (bool, error) {
	if err := p.acquire(ctx); err != nil {
		return false, err
	}
	defer p.release()

	return p.hasher.Matches(raw, encoded)
}

func (p *Pool) acquire(ctx context.Context) error {
	select {
	case p.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) release() {
	<-p.slots
}
