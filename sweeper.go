package regauth

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/credware/regauth/tokenstore"
)

// Sweeper periodically retires expired pending token records. Each tick runs
// one MarkExpired pass; a failing pass is logged and the ticker keeps going.
// Sweeps are idempotent, so overlapping deployments may all run one.
type Sweeper struct {
	store    tokenstore.Store
	interval time.Duration
	log      *zap.Logger

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
	started  bool
	mu       sync.Mutex
}

func newSweeper(store tokenstore.Store, interval time.Duration, log *zap.Logger) *Sweeper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{
		store:    store,
		interval: interval,
		log:      log,
		done:     make(chan struct{}),
	}
}

// Start launches the ticker goroutine. Subsequent calls are no-ops.
func (s *Sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	s.wg.Add(1)
	go s.run()
}

func (s *Sweeper) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.RunOnce(context.Background()); err != nil {
				s.log.Warn("expiration sweep failed", zap.Error(err))
			}
		case <-s.done:
			return
		}
	}
}

// RunOnce retires every pending record whose expiry has passed and returns
// how many were retired.
func (s *Sweeper) RunOnce(ctx context.Context) (int64, error) {
	retired, err := s.store.MarkExpired(ctx)
	if err != nil {
		return retired, err
	}
	if retired > 0 {
		s.log.Info("expired tokens retired", zap.Int64("count", retired))
	}
	return retired, nil
}

// Stop halts the ticker goroutine and waits for an in-flight sweep.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}
