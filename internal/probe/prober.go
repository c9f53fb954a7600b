package probe

import (
	"context"
	"net"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lite-lake/peerdns/internal/constants"
	"github.com/lite-lake/peerdns/internal/domain/entity"
	"github.com/lite-lake/peerdns/internal/infrastructure/logger"
	"github.com/lite-lake/peerdns/internal/infrastructure/metrics"
)

// Dialer is satisfied by *net.Dialer.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

type Config struct {
	// Timeout bounds each connect attempt.
	Timeout time.Duration
	// Retries is the number of connect attempts per peer.
	Retries int
	// Concurrency caps how many peers are probed at once.
	Concurrency int
	// RetryPause is the wait after a successful attempt before the next one.
	RetryPause time.Duration
}

func DefaultConfig() Config {
	return Config{
		Timeout:     constants.DefaultTimeout,
		Retries:     constants.DefaultRetries,
		Concurrency: constants.DefaultConcurrency,
		RetryPause:  constants.RetryPause,
	}
}

type Prober struct {
	cfg     Config
	dialer  Dialer
	metrics *metrics.Metrics
	clock   func() time.Time
}

type Option func(*Prober)

func WithDialer(d Dialer) Option {
	return func(p *Prober) { p.dialer = d }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Prober) { p.metrics = m }
}

func WithClock(clock func() time.Time) Option {
	return func(p *Prober) { p.clock = clock }
}

func New(cfg Config, opts ...Option) *Prober {
	if cfg.Retries < 1 {
		cfg.Retries = 1
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	p := &Prober{
		cfg:    cfg,
		dialer: &net.Dialer{},
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe dials peer up to Retries times and keeps the fastest successful connect.
// An unreachable peer yields a failed result, never an error.
func (p *Prober) Probe(ctx context.Context, peer entity.Peer) entity.ProbeResult {
	log := logger.FromContext(ctx).With("peer", peer.String())

	var (
		best      time.Duration
		successes int
		attempts  int
	)

	for attempt := 1; attempt <= p.cfg.Retries; attempt++ {
		if ctx.Err() != nil {
			break
		}
		attempts++

		elapsed, err := p.dialOnce(ctx, peer)
		if err != nil {
			log.Debug("probe attempt failed", "attempt", attempt, "error", err)
			continue
		}

		successes++
		if successes == 1 || elapsed < best {
			best = elapsed
		}
		log.Debug("probe attempt succeeded", "attempt", attempt, "latency", elapsed)

		if attempt < p.cfg.Retries && !sleep(ctx, p.cfg.RetryPause) {
			break
		}
	}

	if successes == 0 {
		p.metrics.ObserveProbe(false, 0)
		log.Info("peer unreachable", "attempts", attempts)
		return entity.NewFailedProbe(peer, attempts)
	}

	result := entity.NewProbeResult(peer, best, attempts, successes)
	p.metrics.ObserveProbe(true, result.LatencyDuration())
	log.Info("peer reachable", "latency_ms", result.Latency, "successes", successes)
	return result
}

func (p *Prober) dialOnce(ctx context.Context, peer entity.Peer) (time.Duration, error) {
	dialCtx := ctx
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	start := p.clock()
	conn, err := p.dialer.DialContext(dialCtx, "tcp", peer.Address())
	elapsed := p.clock().Sub(start)
	if err != nil {
		return 0, err
	}
	_ = conn.Close()
	return elapsed, nil
}

// ProbeAll probes every peer with at most Concurrency probes in flight.
// The result at index i belongs to peers[i].
func (p *Prober) ProbeAll(ctx context.Context, peers []entity.Peer) []entity.ProbeResult {
	results := make([]entity.ProbeResult, len(peers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)
	for i, peer := range peers {
		g.Go(func() error {
			results[i] = p.Probe(gctx, peer)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
