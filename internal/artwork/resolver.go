package artwork

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/ademuri/listening-stats/internal/logging"
)

// Result is the outcome of one lookup. URL is set only when Found.
type Result struct {
	Ref    TrackRef `json:"ref" yaml:"ref"`
	URL    string   `json:"url,omitempty" yaml:"url,omitempty"`
	Found  bool     `json:"found" yaml:"found"`
	Source string   `json:"source,omitempty" yaml:"source,omitempty"`
}

// Options tunes a Resolver. Zero fields take the defaults below.
type Options struct {
	// Timeout bounds a single lookup including retries. Default 10s.
	Timeout time.Duration

	// Workers bounds concurrent lookups in LookupAll. Default 4.
	Workers int

	// Rate and Burst limit requests to the sources. Default 5/s, burst 1.
	Rate  rate.Limit
	Burst int

	// Attempts per lookup. Default 3.
	Attempts uint

	// RetryDelay is the base delay between attempts. Default 200ms.
	RetryDelay time.Duration

	// MaxFailures consecutive failures open the breaker for BreakerTimeout.
	// Defaults 5 and 30s.
	MaxFailures    uint32
	BreakerTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.Rate <= 0 {
		o.Rate = 5
	}
	if o.Burst <= 0 {
		o.Burst = 1
	}
	if o.Attempts == 0 {
		o.Attempts = 3
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 200 * time.Millisecond
	}
	if o.MaxFailures == 0 {
		o.MaxFailures = 5
	}
	if o.BreakerTimeout <= 0 {
		o.BreakerTimeout = 30 * time.Second
	}
	return o
}

// Resolver looks up artwork through a Fetcher, with rate limiting, retries, a
// circuit breaker and a cache of definitive answers.
type Resolver struct {
	fetcher Fetcher
	opts    Options
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[string]
	group   singleflight.Group
	log     zerolog.Logger

	mu    sync.RWMutex
	cache map[string]Result
}

func NewResolver(f Fetcher, opts Options) *Resolver {
	opts = opts.withDefaults()
	r := &Resolver{
		fetcher: f,
		opts:    opts,
		limiter: rate.NewLimiter(opts.Rate, opts.Burst),
		log:     logging.With("artwork"),
		cache:   make(map[string]Result),
	}
	r.breaker = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:    f.Name(),
		Timeout: opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			r.log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("artwork breaker changed state")
		},
	})
	return r
}

// Lookup resolves ref. It never fails: any error yields Found == false.
func (r *Resolver) Lookup(ctx context.Context, ref TrackRef) Result {
	key := ref.Key()
	if res, ok := r.cached(key); ok {
		res.Ref = ref
		return res
	}

	if ctx.Err() != nil {
		return Result{Ref: ref}
	}

	// The shared lookup is bounded by Options.Timeout, not by whichever
	// caller started it.
	ch := r.group.DoChan(key, func() (any, error) {
		return r.lookup(context.WithoutCancel(ctx), ref), nil
	})
	select {
	case <-ctx.Done():
		return Result{Ref: ref}
	case v := <-ch:
		res := v.Val.(Result)
		res.Ref = ref
		return res
	}
}

func (r *Resolver) lookup(ctx context.Context, ref TrackRef) Result {
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	url, err := r.breaker.Execute(func() (string, error) {
		var url string
		err := retry.Do(
			func() error {
				if err := r.limiter.Wait(ctx); err != nil {
					return err
				}
				var err error
				url, err = r.fetcher.Fetch(ctx, ref)
				return err
			},
			retry.Context(ctx),
			retry.Attempts(r.opts.Attempts),
			retry.Delay(r.opts.RetryDelay),
			retry.LastErrorOnly(true),
			retry.RetryIf(retryable),
			retry.OnRetry(func(n uint, err error) {
				r.log.Debug().Uint("attempt", n+1).Err(err).Str("track", ref.Track).Msg("retrying artwork lookup")
			}),
		)
		return url, err
	})

	switch {
	case err == nil:
		res := Result{Ref: ref, URL: url, Found: true, Source: r.fetcher.Name()}
		r.store(ref.Key(), res)
		return res
	case errors.Is(err, ErrNotFound):
		res := Result{Ref: ref}
		r.store(ref.Key(), res)
		return res
	default:
		r.log.Debug().Err(err).Str("artist", ref.Artist).Str("track", ref.Track).Msg("artwork lookup failed")
		return Result{Ref: ref}
	}
}

// LookupAll resolves refs with at most Options.Workers lookups in flight. The
// channel yields exactly one Result per ref, in completion order, and is
// closed when all are done. Cancelling ctx makes the remaining lookups
// finish as not found.
func (r *Resolver) LookupAll(ctx context.Context, refs []TrackRef) <-chan Result {
	out := make(chan Result, len(refs))
	go func() {
		defer close(out)
		var g errgroup.Group
		g.SetLimit(r.opts.Workers)
		for _, ref := range refs {
			g.Go(func() error {
				out <- r.Lookup(ctx, ref)
				return nil
			})
		}
		g.Wait()
	}()
	return out
}

func (r *Resolver) cached(key string) (Result, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.cache[key]
	return res, ok
}

func (r *Resolver) store(key string, res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[key] = res
}

func retryable(err error) bool {
	if errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var status *StatusError
	if errors.As(err, &status) {
		return status.Temporary()
	}
	return true
}
