package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"tonmaster/internal/game"
	"tonmaster/internal/logging"
)

// DefaultTimeout bounds a single Gemini round-trip.
const DefaultTimeout = 8 * time.Second

// Failure kinds of a remote fetch. They never reach Fetch's caller; every one
// of them ends in a fallback pick, but they are logged and counted apart.
var (
	ErrNoCredential  = errors.New("no generative credential configured")
	ErrTimeout       = errors.New("scenario generation timed out")
	ErrTransport     = errors.New("scenario generation failed")
	ErrEmptyResponse = errors.New("empty response from model")
	ErrMalformed     = errors.New("model response is not valid JSON")
	ErrSchema        = errors.New("model response does not match scenario schema")
)

// Generator turns a prompt into raw model text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Source hands out customers, from Gemini when it can and from the bundled
// pool otherwise.
type Source struct {
	gen     Generator
	pool    []game.Customer
	timeout time.Duration
	log     *slog.Logger
	now     func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

type Option func(*Source)

// WithGenerator enables live generation. A nil generator means no credential.
func WithGenerator(g Generator) Option { return func(s *Source) { s.gen = g } }

func WithTimeout(d time.Duration) Option {
	return func(s *Source) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option { return func(s *Source) { s.log = l } }

func WithClock(now func() time.Time) Option { return func(s *Source) { s.now = now } }

// WithRand makes fallback picks reproducible.
func WithRand(r *rand.Rand) Option { return func(s *Source) { s.rng = r } }

// WithPool replaces the bundled fallback customers. Empty pools are ignored.
func WithPool(pool []game.Customer) Option {
	return func(s *Source) {
		if len(pool) > 0 {
			s.pool = pool
		}
	}
}

func New(opts ...Option) *Source {
	s := &Source{
		pool:    FallbackPool(),
		timeout: DefaultTimeout,
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = logging.New("scenario")
	}
	return s
}

// Live reports whether a generator is configured.
func (s *Source) Live() bool { return s.gen != nil }

// Fetch always yields a playable customer. The difficulty only reaches the
// model prompt; fallback picks ignore it.
func (s *Source) Fetch(ctx context.Context, d game.Difficulty) (c game.Customer) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("scenario generation panicked", "panic", fmt.Sprint(r))
			fetchTotal.WithLabelValues(sourceFallback, "panic").Inc()
			c = s.fallback()
		}
	}()

	c, err := s.generate(ctx, d)
	if err == nil {
		fetchTotal.WithLabelValues(sourceRemote, "ok").Inc()
		s.log.Info("scenario generated", "difficulty", d, "customer", c.Name, "items", len(c.DesiredItems))
		return c
	}

	reason := failureReason(err)
	fetchTotal.WithLabelValues(sourceFallback, reason).Inc()
	if errors.Is(err, ErrNoCredential) {
		s.log.Debug("using fallback customer", "reason", reason)
	} else {
		s.log.Warn("scenario generation failed, using fallback customer", "reason", reason, "err", err)
	}
	return s.fallback()
}

func (s *Source) generate(ctx context.Context, d game.Difficulty) (game.Customer, error) {
	if s.gen == nil {
		return game.Customer{}, ErrNoCredential
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type reply struct {
		text string
		err  error
	}
	done := make(chan reply, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- reply{err: fmt.Errorf("generator panic: %v", r)}
			}
		}()
		text, err := s.gen.Generate(ctx, buildPrompt(d))
		done <- reply{text: text, err: err}
	}()

	var r reply
	select {
	case r = <-done:
	case <-ctx.Done():
		r.err = ctx.Err()
	}
	if r.err != nil {
		if errors.Is(r.err, context.DeadlineExceeded) {
			return game.Customer{}, fmt.Errorf("%w after %s", ErrTimeout, s.timeout)
		}
		return game.Customer{}, fmt.Errorf("%w: %w", ErrTransport, r.err)
	}
	return decodeScenario(r.text, s.now())
}

func (s *Source) fallback() game.Customer {
	var i int
	if s.rng != nil {
		s.mu.Lock()
		i = s.rng.IntN(len(s.pool))
		s.mu.Unlock()
	} else {
		i = rand.IntN(len(s.pool))
	}
	return s.pool[i].Clone()
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrNoCredential):
		return "no_credential"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrEmptyResponse):
		return "empty"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrSchema):
		return "schema"
	}
	return "transport"
}
