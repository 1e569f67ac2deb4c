// Package hover implements the hover translation controller: a debounced,
// cached, throttled front on the translation facade, built for the
// high-frequency low-intent event stream a pointer generates.
//
// Pipeline per hover event: eligibility filter, cache lookup, in-flight
// deduplication, debounce, provider restriction, rate limit, network call,
// write-through cache. Cancellation is observed at every suspension point;
// a network call already issued runs to completion and its result is cached
// even if the triggering hover was cancelled, so a later hover on the same
// text hits the cache.
package hover

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/tsinghua-lau/transgo/config"
	"github.com/tsinghua-lau/transgo/i18n"
	"github.com/tsinghua-lau/transgo/provider"
	"github.com/tsinghua-lau/transgo/textutil"
	"github.com/tsinghua-lau/transgo/translate"
)

const (
	cacheTTL        = 5 * time.Minute
	minInterval     = 2000 * time.Millisecond
	maxPerWindow    = 2
	windowSpan      = time.Minute
	preDisplayDelay = 200 * time.Millisecond
)

// Display is the terminal state of one hover event. Loading marks a hover
// cancelled mid-pipeline: the work may still be running detached, and the
// display shows a neutral "loading" hint rather than an error.
type Display struct {
	Text      string
	Loading   bool
	FromCache bool
}

func loadingDisplay() *Display {
	return &Display{Text: i18n.T("loading translation..."), Loading: true}
}

type cacheEntry struct {
	text string
	at   time.Time
}

// inflight is shared between the hover that issued a network call and any
// later hovers on the same key that joined it. resolve is once-only so a
// racing Dispose cannot double-close done.
type inflight struct {
	once sync.Once
	done chan struct{}
	text string
	err  error
}

func (i *inflight) resolve(text string, err error) {
	i.once.Do(func() {
		i.text = text
		i.err = err
		close(i.done)
	})
}

// Controller owns the hover pipeline state. Construct one per host
// process; tests construct fresh instances for isolation.
type Controller struct {
	store *config.Store
	svc   *translate.Service

	mu          sync.Mutex
	cache       map[string]cacheEntry
	pending     map[string]*inflight
	lastRequest time.Time
	window      []time.Time
	disposed    bool

	// Injection points for tests.
	now      func() time.Time
	debounce time.Duration
	preDelay time.Duration
}

func NewController(store *config.Store, svc *translate.Service) *Controller {
	return &Controller{
		store:    store,
		svc:      svc,
		cache:    map[string]cacheEntry{},
		pending:  map[string]*inflight{},
		now:      time.Now,
		debounce: -1, // resolved from config per call
		preDelay: preDisplayDelay,
	}
}

// hoverError collapses provider and transport failures into the generic
// display message while keeping the cause reachable through Unwrap.
type hoverError struct {
	cause error
}

func (e *hoverError) Error() string {
	return i18n.T("translation failed") + ", " + i18n.T("try the translation panel")
}

func (e *hoverError) Unwrap() error { return e.cause }

// Hover runs the pipeline for one hover event. A nil, nil return means the
// text is not eligible and nothing should be shown. Errors returned are
// display-ready: rate limiting and the AI restriction are surfaced as
// themselves, everything else collapses to a generic failure hint.
func (c *Controller) Hover(ctx context.Context, text string) (*Display, error) {
	if !c.store.HoverTranslation() || !textutil.ShouldTranslate(text) {
		return nil, nil
	}

	providerID := c.store.Provider()
	if !provider.Known(providerID) {
		providerID = provider.Google
	}
	key := providerID + ":" + strings.ToLower(strings.TrimSpace(text))

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return nil, nil
	}

	// Cache lookup with lazy eviction.
	if entry, ok := c.cache[key]; ok {
		if c.now().Sub(entry.at) < cacheTTL {
			c.mu.Unlock()
			return &Display{Text: entry.text, FromCache: true}, nil
		}
		delete(c.cache, key)
	}

	// Join an in-flight call for the same key instead of issuing another.
	if infl, ok := c.pending[key]; ok {
		c.mu.Unlock()
		return c.join(ctx, infl)
	}

	infl := &inflight{done: make(chan struct{})}
	c.pending[key] = infl
	c.mu.Unlock()

	return c.run(ctx, key, text, providerID, infl)
}

// join waits for another hover's in-flight call.
func (c *Controller) join(ctx context.Context, infl *inflight) (*Display, error) {
	select {
	case <-ctx.Done():
		return loadingDisplay(), nil
	case <-infl.done:
	}
	if infl.err != nil {
		if errors.Is(infl.err, context.Canceled) {
			return loadingDisplay(), nil
		}
		return nil, c.collapse(infl.err)
	}
	return &Display{Text: infl.text}, nil
}

// run drives the owner path: debounce, restriction, rate limit, network.
func (c *Controller) run(ctx context.Context, key, text, providerID string, infl *inflight) (*Display, error) {
	// Debounce: let the pointer move away before doing any work.
	if err := sleepCtx(ctx, c.debounceDelay()); err != nil {
		c.finish(key, infl, "", context.Canceled)
		return loadingDisplay(), nil
	}

	// The AI provider is excluded from hover: too slow and too costly for
	// ambient triggers. Shown verbatim since it is actionable.
	if providerID == provider.AI {
		c.finish(key, infl, "", provider.ErrHoverAIUnsupported)
		return nil, provider.ErrHoverAIUnsupported
	}

	if retryIn, limited := c.admit(); limited {
		err := &provider.RateLimitError{RetryIn: retryIn}
		c.finish(key, infl, "", err)
		return nil, err
	}

	// The network call is detached from the hover's context: once issued
	// it runs to completion and its result is cached regardless of
	// cancellation.
	go func() {
		res, err := c.svc.Translate(context.Background(), text)
		if err != nil {
			c.finish(key, infl, "", err)
			return
		}
		c.mu.Lock()
		if !c.disposed {
			c.cache[key] = cacheEntry{text: res.TranslatedText, at: c.now()}
		}
		c.mu.Unlock()
		c.finish(key, infl, res.TranslatedText, nil)
	}()

	select {
	case <-ctx.Done():
		return loadingDisplay(), nil
	case <-infl.done:
	}
	if infl.err != nil {
		return nil, c.collapse(infl.err)
	}

	// Short settle delay before showing the result.
	if err := sleepCtx(ctx, c.preDelay); err != nil {
		return loadingDisplay(), nil
	}
	return &Display{Text: infl.text}, nil
}

// finish resolves an in-flight entry and clears the marker.
func (c *Controller) finish(key string, infl *inflight, text string, err error) {
	c.mu.Lock()
	if c.pending[key] == infl {
		delete(c.pending, key)
	}
	c.mu.Unlock()
	infl.resolve(text, err)
}

// admit checks the throughput quota: at least minInterval between calls
// and at most maxPerWindow calls per sliding window. A passing call is
// recorded immediately.
func (c *Controller) admit() (retryIn time.Duration, limited bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	// Drop window entries older than the span.
	kept := c.window[:0]
	for _, t := range c.window {
		if now.Sub(t) < windowSpan {
			kept = append(kept, t)
		}
	}
	c.window = kept

	if !c.lastRequest.IsZero() && now.Sub(c.lastRequest) < minInterval {
		retryIn = c.lastRequest.Add(minInterval).Sub(now)
		limited = true
	}
	if len(c.window) >= maxPerWindow {
		if wait := c.window[0].Add(windowSpan).Sub(now); wait > retryIn {
			retryIn = wait
		}
		limited = true
	}
	if limited {
		return retryIn, true
	}

	c.lastRequest = now
	c.window = append(c.window, now)
	return 0, false
}

// collapse maps a pipeline failure to its display-ready form.
func (c *Controller) collapse(err error) error {
	var rate *provider.RateLimitError
	if errors.Is(err, provider.ErrHoverAIUnsupported) || errors.As(err, &rate) {
		return err
	}
	return &hoverError{cause: err}
}

func (c *Controller) debounceDelay() time.Duration {
	if c.debounce >= 0 {
		return c.debounce
	}
	return c.store.HoverDelay()
}

// Dispose drops all cached and in-flight state. Pending waiters resolve as
// cancelled; later Hover calls return no display.
func (c *Controller) Dispose() {
	c.mu.Lock()
	pending := c.pending
	c.disposed = true
	c.cache = map[string]cacheEntry{}
	c.pending = map[string]*inflight{}
	c.window = nil
	c.mu.Unlock()

	for _, infl := range pending {
		infl.resolve("", context.Canceled)
	}
}

// sleepCtx waits for d unless ctx is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
