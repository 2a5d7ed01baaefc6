package logo

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fycapp/fyc-backend/pkg/domain"
	"github.com/fycapp/fyc-backend/pkg/logger"
	"github.com/fycapp/fyc-backend/pkg/metrics"
	"github.com/fycapp/fyc-backend/pkg/models"
)

const (
	defaultPrimaryBaseURL  = "https://logo.clearbit.com"
	defaultFallbackPattern = "https://www.google.com/s2/favicons?domain=%s"
)

// Resolver resolves display logo URLs for domains. Resolution is
// cache-first and never fails: anything unexpected degrades to the
// placeholder sentinel.
type Resolver struct {
	cache           domain.CacheRepository
	httpClient      *http.Client
	primaryBaseURL  string
	fallbackPattern string
	ttl             time.Duration
	logger          logger.Logger
	metrics         *metrics.Metrics
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPrimaryBaseURL overrides the primary lookup service base URL.
func WithPrimaryBaseURL(u string) Option {
	return func(r *Resolver) { r.primaryBaseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient overrides the HTTP client used for the primary lookup.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) { r.httpClient = c }
}

// WithTTL overrides the cache TTL for resolved logos.
func WithTTL(ttl time.Duration) Option {
	return func(r *Resolver) { r.ttl = ttl }
}

// WithMetrics attaches a metrics instance for cache hit accounting.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// NewResolver creates a new logo resolver
func NewResolver(cache domain.CacheRepository, log logger.Logger, opts ...Option) *Resolver {
	if log == nil {
		log = logger.Default()
	}

	r := &Resolver{
		cache:           cache,
		httpClient:      &http.Client{Timeout: 5 * time.Second},
		primaryBaseURL:  defaultPrimaryBaseURL,
		fallbackPattern: defaultFallbackPattern,
		ttl:             24 * time.Hour,
		logger:          log,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve returns a logo URL for the given domain or website string.
// Cached entries are returned verbatim; cold resolutions are written
// back with the configured TTL before returning.
func (r *Resolver) Resolve(ctx context.Context, website string) string {
	host := normalizeDomain(website)
	if host == "" {
		return models.PlaceholderLogo
	}

	key := cacheKey(host)
	if cached, err := r.cache.Get(ctx, key); err == nil && cached != "" {
		r.metrics.RecordLogoCacheHit()
		return cached
	}
	r.metrics.RecordLogoCacheMiss()

	logoURL := r.lookup(ctx, host)

	if err := r.cache.Set(ctx, key, logoURL, r.ttl); err != nil {
		// A cache write failure only costs a re-resolution later.
		r.logger.Warn("failed caching logo URL", "domain", host, "error", err)
	}

	return logoURL
}

// lookup tries the primary service, then falls back to the favicon
// scheme, which is constructible without network validation.
func (r *Resolver) lookup(ctx context.Context, host string) string {
	primary := fmt.Sprintf("%s/%s", r.primaryBaseURL, host)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, primary, nil)
	if err != nil {
		return fmt.Sprintf(r.fallbackPattern, host)
	}

	resp, err := r.httpClient.Do(req)
	if err == nil {
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return primary
		}
	}

	return fmt.Sprintf(r.fallbackPattern, host)
}

func cacheKey(host string) string {
	return "logo:" + host
}

// normalizeDomain reduces a website string to a bare host name.
func normalizeDomain(website string) string {
	s := strings.TrimSpace(strings.ToLower(website))
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	return s
}
