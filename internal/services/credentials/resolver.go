package credentials

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kevin07696/express-gateway/internal/domain/models"
	"github.com/kevin07696/express-gateway/internal/domain/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	credentialCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gateway_credential_cache_hits_total",
		Help: "Total number of gateway credential cache hits",
	})

	credentialCacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_credential_cache_misses_total",
		Help: "Total number of gateway credential cache misses",
	}, []string{"reason"}) // expired, not_found, error, invalid
)

// Resolver returns validated credentials for a gateway and environment,
// caching store lookups for a fixed TTL. Safe for concurrent use.
type Resolver struct {
	store  ports.CredentialStore
	logger *zap.Logger
	ttl    time.Duration
	now    func() time.Time

	cache sync.Map // map[cacheKey]*cachedCredentials
}

type cacheKey struct {
	gateway     string
	environment string
}

type cachedCredentials struct {
	creds     models.Credentials
	expiresAt time.Time
}

// NewResolver creates a resolver. A ttl of zero disables caching.
func NewResolver(store ports.CredentialStore, logger *zap.Logger, ttl time.Duration) *Resolver {
	return &Resolver{
		store:  store,
		logger: logger,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Resolve returns a copy of the credentials so callers cannot mutate the cache
func (r *Resolver) Resolve(ctx context.Context, gateway, environment string) (models.Credentials, error) {
	key := cacheKey{gateway: gateway, environment: environment}

	if val, ok := r.cache.Load(key); ok {
		cached := val.(*cachedCredentials)
		if r.now().Before(cached.expiresAt) {
			credentialCacheHits.Inc()
			return clone(cached.creds), nil
		}
		credentialCacheMisses.WithLabelValues("expired").Inc()
		r.cache.Delete(key)
	} else {
		credentialCacheMisses.WithLabelValues("not_found").Inc()
	}

	r.logger.Debug("Fetching gateway credentials",
		zap.String("gateway", gateway),
		zap.String("environment", environment),
	)

	creds, err := r.store.GetCredentials(ctx, gateway, environment)
	if err != nil {
		credentialCacheMisses.WithLabelValues("error").Inc()
		return models.Credentials{}, fmt.Errorf("failed to fetch credentials for %s/%s: %w", gateway, environment, err)
	}
	if creds == nil {
		credentialCacheMisses.WithLabelValues("error").Inc()
		return models.Credentials{}, fmt.Errorf("no credentials for %s/%s", gateway, environment)
	}

	if err := Validate(*creds); err != nil {
		credentialCacheMisses.WithLabelValues("invalid").Inc()
		return models.Credentials{}, fmt.Errorf("credentials for %s/%s: %w", gateway, environment, err)
	}

	if r.ttl > 0 {
		r.cache.Store(key, &cachedCredentials{
			creds:     clone(*creds),
			expiresAt: r.now().Add(r.ttl),
		})
	}

	r.logger.Info("Resolved gateway credentials",
		zap.String("gateway", gateway),
		zap.String("environment", environment),
		zap.Bool("tokenized", creds.Tokenized()),
	)

	return clone(*creds), nil
}

// Invalidate removes one entry; call after rotating credentials
func (r *Resolver) Invalidate(gateway, environment string) {
	r.cache.Delete(cacheKey{gateway: gateway, environment: environment})
	r.logger.Info("Invalidated credential cache entry",
		zap.String("gateway", gateway),
		zap.String("environment", environment),
	)
}

// InvalidateAll clears the cache
func (r *Resolver) InvalidateAll() {
	r.cache.Range(func(key, _ interface{}) bool {
		r.cache.Delete(key)
		return true
	})
	r.logger.Info("Invalidated entire credential cache")
}

// Validate checks that every field the selected client needs is present.
// The direct client also needs a terminal id; the proxy client needs a
// token service id and api key.
func Validate(creds models.Credentials) error {
	var missing []string
	if creds.AccountID == "" {
		missing = append(missing, "account_id")
	}
	if creds.AccountToken == "" {
		missing = append(missing, "account_token")
	}
	if creds.AcceptorID == "" {
		missing = append(missing, "acceptor_id")
	}

	if creds.Tokenized() {
		if creds.TokenService.ID == "" {
			missing = append(missing, "token_service.id")
		}
		if creds.TokenService.APIKey == "" {
			missing = append(missing, "token_service.api_key")
		}
	} else if creds.TerminalID == "" {
		missing = append(missing, "terminal_id")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

func clone(c models.Credentials) models.Credentials {
	if c.TokenService != nil {
		ts := *c.TokenService
		c.TokenService = &ts
	}
	return c
}
