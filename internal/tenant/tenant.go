// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package tenant maps an inbound request to the site it addresses. Lookups
// are tried in order: the X-Site-ID header, the request host, the "site"
// query parameter, and finally the oldest active site. The first step that
// finds an active site wins.
package tenant

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"blockpress/internal/metrics"
	"blockpress/internal/models"
)

// DefaultTTL is how long a lookup result is reused.
const DefaultTTL = 30 * time.Second

// HeaderSiteID carries an explicit site id.
const HeaderSiteID = "X-Site-ID"

// How a site was matched.
const (
	ByHeader = "header"
	ByDomain = "domain"
	ByQuery  = "query"
	ByFirst  = "first_active"
)

// SiteSource looks up active sites. *store.SiteStore satisfies it.
type SiteSource interface {
	FindActiveByID(id uuid.UUID) (*models.Site, error)
	FindActiveByDomain(domain string) (*models.Site, error)
	FirstActive() (*models.Site, error)
}

// Match is a resolved site and the step that found it.
type Match struct {
	Site *models.Site `json:"site"`
	By   string       `json:"by"`
}

type entry struct {
	site    *models.Site
	expires time.Time
}

// Resolver resolves and caches site lookups. Misses are cached too, so an
// unknown host does not reach the database on every request.
type Resolver struct {
	sites SiteSource
	ttl   time.Duration
	now   func() time.Time

	mu    sync.RWMutex
	cache map[string]entry

	sf singleflight.Group
}

// NewResolver creates a Resolver. A zero ttl uses DefaultTTL.
func NewResolver(sites SiteSource, ttl time.Duration) *Resolver {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Resolver{
		sites: sites,
		ttl:   ttl,
		now:   time.Now,
		cache: make(map[string]entry),
	}
}

// Resolve finds the site for r. It returns nil when no active site exists.
func (r *Resolver) Resolve(req *http.Request) (*Match, error) {
	if raw := strings.TrimSpace(req.Header.Get(HeaderSiteID)); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			site, err := r.byID(id)
			if err != nil || site != nil {
				return matched(site, ByHeader, err)
			}
		}
	}

	if host := RequestHost(req); host != "" {
		site, err := r.byDomain(host)
		if err != nil || site != nil {
			return matched(site, ByDomain, err)
		}
	}

	if q := strings.TrimSpace(req.URL.Query().Get("site")); q != "" {
		var site *models.Site
		var err error
		if id, perr := uuid.Parse(q); perr == nil {
			site, err = r.byID(id)
		} else {
			site, err = r.byDomain(normalizeHost(q))
		}
		if err != nil || site != nil {
			return matched(site, ByQuery, err)
		}
	}

	site, err := r.lookup("first", r.sites.FirstActive)
	return matched(site, ByFirst, err)
}

func matched(site *models.Site, by string, err error) (*Match, error) {
	if err != nil {
		return nil, err
	}
	if site == nil {
		return nil, nil
	}
	return &Match{Site: site, By: by}, nil
}

func (r *Resolver) byID(id uuid.UUID) (*models.Site, error) {
	return r.lookup("id:"+id.String(), func() (*models.Site, error) {
		return r.sites.FindActiveByID(id)
	})
}

func (r *Resolver) byDomain(host string) (*models.Site, error) {
	if host == "" {
		return nil, nil
	}
	return r.lookup("domain:"+host, func() (*models.Site, error) {
		return r.sites.FindActiveByDomain(host)
	})
}

// lookup serves key from the cache or loads it once for all concurrent
// callers.
func (r *Resolver) lookup(key string, load func() (*models.Site, error)) (*models.Site, error) {
	r.mu.RLock()
	e, ok := r.cache[key]
	r.mu.RUnlock()
	if ok && r.now().Before(e.expires) {
		metrics.TenantLookups.WithLabelValues("hit").Inc()
		return e.site, nil
	}

	v, err, _ := r.sf.Do(key, func() (any, error) {
		site, err := load()
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.cache[key] = entry{site: site, expires: r.now().Add(r.ttl)}
		r.mu.Unlock()
		return site, nil
	})
	if err != nil {
		metrics.TenantLookups.WithLabelValues("error").Inc()
		zap.S().Errorw("site lookup failed", "key", key, "error", err)
		return nil, err
	}
	metrics.TenantLookups.WithLabelValues("miss").Inc()
	return v.(*models.Site), nil
}

// Invalidate drops every cached lookup. Call it after sites change.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	r.cache = make(map[string]entry)
	r.mu.Unlock()
	zap.S().Debugw("tenant cache invalidated")
}

// CacheKeys lists the cached lookup keys, for diagnostics.
func (r *Resolver) CacheKeys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.cache))
	for k := range r.cache {
		keys = append(keys, k)
	}
	return keys
}

// RequestHost returns the host a request was addressed to, preferring
// X-Forwarded-Host, lowercased and without port.
func RequestHost(r *http.Request) string {
	host := r.Header.Get("X-Forwarded-Host")
	if host != "" {
		// Proxies may append: "client-facing, proxy1".
		host, _, _ = strings.Cut(host, ",")
	} else {
		host = r.Host
	}
	return normalizeHost(host)
}

func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.TrimSuffix(strings.Trim(host, "[]"), ".")
}

type ctxKey struct{}

// WithSite returns a context carrying site.
func WithSite(ctx context.Context, site *models.Site) context.Context {
	return context.WithValue(ctx, ctxKey{}, site)
}

// FromContext returns the site stored by Middleware, or nil.
func FromContext(ctx context.Context) *models.Site {
	site, _ := ctx.Value(ctxKey{}).(*models.Site)
	return site
}

// Middleware resolves the site of every request and stores it in the
// request context. Requests without any site get a 404.
func (r *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		m, err := r.Resolve(req)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if m == nil {
			writeError(w, http.StatusNotFound, "site not found")
			return
		}
		next.ServeHTTP(w, req.WithContext(WithSite(req.Context(), m.Site)))
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
