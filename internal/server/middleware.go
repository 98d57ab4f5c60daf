package server

import (
	"strings"

	"github.com/chatlens/chatlens/internal/observability/logger"
	"github.com/chatlens/chatlens/pkg/tenantctx"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// allowed tenant slug bytes: lowercase alphanumerics, underscore, hyphen
func sanitizeTenantSlug(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	var b strings.Builder
	for _, r := range raw {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var reservedSubdomains = map[string]struct{}{
	"www":       {},
	"localhost": {},
	"127-0-0-1": {},
	"admin":     {},
}

// TenantMiddleware resolves the tenant slug from the X-Tenant header, the
// tenant query parameter, the host subdomain, or the configured default, in
// that order, and stores it on the request context.
func (s *Server) TenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := sanitizeTenantSlug(c.GetHeader("X-Tenant"))
		if slug == "" {
			slug = sanitizeTenantSlug(c.Query("tenant"))
		}
		if slug == "" {
			if sub := subdomainOf(c.Request.Host); sub != "" {
				slug = sub
			}
		}
		if slug == "" {
			slug = s.cfg.DefaultTenant
		}

		c.Request = c.Request.WithContext(tenantctx.WithTenantID(c.Request.Context(), slug))
		c.Next()
	}
}

func subdomainOf(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	parts := strings.Split(host, ".")
	if len(parts) < 3 {
		return ""
	}
	sub := sanitizeTenantSlug(parts[0])
	if _, reserved := reservedSubdomains[sub]; reserved || sub == "" {
		return ""
	}
	return sub
}

// RateLimitMiddleware throttles submissions per tenant. Redis outages fail
// open; a missing limiter disables throttling entirely.
func (s *Server) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		tenantID, _ := tenantctx.TenantID(ctx)

		allowed, err := s.limiter.AllowTenant(ctx, tenantID)
		if err != nil {
			logger.FromContext(ctx).Warn("rate limiter unavailable; allowing request", zap.Error(err))
		}
		if !allowed {
			s.obsMetrics.RecordRateLimitDenied(ctx, c.FullPath(), "tenant_bucket")
			AbortWithError(c, ErrRateLimited)
			return
		}
		s.obsMetrics.RecordRateLimitAllowed(ctx, c.FullPath())
		c.Next()
	}
}
