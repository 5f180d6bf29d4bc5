package app

import (
	"net/url"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mx-space/portfolio/internal/config"
)

// newCORS allows every origin in development or when no origins are
// configured; otherwise only origins matching allowed_origins.
func newCORS(cfg *config.AppConfig) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		AllowOriginFunc:  func(string) bool { return true },
	}
	if len(cfg.AllowedOrigins) > 0 && !cfg.IsDev() {
		c.AllowOriginFunc = originMatcher(cfg.AllowedOrigins)
	}
	return cors.New(c)
}

func originMatcher(patterns []string) func(string) bool {
	hosts := make([]string, 0, len(patterns))
	for _, p := range patterns {
		hosts = append(hosts, originHost(p))
	}
	return func(origin string) bool {
		host := originHost(origin)
		for _, pattern := range hosts {
			if matchHost(pattern, host) {
				return true
			}
		}
		return false
	}
}

// originHost strips the scheme from an origin, leaving "host[:port]".
// Values without a scheme are returned as is.
func originHost(origin string) string {
	origin = strings.TrimSpace(origin)
	if !strings.Contains(origin, "://") {
		return strings.TrimRight(origin, "/")
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return origin
	}
	return u.Host
}

// matchHost supports "*.example.com" subdomain and "localhost:*" port wildcards.
func matchHost(pattern, host string) bool {
	switch {
	case pattern == host:
		return true
	case strings.HasPrefix(pattern, "*."):
		return strings.HasSuffix(host, pattern[1:])
	case strings.HasSuffix(pattern, ":*"):
		return strings.HasPrefix(host, pattern[:len(pattern)-1])
	}
	return false
}
