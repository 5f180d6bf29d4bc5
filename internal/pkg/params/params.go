// Package params parses numeric identifiers out of gin requests.
package params

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// ID parses the named path parameter as a positive id.
func ID(c *gin.Context, name string) (uint, bool) {
	return parseUint(c.Param(name))
}

// OptionalID parses the named query parameter. A missing or blank value yields nil.
func OptionalID(c *gin.Context, name string) (*uint, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, ok := parseUint(raw)
	if !ok {
		return nil, fmt.Errorf("invalid %s %q", name, raw)
	}
	return &id, nil
}

func parseUint(raw string) (uint, bool) {
	v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 0)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}
