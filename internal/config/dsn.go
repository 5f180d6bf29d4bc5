package config

import (
	"fmt"
	"net"
	neturl "net/url"
	"strconv"
	"strings"
)

// DSNValue returns the explicit dsn, or builds a go-sql-driver/mysql DSN from the parts.
func (c DatabaseRuntimeConfig) DSNValue() string {
	if v := strings.TrimSpace(c.DSN); v != "" {
		return v
	}

	host := strings.TrimSpace(c.Host)
	if host == "" {
		host = defaultDBHost
	}
	port := c.Port
	if port == 0 {
		port = defaultDBPort
	}
	user := strings.TrimSpace(c.User)
	if user == "" {
		user = defaultDBUser
	}
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = defaultDBName
	}
	charset := strings.TrimSpace(c.Charset)
	if charset == "" {
		charset = defaultDBCharset
	}
	loc := strings.TrimSpace(c.Loc)
	if loc == "" {
		loc = defaultDBLoc
	}

	params := neturl.Values{}
	for key, value := range c.Params {
		k := strings.TrimSpace(key)
		v := strings.TrimSpace(value)
		if k != "" && v != "" {
			params.Set(k, v)
		}
	}
	if params.Get("charset") == "" {
		params.Set("charset", charset)
	}
	if params.Get("parseTime") == "" {
		params.Set("parseTime", strconv.FormatBool(c.ParseTime))
	}
	if params.Get("loc") == "" {
		params.Set("loc", loc)
	}

	auth := user
	if c.Password != "" {
		auth += ":" + c.Password
	}
	auth += "@"

	dsn := fmt.Sprintf("%stcp(%s)/%s", auth, net.JoinHostPort(host, strconv.Itoa(port)), name)
	if query := params.Encode(); query != "" {
		dsn += "?" + query
	}
	return dsn
}

// URLValue returns the explicit url, or builds a redis:// URL from the parts.
// It returns "" when Redis is not configured.
func (c RedisRuntimeConfig) URLValue() string {
	if !c.Enabled() {
		return ""
	}
	if u := strings.TrimSpace(c.URL); u != "" {
		if !strings.Contains(u, "://") {
			u = "redis://" + u
		}
		return u
	}

	port := c.Port
	if port == 0 {
		port = defaultRedisPort
	}
	scheme := "redis"
	if c.TLS {
		scheme = "rediss"
	}
	u := &neturl.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(port)),
		Path:   "/" + strconv.Itoa(c.DB),
	}
	username := strings.TrimSpace(c.Username)
	switch {
	case username != "" && c.Password != "":
		u.User = neturl.UserPassword(username, c.Password)
	case username != "":
		u.User = neturl.User(username)
	case c.Password != "":
		u.User = neturl.UserPassword("", c.Password)
	}
	return u.String()
}
