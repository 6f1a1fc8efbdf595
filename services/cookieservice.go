package services

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

type CookieConfig struct {
	Path   string
	Domain string // empty = host-only
	Secure bool
}

// CookieManager keeps the session tokens in httpOnly cookies scoped to the API.
type CookieManager struct {
	cfg CookieConfig
}

func NewCookieManager(cfg CookieConfig) *CookieManager {
	if cfg.Path == "" {
		cfg.Path = "/api"
	}
	return &CookieManager{cfg: cfg}
}

// Issue attaches value under name, expiring after ttl.
func (m *CookieManager) Issue(c *gin.Context, name, value string, ttl time.Duration) {
	maxAge := int(ttl / time.Second)
	if maxAge <= 0 {
		// net/http drops the cookie immediately only for a negative MaxAge
		maxAge = -1
	}
	// browsers refuse SameSite=None without Secure
	sameSite := http.SameSiteLaxMode
	if m.cfg.Secure {
		sameSite = http.SameSiteNoneMode
	}
	c.SetSameSite(sameSite)
	c.SetCookie(name, value, maxAge, m.cfg.Path, m.cfg.Domain, m.cfg.Secure, true)
}

// Revoke tells the client to drop the cookie immediately.
func (m *CookieManager) Revoke(c *gin.Context, name string) {
	m.Issue(c, name, "", 0)
}

// Read returns the tokens presented by the request; a missing cookie yields an
// empty field.
func (m *CookieManager) Read(c *gin.Context) Credentials {
	access, _ := c.Cookie(AccessTokenCookie)
	refresh, _ := c.Cookie(RefreshTokenCookie)
	return Credentials{AccessToken: access, RefreshToken: refresh}
}
