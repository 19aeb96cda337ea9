package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/kydenul/lotofacil"
)

const (
	ctxUserIDKey    = "lotofacil.user_id"
	ctxAnonymousKey = "lotofacil.anonymous"
)

// SessionClaims is the payload of the signed session cookie
type SessionClaims struct {
	// StartedAt is when the session was first issued, unix milliseconds
	StartedAt int64 `json:"sst"`
	// Requests counts the requests made with this session
	Requests int `json:"rc"`
	jwt.RegisteredClaims
}

// SessionManager issues and verifies session cookies
type SessionManager struct {
	cfg    *lotofacil.SessionConfig
	secret []byte
	now    func() time.Time
}

// NewSessionManager creates a manager signing with cfg.Secret
func NewSessionManager(cfg *lotofacil.SessionConfig) *SessionManager {
	if cfg == nil {
		cfg = lotofacil.DefaultSessionConfig()
	}
	return &SessionManager{cfg: cfg, secret: []byte(cfg.Secret), now: time.Now}
}

// Issue signs claims for userID
func (m *SessionManager) Issue(userID string, startedAt time.Time, requests int) (string, error) {
	now := m.now()
	claims := SessionClaims{
		StartedAt: startedAt.UnixMilli(),
		Requests:  requests,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.MaxAge)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse verifies a session token
func (m *SessionManager) Parse(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, lotofacil.ErrSessionInvalid.WithCause(err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, lotofacil.ErrSessionInvalid.WithDetails("invalid token claims")
	}
	return claims, nil
}

// validProbe reports whether the probe cookie round-tripped
func (m *SessionManager) validProbe(value string) bool {
	return strings.HasPrefix(value, m.cfg.ProbeCookiePrefix)
}

// anonymous applies the cookie round-trip heuristic: a session past its grace
// period whose probe cookie never came back is treated as a private window.
func (m *SessionManager) anonymous(claims *SessionClaims, probe string, hasProbe bool) bool {
	age := m.now().Sub(time.UnixMilli(claims.StartedAt))
	if claims.Requests > 1 && age > m.cfg.ProbeGrace && !(hasProbe && m.validProbe(probe)) {
		return true
	}
	return claims.Requests > 3 && !hasProbe
}

func (m *SessionManager) setCookie(c *gin.Context, name, value string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, int(m.cfg.MaxAge.Seconds()), "/", "", m.cfg.Secure, true)
}

// Middleware resolves the identity of every request, issuing a new one when the
// cookie is missing or invalid, and flags anonymous sessions.
func (m *SessionManager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		now := m.now()

		var claims *SessionClaims
		if raw, err := c.Cookie(m.cfg.CookieName); err == nil {
			claims, _ = m.Parse(raw)
		}
		if claims == nil {
			claims = &SessionClaims{StartedAt: now.UnixMilli()}
			claims.Subject = lotofacil.NewID()
		}
		claims.Requests++

		token, err := m.Issue(claims.Subject, time.UnixMilli(claims.StartedAt), claims.Requests)
		if err != nil {
			RespondLotoError(c, lotofacil.ErrSessionInvalid.WithCause(err))
			return
		}
		m.setCookie(c, m.cfg.CookieName, token)

		probe, probeErr := c.Cookie(m.cfg.ProbeCookieName)
		hasProbe := probeErr == nil
		if !hasProbe {
			m.setCookie(c, m.cfg.ProbeCookieName, m.cfg.ProbeCookiePrefix+strconv.FormatInt(now.UnixMilli(), 10))
		}

		c.Set(ctxUserIDKey, claims.Subject)
		c.Set(ctxAnonymousKey, m.anonymous(claims, probe, hasProbe))
		c.Next()
	}
}

// BlockAnonymous rejects requests flagged as anonymous
func (m *SessionManager) BlockAnonymous() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.cfg.BlockAnonymous && c.GetBool(ctxAnonymousKey) {
			RespondLotoError(c, lotofacil.ErrAnonymousSession.WithUserID(UserID(c)))
			return
		}
		c.Next()
	}
}

// UserID returns the identity resolved by the session middleware
func UserID(c *gin.Context) string { return c.GetString(ctxUserIDKey) }
