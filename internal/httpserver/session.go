// internal/httpserver/session.go
//
// Session identity for HTTP clients.
// A session is addressed by an HS256 JWT carrying {sid, exp}. Browsers receive it as an
// HttpOnly cookie; other clients may send it as "Authorization: Bearer <token>".
// The signing key is derived from SESSION_SECRET with HKDF-SHA256, so the raw secret
// never signs anything directly.

package httpserver

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/hlog"
	"golang.org/x/crypto/hkdf"

	"github.com/robalobadob/duoshao/internal/play"
	"github.com/robalobadob/duoshao/internal/store"
)

const keyInfo = "duoshao session token v1"

var errBadToken = errors.New("httpserver: invalid session token")

// sessionClaims is the token payload.
type sessionClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// tokenSigner signs and verifies session tokens.
type tokenSigner struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func newTokenSigner(secret string, ttl time.Duration) (*tokenSigner, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("httpserver: derive session key: %w", err)
	}
	return &tokenSigner{key: key, ttl: ttl, now: time.Now}, nil
}

// sign returns a token for sid and its expiry.
func (t *tokenSigner) sign(sid string) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		SID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	ss, err := tok.SignedString(t.key)
	return ss, exp, err
}

// parse verifies a token and returns its claims.
func (t *tokenSigner) parse(raw string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return t.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil || !tok.Valid || claims.SID == "" {
		return nil, errBadToken
	}
	return claims, nil
}

// ------------------------------- cookies -----------------------------------

// setSessionCookie writes the session token cookie with appropriate security attributes.
func (s *Server) setSessionCookie(w http.ResponseWriter, token string, exp time.Time) {
	secure := s.cfg.Production()
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// bearerOrCookie extracts a bearer token from Authorization header or session cookie.
func (s *Server) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.cfg.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// ---------------------------- session middleware ---------------------------

type ctxTableKey struct{}

// withSession resolves the caller's table and injects it into the request context.
// Tokens past half their lifetime are reissued so an active player keeps the session.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := s.bearerOrCookie(r)
		if raw == "" {
			http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
			return
		}
		claims, err := s.tokens.parse(raw)
		if err != nil {
			http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
			return
		}
		t, err := s.store.Get(r.Context(), claims.SID)
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, `{"error":"session_not_found"}`, http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, `{"error":"store_failed"}`, http.StatusInternalServerError)
			return
		}
		if claims.ExpiresAt != nil && claims.ExpiresAt.Sub(s.tokens.now()) < s.tokens.ttl/2 {
			if tok, exp, err := s.tokens.sign(t.ID()); err == nil {
				s.setSessionCookie(w, tok, exp)
			} else {
				hlog.FromRequest(r).Warn().Err(err).Msg("reissue session token")
			}
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxTableKey{}, t)))
	})
}

// tableFrom returns the table injected by withSession.
func tableFrom(r *http.Request) *play.Table {
	t, _ := r.Context().Value(ctxTableKey{}).(*play.Table)
	return t
}
