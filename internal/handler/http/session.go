package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/r4nb1r/ProfilePulse/internal/domain"
	"github.com/r4nb1r/ProfilePulse/internal/service"
	"github.com/r4nb1r/ProfilePulse/pkg/httputil"
	"github.com/r4nb1r/ProfilePulse/pkg/logger"
)

type sessionKey struct{}

// SessionCodec signs and parses the session cookie value.
type SessionCodec interface {
	SignSession(sessionID string, ttl time.Duration) (string, error)
	ParseSession(token string) (string, error)
}

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// SessionFromContext returns the session attached by the session middleware.
func SessionFromContext(ctx context.Context) *domain.Session {
	sess, _ := ctx.Value(sessionKey{}).(*domain.Session)
	return sess
}

func withSession(ctx context.Context, sess *domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// Sessions loads the session named by the cookie, starting a new one when
// the cookie is missing, forged or points at an expired session.
func Sessions(authSvc *service.AuthService, codec SessionCodec, cfg CookieConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			sess := loadSession(ctx, authSvc, codec, cfg, r)
			if sess == nil {
				var err error
				sess, err = authSvc.StartSession(ctx)
				if err != nil {
					httputil.WriteError(w, r, err, nil)
					return
				}
				if err := setSessionCookie(w, codec, cfg, sess); err != nil {
					httputil.WriteError(w, r, err, nil)
					return
				}
			}

			ctx = withSession(ctx, sess)
			ctx = logger.WithSessionID(ctx, sess.ID)
			l := logger.FromContext(ctx).With(slog.String("session_id", sess.ID))
			if sess.UserID != 0 {
				uid := strconv.FormatInt(sess.UserID, 10)
				ctx = logger.WithUserID(ctx, uid)
				l = l.With(slog.String("user_id", uid))
			}
			ctx = logger.NewContext(ctx, l)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func loadSession(ctx context.Context, authSvc *service.AuthService, codec SessionCodec, cfg CookieConfig, r *http.Request) *domain.Session {
	cookie, err := r.Cookie(cfg.Name)
	if err != nil || cookie.Value == "" {
		return nil
	}
	id, err := codec.ParseSession(cookie.Value)
	if err != nil {
		return nil
	}
	sess, err := authSvc.LoadSession(ctx, id)
	if err != nil {
		return nil
	}
	return sess
}

func setSessionCookie(w http.ResponseWriter, codec SessionCodec, cfg CookieConfig, sess *domain.Session) error {
	value, err := codec.SignSession(sess.ID, cfg.TTL)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func clearSessionCookie(w http.ResponseWriter, cfg CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// RequireAuth rejects requests whose session has not completed the consent flow.
func RequireAuth(authSvc *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := authSvc.RequireAuth(SessionFromContext(r.Context())); err != nil {
				httputil.WriteError(w, r, err, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
