package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/topi314/dropgallery/server/auth"
	"github.com/topi314/dropgallery/server/session"
)

const sessionCookieName = "session"

// withSession loads the session referenced by the session cookie, creating a
// fresh anonymous one when there is none. Login needs a session ID to bind
// the OAuth state to, so every page request carries a session.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if strings.HasPrefix(r.URL.Path, "/static") {
			next.ServeHTTP(w, r)
			return
		}

		var sess session.Session
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil && !errors.Is(err, http.ErrNoCookie) {
			slog.ErrorContext(ctx, "Failed to get session cookie", slog.Any("err", err))
			s.renderError(w, r, err)
			return
		}

		var found bool
		if cookie != nil {
			sess, found, err = s.sessions.Get(ctx, cookie.Value)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to get session", slog.Any("err", err))
				s.renderError(w, r, err)
				return
			}
		}

		if !found {
			sess, err = s.sessions.Create(ctx)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to create session", slog.Any("err", err))
				s.renderError(w, r, err)
				return
			}
			s.addSessionCookie(w, sess.ID)
		}

		r = r.WithContext(session.Set(ctx, sess))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	sess := session.Get(r)

	state := s.auth.NewState(sess.ID)
	http.Redirect(w, r, s.auth.AuthCodeURL(state), http.StatusFound)
}

func (s *Server) OAuthRedirect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	if desc := query.Get("error_description"); desc != "" {
		s.renderError(w, r, &auth.UpstreamError{Description: desc})
		return
	}

	sess := session.Get(r)

	// The CSRF check. Everything below only runs for a callback that belongs
	// to a login this session started within the state TTL.
	if !s.auth.ValidateState(query.Get("state"), sess.ID) {
		s.renderError(w, r, auth.ErrInvalidState)
		return
	}

	code := query.Get("code")
	if code == "" {
		s.renderError(w, r, auth.ErrMissingCode)
		return
	}

	token, err := s.auth.Exchange(ctx, code)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to exchange authorization code", slog.Any("err", err))
		s.renderError(w, r, err)
		return
	}

	// Swap the session ID before the token touches it, so the pre-auth ID
	// never identifies an authenticated session.
	newSess, err := s.sessions.Regenerate(ctx, sess)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to regenerate session", slog.Any("err", err))
		s.renderError(w, r, err)
		return
	}

	if err = s.sessions.AttachToken(ctx, &newSess, token); err != nil {
		slog.ErrorContext(ctx, "Failed to attach token to session", slog.Any("err", err))
		s.renderError(w, r, err)
		return
	}

	s.addSessionCookie(w, newSess.ID)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := session.Get(r)

	if sess.Authenticated() {
		// Revocation failure downgrades to a local-only logout.
		if err := s.auth.Revoke(ctx, sess.Token); err != nil {
			slog.WarnContext(ctx, "Failed to revoke access token", slog.Any("err", err))
		}
	}

	if err := s.sessions.Destroy(ctx, sess); err != nil {
		slog.ErrorContext(ctx, "Failed to destroy session", slog.Any("err", err))
		s.renderError(w, r, err)
		return
	}

	s.removeSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) addSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Expires:  time.Now().Add(time.Duration(s.cfg.Session.TTL)),
		SameSite: http.SameSiteLaxMode,
		Secure:   s.cfg.Session.SecureCookies,
		HttpOnly: true,
		Path:     "/",
	})
}

func (s *Server) removeSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.cfg.Session.SecureCookies,
		HttpOnly: true,
		Path:     "/",
	})
}
