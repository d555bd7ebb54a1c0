package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topi314/dropgallery/internal/xtime"
	"github.com/topi314/dropgallery/server/dropbox"
)

// fakeProvider stands in for Dropbox: token exchange, revocation and the two
// file endpoints, with call counters for the ordering invariants.
type fakeProvider struct {
	srv *httptest.Server

	exchangeCalls atomic.Int64
	revokeCalls   atomic.Int64
	revokeAuth    atomic.Value
	revokeStatus  atomic.Int64
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()

	fp := &fakeProvider{}
	fp.revokeStatus.Store(int64(http.StatusOK))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		fp.exchangeCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": "test-token",
			"token_type":   "bearer",
		})
	})
	mux.HandleFunc("POST /2/auth/token/revoke", func(w http.ResponseWriter, r *http.Request) {
		fp.revokeCalls.Add(1)
		fp.revokeAuth.Store(r.Header.Get("Authorization"))
		w.WriteHeader(int(fp.revokeStatus.Load()))
	})
	mux.HandleFunc("POST /2/files/list_folder", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(dropbox.ListFolderResult{
			Entries: []dropbox.Entry{
				{Tag: "file", Name: "a.png", PathLower: "/a.png"},
				{Tag: "file", Name: "notes.txt", PathLower: "/notes.txt"},
			},
		})
	})
	mux.HandleFunc("POST /2/files/get_temporary_link", func(w http.ResponseWriter, r *http.Request) {
		var rq struct {
			Path string `json:"path"`
		}
		_ = json.NewDecoder(r.Body).Decode(&rq)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"link": "https://dl.example.com" + rq.Path,
		})
	})

	fp.srv = httptest.NewServer(mux)
	t.Cleanup(fp.srv.Close)
	return fp
}

func newTestServer(t *testing.T) (*Server, *fakeProvider) {
	t.Helper()

	mr := miniredis.RunT(t)
	fp := newFakeProvider(t)

	cfg := defaultConfig()
	cfg.Auth.AppKey = "test-key"
	cfg.Auth.AppSecret = "test-secret"
	cfg.Auth.AuthorizeURL = "https://provider.example/oauth2/authorize"
	cfg.Auth.TokenURL = fp.srv.URL + "/oauth2/token"
	cfg.Auth.RevokeURL = fp.srv.URL + "/2/auth/token/revoke"
	cfg.Dropbox.APIURL = fp.srv.URL
	cfg.Dropbox.Every = xtime.Duration(time.Millisecond)
	cfg.Session.RedisAddr = mr.Addr()

	srv, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(srv.Stop)

	return srv, fp
}

func doRequest(s *Server, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	rq := httptest.NewRequest(http.MethodGet, target, nil)
	for _, cookie := range cookies {
		rq.AddCookie(cookie)
	}
	s.server.Handler.ServeHTTP(rec, rq)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionCookieName && cookie.Value != "" {
			return cookie
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

// login performs GET /login and returns the session cookie and the state
// carried in the redirect to the provider.
func login(t *testing.T, s *Server) (*http.Cookie, string) {
	t.Helper()

	rec := doRequest(s, "/login")
	require.Equal(t, http.StatusFound, rec.Code)

	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	state := location.Query().Get("state")
	require.NotEmpty(t, state)

	return sessionCookie(t, rec), state
}

func TestLoginRedirectsToProvider(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, "/login")
	require.Equal(t, http.StatusFound, rec.Code)

	location := rec.Header().Get("Location")
	assert.Contains(t, location, "https://provider.example/oauth2/authorize?")
	assert.Contains(t, location, "response_type=code")
	assert.Contains(t, location, "client_id=test-key")
	assert.Contains(t, location, "state=")
	sessionCookie(t, rec)
}

func TestCallbackRejectsUnknownState(t *testing.T) {
	s, fp := newTestServer(t)

	cookie, _ := login(t, s)

	rec := doRequest(s, "/oauthredirect?state=bogus&code=test-code", cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "session expired or invalid state")
	assert.EqualValues(t, 0, fp.exchangeCalls.Load(), "invalid state must short-circuit before any exchange")
}

func TestCallbackRejectsForeignSessionState(t *testing.T) {
	s, fp := newTestServer(t)

	_, stateA := login(t, s)
	cookieB, _ := login(t, s)

	rec := doRequest(s, "/oauthredirect?state="+stateA+"&code=test-code", cookieB)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.EqualValues(t, 0, fp.exchangeCalls.Load())
}

func TestCallbackUpstreamError(t *testing.T) {
	s, fp := newTestServer(t)

	cookie, state := login(t, s)

	rec := doRequest(s, "/oauthredirect?state="+state+"&error_description=access+denied", cookie)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "access denied")
	assert.EqualValues(t, 0, fp.exchangeCalls.Load(), "an upstream error must never trigger an exchange")
}

func TestCallbackMissingCode(t *testing.T) {
	s, fp := newTestServer(t)

	cookie, state := login(t, s)

	rec := doRequest(s, "/oauthredirect?state="+state, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.EqualValues(t, 0, fp.exchangeCalls.Load())
}

func TestCallbackSuccessRegeneratesSession(t *testing.T) {
	s, fp := newTestServer(t)
	ctx := t.Context()

	oldCookie, state := login(t, s)

	rec := doRequest(s, "/oauthredirect?state="+state+"&code=test-code", oldCookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.EqualValues(t, 1, fp.exchangeCalls.Load())

	newCookie := sessionCookie(t, rec)
	require.NotEqual(t, oldCookie.Value, newCookie.Value, "session ID must change on login")

	_, found, err := s.sessions.Get(ctx, oldCookie.Value)
	require.NoError(t, err)
	assert.False(t, found, "pre-auth session must be invalidated")

	sess, found, err := s.sessions.Get(ctx, newCookie.Value)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "test-token", sess.Token)
}

func TestCallbackWithoutPriorLogin(t *testing.T) {
	s, fp := newTestServer(t)

	rec := doRequest(s, "/oauthredirect?state=never-issued&code=test-code")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "session expired or invalid state")
	assert.EqualValues(t, 0, fp.exchangeCalls.Load())
}

func authenticate(t *testing.T, s *Server) *http.Cookie {
	t.Helper()

	cookie, state := login(t, s)
	rec := doRequest(s, "/oauthredirect?state="+state+"&code=test-code", cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	return sessionCookie(t, rec)
}

func TestLogout(t *testing.T) {
	s, fp := newTestServer(t)

	cookie := authenticate(t, s)

	rec := doRequest(s, "/logout", cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	assert.EqualValues(t, 1, fp.revokeCalls.Load())
	assert.Equal(t, "Bearer test-token", fp.revokeAuth.Load())

	_, found, err := s.sessions.Get(t.Context(), cookie.Value)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLogoutSurvivesRevocationFailure(t *testing.T) {
	s, fp := newTestServer(t)
	fp.revokeStatus.Store(int64(http.StatusInternalServerError))

	cookie := authenticate(t, s)

	rec := doRequest(s, "/logout", cookie)
	require.Equal(t, http.StatusFound, rec.Code, "local logout must not depend on remote revocation")

	_, found, err := s.sessions.Get(t.Context(), cookie.Value)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestHomeRequiresToken(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, "/")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestHomeRendersGallery(t *testing.T) {
	s, _ := newTestServer(t)

	cookie := authenticate(t, s)

	rec := doRequest(s, "/", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "https://dl.example.com/a.png")
	assert.NotContains(t, rec.Body.String(), "notes.txt")
}

func TestUnknownRouteRenders404(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(s, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
