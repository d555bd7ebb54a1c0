package server

import (
	"net/http"
	"path"

	"github.com/topi314/dropgallery/internal/middlewares"
)

func (s *Server) routes() http.Handler {
	fs := middlewares.Cache(http.FileServer(s.staticFS))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.Home)
	mux.HandleFunc("GET /login", s.Login)
	mux.HandleFunc("GET /oauthredirect", s.OAuthRedirect)
	mux.HandleFunc("GET /logout", s.Logout)

	mux.Handle("GET /static/", fs)
	mux.Handle("HEAD /static/", fs)

	mux.HandleFunc("/", s.NotFound)

	return cleanPathMiddleware(middlewares.Logger(s.withSession(mux)))
}

func cleanPathMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.URL.Path = path.Clean(r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
