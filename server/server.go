package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/topi314/dropgallery/server/auth"
	"github.com/topi314/dropgallery/server/dropbox"
	"github.com/topi314/dropgallery/server/session"
)

var (
	//go:embed static
	static embed.FS

	//go:embed templates/*.gohtml
	templates embed.FS
)

func New(cfg Config) (*Server, error) {
	var staticFS http.FileSystem
	var t func() *template.Template
	if cfg.Dev {
		root, err := os.OpenRoot("server/")
		if err != nil {
			return nil, fmt.Errorf("failed to open static directory: %w", err)
		}
		staticFS = http.FS(root.FS())
		t = func() *template.Template {
			return template.Must(template.New("templates").
				ParseFS(root.FS(), "templates/*.gohtml"))
		}
	} else {
		staticFS = http.FS(static)

		st := template.Must(template.New("templates").
			ParseFS(templates, "templates/*.gohtml"),
		)

		t = func() *template.Template {
			return st
		}
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Session.RedisAddr,
		Password: cfg.Session.RedisPassword,
		DB:       cfg.Session.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	httpClient := &http.Client{
		Timeout: 10 * time.Second,
	}

	s := &Server{
		cfg:        cfg,
		httpClient: httpClient,
		auth:       auth.New(cfg.Auth, httpClient),
		sessions:   session.NewManager(session.NewRedisStore(redisClient, time.Duration(cfg.Session.TTL))),
		dropbox:    dropbox.New(cfg.Dropbox, httpClient),
		redis:      redisClient,
		templates:  t,
		staticFS:   staticFS,
	}
	s.server = &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: s.routes(),
	}

	return s, nil
}

type Server struct {
	cfg        Config
	server     *http.Server
	httpClient *http.Client
	auth       *auth.Auth
	sessions   *session.Manager
	dropbox    *dropbox.Client
	redis      *redis.Client
	templates  func() *template.Template
	staticFS   http.FileSystem
}

func (s *Server) Start() {
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", slog.Any("err", err))
		}
	}()
}

func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown failed", slog.Any("err", err))
	}

	if err := s.redis.Close(); err != nil {
		slog.Error("Failed to close redis client", slog.Any("err", err))
	}
}
