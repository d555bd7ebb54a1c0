package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/topi314/dropgallery/server/session"
)

type GalleryVars struct {
	Images []string
}

func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := session.Get(r)

	if !sess.Authenticated() {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	images, err := s.dropbox.ListImages(ctx, sess.Token)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list images", slog.Any("err", err))
		s.renderError(w, r, fmt.Errorf("failed to get images from Dropbox: %w", err))
		return
	}

	if len(images) == 0 {
		if err = s.templates().ExecuteTemplate(w, "empty.gohtml", nil); err != nil {
			slog.ErrorContext(ctx, "Failed to render empty template", slog.Any("err", err))
		}
		return
	}

	if err = s.templates().ExecuteTemplate(w, "gallery.gohtml", GalleryVars{
		Images: images,
	}); err != nil {
		slog.ErrorContext(ctx, "Failed to render gallery template", slog.Any("err", err))
	}
}
