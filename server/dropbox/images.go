package dropbox

import (
	"context"
	"fmt"
	"strings"

	"github.com/topi314/dropgallery/internal/tsync"
)

var imageExtensions = []string{".gif", ".jpg", ".jpeg", ".tiff", ".png"}

func isImagePath(path string) bool {
	for _, ext := range imageExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// ListImagePaths lists one page of the folder and returns the lowercased
// paths of all image files in it. The cursor is only set when the folder has
// more entries than the page covered.
func (c *Client) ListImagePaths(ctx context.Context, token string, folder string) ([]string, string, error) {
	result, err := c.ListFolder(ctx, token, folder)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list folder: %w", err)
	}

	var paths []string
	for _, entry := range result.Entries {
		path := strings.ToLower(entry.PathLower)
		if isImagePath(path) {
			paths = append(paths, path)
		}
	}

	var cursor string
	if result.HasMore {
		cursor = result.Cursor
	}

	return paths, cursor, nil
}

// ResolveTemporaryLinks fetches one temporary link per path concurrently.
// If any single request fails the whole call fails, no partial result is
// returned. Links come back in the same order as the input paths.
func (c *Client) ResolveTemporaryLinks(ctx context.Context, token string, paths []string) ([]TemporaryLink, error) {
	links := make([]TemporaryLink, len(paths))

	var group tsync.ErrorGroup
	for i, path := range paths {
		group.Go(func() error {
			link, err := c.GetTemporaryLink(ctx, token, path)
			if err != nil {
				return fmt.Errorf("failed to resolve %q: %w", path, err)
			}
			links[i] = link
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("failed to resolve temporary links: %w", err)
	}

	return links, nil
}

// ListImages lists the configured folder and resolves a temporary link for
// every image in it, returning just the URLs.
func (c *Client) ListImages(ctx context.Context, token string) ([]string, error) {
	paths, _, err := c.ListImagePaths(ctx, token, c.cfg.Folder)
	if err != nil {
		return nil, err
	}

	links, err := c.ResolveTemporaryLinks(ctx, token, paths)
	if err != nil {
		return nil, err
	}

	urls := make([]string, len(links))
	for i, link := range links {
		urls[i] = link.URL
	}

	return urls, nil
}
