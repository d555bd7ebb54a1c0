package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Revoke invalidates the access token on the Dropbox side. Callers must treat
// a failure as non-fatal and still destroy the local session: logout degrades
// to local-only when Dropbox is unreachable.
func (a *Auth) Revoke(ctx context.Context, token string) error {
	rq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.RevokeURL, nil)
	if err != nil {
		return &RevocationError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	rq.Header.Set("Authorization", "Bearer "+token)

	rs, err := a.httpClient.Do(rq)
	if err != nil {
		return &RevocationError{Err: fmt.Errorf("failed to send request: %w", err)}
	}
	defer rs.Body.Close()

	if rs.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(rs.Body)
		return &RevocationError{Err: fmt.Errorf("request failed with status code: %d, response: %s", rs.StatusCode, data)}
	}

	return nil
}
