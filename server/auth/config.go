package auth

import (
	"fmt"
	"strings"
)

type Config struct {
	AppKey       string `toml:"app_key"`
	AppSecret    string `toml:"app_secret"`
	RedirectURL  string `toml:"redirect_url"`
	AuthorizeURL string `toml:"authorize_url"`
	TokenURL     string `toml:"token_url"`
	RevokeURL    string `toml:"revoke_url"`
}

func (c Config) String() string {
	return fmt.Sprintf("\n AppKey: %s\n AppSecret: %s\n RedirectURL: %s\n AuthorizeURL: %s\n TokenURL: %s\n RevokeURL: %s",
		c.AppKey,
		strings.Repeat("*", len(c.AppSecret)),
		c.RedirectURL,
		c.AuthorizeURL,
		c.TokenURL,
		c.RevokeURL,
	)
}
