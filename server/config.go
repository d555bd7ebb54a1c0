package server

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/topi314/dropgallery/internal/xtime"
	"github.com/topi314/dropgallery/server/auth"
	"github.com/topi314/dropgallery/server/dropbox"
	"github.com/topi314/dropgallery/server/session"
)

func LoadConfig(cfgPath string) (Config, error) {
	file, err := os.Open(cfgPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	cfg := defaultConfig()
	if _, err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config file: %w", err)
	}

	return cfg, nil
}

func defaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:     slog.LevelInfo,
			Format:    LogFormatText,
			AddSource: false,
		},
		Server: ServerConfig{
			Addr: ":3000",
		},
		Auth: auth.Config{
			RedirectURL:  "http://localhost:3000/oauthredirect",
			AuthorizeURL: "https://www.dropbox.com/oauth2/authorize",
			TokenURL:     "https://api.dropboxapi.com/oauth2/token",
			RevokeURL:    "https://api.dropboxapi.com/2/auth/token/revoke",
		},
		Dropbox: dropbox.Config{
			APIURL: "https://api.dropboxapi.com",
			Every:  xtime.Duration(100 * time.Millisecond),
			Burst:  20,
		},
		Session: session.Config{
			RedisAddr: "localhost:6379",
			TTL:       xtime.Duration(24 * time.Hour),
		},
	}
}

type Config struct {
	Dev     bool           `toml:"dev"`
	Log     LogConfig      `toml:"log"`
	Server  ServerConfig   `toml:"server"`
	Auth    auth.Config    `toml:"auth"`
	Dropbox dropbox.Config `toml:"dropbox"`
	Session session.Config `toml:"session"`
}

func (c Config) String() string {
	return fmt.Sprintf("Dev: %t\nLog: %s\nServer: %s\nAuth: %s\nDropbox: %s\nSession: %s",
		c.Dev,
		c.Log,
		c.Server,
		c.Auth,
		c.Dropbox,
		c.Session,
	)
}

type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    LogFormat  `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

func (c LogConfig) String() string {
	return fmt.Sprintf("\n Level: %s\n Format: %s\n AddSource: %t",
		c.Level,
		c.Format,
		c.AddSource,
	)
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

func (c ServerConfig) String() string {
	return fmt.Sprintf("\n Address: %s",
		c.Addr,
	)
}
