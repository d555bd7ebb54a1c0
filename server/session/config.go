package session

import (
	"fmt"
	"strings"

	"github.com/topi314/dropgallery/internal/xtime"
)

type Config struct {
	RedisAddr     string         `toml:"redis_addr"`
	RedisPassword string         `toml:"redis_password"`
	RedisDB       int            `toml:"redis_db"`
	TTL           xtime.Duration `toml:"ttl"`
	SecureCookies bool           `toml:"secure_cookies"`
}

func (c Config) String() string {
	return fmt.Sprintf("\n RedisAddr: %s\n RedisPassword: %s\n RedisDB: %d\n TTL: %s\n SecureCookies: %t",
		c.RedisAddr,
		strings.Repeat("*", len(c.RedisPassword)),
		c.RedisDB,
		c.TTL,
		c.SecureCookies,
	)
}
