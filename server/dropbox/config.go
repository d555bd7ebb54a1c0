package dropbox

import (
	"fmt"

	"github.com/topi314/dropgallery/internal/xtime"
)

type Config struct {
	APIURL string `toml:"api_url"`
	// Folder is the folder to list, relative to the app root. Empty means the
	// app root itself.
	Folder string         `toml:"folder"`
	Every  xtime.Duration `toml:"every"`
	Burst  int            `toml:"burst"`
}

func (c Config) String() string {
	return fmt.Sprintf("\n APIURL: %s\n Folder: %q\n Every: %s\n Burst: %d",
		c.APIURL,
		c.Folder,
		c.Every,
		c.Burst,
	)
}
