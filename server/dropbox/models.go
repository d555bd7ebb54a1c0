package dropbox

type listFolderRequest struct {
	Path string `json:"path"`
}

type ListFolderResult struct {
	Entries []Entry `json:"entries"`
	Cursor  string  `json:"cursor"`
	HasMore bool    `json:"has_more"`
}

type Entry struct {
	Tag       string `json:".tag"`
	Name      string `json:"name"`
	PathLower string `json:"path_lower"`
}

type temporaryLinkRequest struct {
	Path string `json:"path"`
}

type temporaryLinkResponse struct {
	Link string `json:"link"`
}

// TemporaryLink is a short-lived direct download URL for one file. It is never
// persisted, every gallery render resolves fresh links.
type TemporaryLink struct {
	Path string
	URL  string
}
