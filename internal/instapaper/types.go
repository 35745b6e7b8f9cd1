// file: internal/instapaper/types.go
package instapaper

import (
	"strconv"
	"strings"
)

// Bookmark is a saved article.
type Bookmark struct {
	Type              string  `json:"type"`
	BookmarkID        int64   `json:"bookmark_id"`
	URL               string  `json:"url"`
	Title             string  `json:"title"`
	Description       string  `json:"description,omitempty"`
	Time              int64   `json:"time"`
	Starred           string  `json:"starred"`
	PrivateSource     string  `json:"private_source,omitempty"`
	Hash              string  `json:"hash,omitempty"`
	Progress          float64 `json:"progress"`
	ProgressTimestamp int64   `json:"progress_timestamp"`
}

// IsStarred reports whether the API marked the bookmark as starred ("1").
func (b Bookmark) IsStarred() bool {
	return b.Starred == "1"
}

// Folder is a user-created folder.
type Folder struct {
	FolderID     int64  `json:"folder_id"`
	Title        string `json:"title"`
	SyncToMobile int    `json:"sync_to_mobile,omitempty"`
	Position     int64  `json:"position"`
}

// FolderPosition assigns a display position to a folder.
type FolderPosition struct {
	FolderID int64 `json:"folder_id"`
	Position int64 `json:"position"`
}

// Highlight is a saved excerpt of a bookmark.
type Highlight struct {
	HighlightID int64  `json:"highlight_id"`
	BookmarkID  int64  `json:"bookmark_id"`
	Text        string `json:"text"`
	Note        string `json:"note,omitempty"`
	Position    int    `json:"position"`
	Time        int64  `json:"time"`
}

// WellKnownFolder names the built-in folders.
type WellKnownFolder string

// Built-in folders.
const (
	FolderUnread  WellKnownFolder = "unread"
	FolderArchive WellKnownFolder = "archive"
	FolderStarred WellKnownFolder = "starred"
)

// FolderSelector is either a well-known folder or a numeric folder ID.
// The zero value selects nothing and lets the API default to unread.
type FolderSelector struct {
	wellKnown WellKnownFolder
	id        int64
}

// InFolder selects a built-in folder.
func InFolder(name WellKnownFolder) FolderSelector {
	return FolderSelector{wellKnown: name}
}

// FolderByID selects a user folder.
func FolderByID(id int64) FolderSelector {
	return FolderSelector{id: id}
}

// ParseFolderSelector accepts "unread", "archive", "starred" or a positive
// integer. An empty string yields the zero selector.
func ParseFolderSelector(s string) (FolderSelector, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return FolderSelector{}, nil
	}
	switch name := WellKnownFolder(strings.ToLower(s)); name {
	case FolderUnread, FolderArchive, FolderStarred:
		return InFolder(name), nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return FolderSelector{}, validationErrorf("folder %q is neither unread, archive, starred nor a folder ID", s)
	}
	return FolderByID(id), nil
}

// IsZero reports whether no folder was selected.
func (f FolderSelector) IsZero() bool {
	return f.wellKnown == "" && f.id == 0
}

// WellKnown returns the built-in folder name, if selected.
func (f FolderSelector) WellKnown() (WellKnownFolder, bool) {
	return f.wellKnown, f.wellKnown != ""
}

// ID returns the user folder ID, if selected.
func (f FolderSelector) ID() (int64, bool) {
	return f.id, f.wellKnown == "" && f.id != 0
}

// String returns the folder_id parameter value.
func (f FolderSelector) String() string {
	if f.wellKnown != "" {
		return string(f.wellKnown)
	}
	if f.id != 0 {
		return strconv.FormatInt(f.id, 10)
	}
	return ""
}
