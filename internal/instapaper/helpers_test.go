// file: internal/instapaper/helpers_test.go
package instapaper

import (
	"testing"
	"time"

	"github.com/dkoosis/instapaper-mcp/internal/instapaper/instapapertest"
	"github.com/dkoosis/instapaper-mcp/internal/logging"
)

var fixedNow = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

func testCredentials() Credentials {
	return Credentials{
		ConsumerKey:    instapapertest.ConsumerKey,
		ConsumerSecret: instapapertest.ConsumerSecret,
		Username:       instapapertest.Username,
		Password:       instapapertest.Password,
	}
}

func newTestClient(t *testing.T, srv *instapapertest.Server, opts ...Option) *Client {
	t.Helper()
	base := []Option{
		WithBaseURL(srv.BaseURL),
		WithLogger(logging.GetNoopLogger()),
		WithMetrics(nil),
	}
	return NewClient(testCredentials(), append(base, opts...)...)
}

const bookmarkJSON = `{"type":"bookmark","bookmark_id":101,"url":"https://example.com/go","title":"Concurrency in Go","description":"Goroutines and channels","time":1700000000,"starred":"0","hash":"abc","progress":0.25,"progress_timestamp":1700000100}`

const listArrayJSON = `[
	{"type":"meta"},
	{"type":"user","user_id":7,"username":"reader@example.com"},
	` + bookmarkJSON + `,
	{"type":"bookmark","bookmark_id":102,"url":"https://example.com/rust","title":"Ownership","description":"Borrowing rules","time":1700000200,"starred":"1","progress":0,"progress_timestamp":0}
]`
