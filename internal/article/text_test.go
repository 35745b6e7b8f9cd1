// file: internal/article/text_test.go
package article

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "ParagraphsAndInlineMarkup",
			html: `<html><head><title>T</title><style>p{color:red}</style></head><body><h1>Title</h1><p>Hello <b>world</b>.</p><p>Second   para</p><script>track()</script></body></html>`,
			want: "Title\n\nHello world.\n\nSecond para",
		},
		{
			name: "LineBreaks",
			html: `<p>one<br>two</p>`,
			want: "one\ntwo",
		},
		{
			name: "Lists",
			html: `<ul><li>alpha</li><li>beta</li></ul>`,
			want: "- alpha\n\n- beta",
		},
		{
			name: "FragmentWithoutBody",
			html: `plain words`,
			want: "plain words",
		},
		{
			name: "Empty",
			html: ``,
			want: "",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := PlainText(tc.html)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPlainTextDropsComments(t *testing.T) {
	got, err := PlainText(`<p>kept<!-- hidden --></p>`)
	require.NoError(t, err)
	assert.Equal(t, "kept", got)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Concurrency in Go", Title(`<html><head><title> Concurrency in Go </title></head></html>`))
	assert.Equal(t, "", Title(`<p>no title</p>`))
}
