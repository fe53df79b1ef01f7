package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText_StripsTags(t *testing.T) {
	got := Text("<h1>Test Blog</h1><p>This is a test paragraph for the chat system.</p>")
	assert.Equal(t, "Test Blog This is a test paragraph for the chat system.", got)
}

func TestText_RemovesScriptAndStyle(t *testing.T) {
	in := `<p>Visible.</p><script>alert("x")</script><style>p { color: red }</style><p>Also visible.</p>`
	got := Text(in)
	assert.Equal(t, "Visible. Also visible.", got)
	assert.NotContains(t, got, "alert")
	assert.NotContains(t, got, "color")
}

func TestText_CollapsesWhitespace(t *testing.T) {
	got := Text("<p>one\n\n  two</p>\t<div>three</div>")
	assert.Equal(t, "one two three", got)
}

func TestText_DecodesEntities(t *testing.T) {
	got := Text("<p>Profit &amp; loss &mdash; Q3</p>")
	assert.Equal(t, "Profit & loss — Q3", got)
}

func TestText_MalformedMarkup(t *testing.T) {
	// Unclosed tags degrade to best-effort extraction instead of failing.
	got := Text("<p>broken <b>markup")
	assert.Equal(t, "broken markup", got)
}

func TestText_Empty(t *testing.T) {
	assert.Equal(t, "", Text(""))
	assert.Equal(t, "", Text("<div>   </div>"))
}

func TestText_PlainTextPassthrough(t *testing.T) {
	assert.Equal(t, "no markup here", Text("no markup here"))
}
