package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	s := NewSanitizer()

	t.Run("leaves plain text alone", func(t *testing.T) {
		assert.Equal(t, "hello world", s.Clean("hello world"))
	})

	t.Run("strips script tags and their content", func(t *testing.T) {
		out := s.Clean(`before <script>alert("xss")</script> after`)
		assert.Equal(t, "before after", out)
		assert.NotContains(t, out, "alert")
	})

	t.Run("strips style tags and their content", func(t *testing.T) {
		out := s.Clean(`<style>body { display: none }</style>text`)
		assert.Equal(t, "text", out)
	})

	t.Run("strips disallowed elements but keeps their text", func(t *testing.T) {
		assert.Equal(t, "bold text", s.Clean("<b>bold</b> text"))
		assert.Equal(t, "a link", s.Clean(`a <a href="https://example.com">link</a>`))
		assert.Equal(t, "clickable", s.Clean(`<div onclick="steal()">clickable</div>`))
	})

	t.Run("keeps allow-listed formatting", func(t *testing.T) {
		assert.Equal(t, "<strong>important</strong>", s.Clean("<strong>important</strong>"))
		assert.Equal(t, "<em>aside</em>", s.Clean("<em>aside</em>"))
		assert.Equal(t, "<code>x := 1</code>", s.Clean("<code>x := 1</code>"))
	})

	t.Run("keeps class attribute only", func(t *testing.T) {
		out := s.Clean(`<code class="go" onclick="run()">x</code>`)
		assert.Contains(t, out, `class="go"`)
		assert.NotContains(t, out, "onclick")
	})

	t.Run("strips event-handler attributes with their element", func(t *testing.T) {
		out := s.Clean(`<img src=x onerror=alert(1)> trailing`)
		assert.Equal(t, "trailing", out)
	})

	t.Run("removes control characters", func(t *testing.T) {
		assert.Equal(t, "abc", s.Clean("a\x00b\x01c"))
		assert.Equal(t, "abc", s.Clean("a\x7fb\x0bc"))
	})

	t.Run("collapses whitespace runs", func(t *testing.T) {
		assert.Equal(t, "a b c", s.Clean("a  \t b \n\n c"))
		assert.Equal(t, "trimmed", s.Clean("   trimmed   "))
	})

	t.Run("empty input stays empty", func(t *testing.T) {
		assert.Equal(t, "", s.Clean(""))
		assert.Equal(t, "", s.Clean("   \t\n  "))
	})
}

func TestCleanIdempotent(t *testing.T) {
	s := NewSanitizer()

	inputs := []string{
		"plain text",
		"  leading and   trailing  ",
		`<script>alert(1)</script>hi`,
		"<b>bold</b> and <strong>strong</strong>",
		`<img src=x onerror=alert(1)> hi`,
		"a\x00b \t c",
		"5 < 6 && 7 > 2",
		`<code class="go">fmt.Println("hi")</code>`,
		"<ul><li>one</li><li>two</li></ul>",
	}

	for _, input := range inputs {
		once := s.Clean(input)
		twice := s.Clean(once)
		assert.Equal(t, once, twice, "Clean is not idempotent for %q", input)
	}
}
