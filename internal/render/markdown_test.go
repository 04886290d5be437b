package render

import (
	"bytes"
	"testing"

	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

func TestRender_EmptyInput(t *testing.T) {
	assert.Equal(t, "", New().Render(""))
}

func TestRender_PlainText(t *testing.T) {
	result := New().Render("hello world")
	assert.Contains(t, result, "hello world")
}

func TestRender_Bold(t *testing.T) {
	result := New().Render("**bold text**")
	assert.Contains(t, result, "<strong>bold text</strong>")
}

func TestRender_InlineCode(t *testing.T) {
	result := New().Render("use `fmt.Println`")
	assert.Contains(t, result, "<code>fmt.Println</code>")
}

func TestRender_Link(t *testing.T) {
	result := New().Render("[click](https://example.com)")
	assert.Contains(t, result, `<a href="https://example.com"`)
	assert.Contains(t, result, "click</a>")
}

func TestRender_GFMStrikethrough(t *testing.T) {
	result := New().Render("~~deleted~~")
	assert.Contains(t, result, "<del>deleted</del>")
}

func TestRender_SanitizesScript(t *testing.T) {
	result := New().Render(`<script>alert("xss")</script>`)
	assert.NotContains(t, result, "<script>")
}

func TestRender_ImageGetsMaxWidthStyle(t *testing.T) {
	result := New().Render("![cat photo](/img/cat.png)")

	assert.Contains(t, result, `src="/img/cat.png"`)
	assert.Contains(t, result, `style="max-width:100%;"`)
	assert.Contains(t, result, `alt="cat photo"`)
}

func TestRender_ImageTitleBecomesTitleAttribute(t *testing.T) {
	result := New().Render(`![cat](/img/cat.png "a very good cat")`)

	assert.Contains(t, result, `title="a very good cat"`)
	assert.Contains(t, result, `style="max-width:100%;"`)
}

func TestRender_ImageAltDropsInlineMarkup(t *testing.T) {
	result := New().Render("![a **bold** cat](/img/cat.png)")

	assert.Contains(t, result, `alt="a bold cat"`)
	assert.NotContains(t, result, "<strong>bold</strong></img>")
}

func TestRender_ImageInsideParagraphAndList(t *testing.T) {
	result := New().Render("- item with ![pic](/p.png)\n- plain item")

	assert.Contains(t, result, "<li>")
	assert.Contains(t, result, `style="max-width:100%;"`)
	assert.Contains(t, result, "plain item")
}

func TestRender_DangerousImageURLSanitized(t *testing.T) {
	result := New().Render("![x](javascript:alert(1))")
	assert.NotContains(t, result, "javascript:")
}

// Inputs without images must serialize exactly as goldmark's unmodified HTML
// renderer would (after the same sanitization pass).
func TestRender_NonImageNodesMatchDefaultSerializer(t *testing.T) {
	inputs := []string{
		"# Heading\n\nsome *emphasis* and **strong** text",
		"- one\n- two\n- three",
		"> a quote\n\nfollowed by a paragraph",
		"```go\nfmt.Println(\"hi\")\n```",
		"[link](https://example.com) and `code`",
		"| a | b |\n|---|---|\n| 1 | 2 |",
	}

	defaultMD := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	sanitizer := bluemonday.UGCPolicy()

	r := New()
	for _, input := range inputs {
		var buf bytes.Buffer
		require.NoError(t, defaultMD.Convert([]byte(input), &buf))
		want := sanitizer.Sanitize(buf.String())

		assert.Equal(t, want, r.Render(input), "input: %q", input)
	}
}

func TestRender_ConcurrentUse(t *testing.T) {
	r := New()
	done := make(chan struct{})

	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 50; j++ {
				_ = r.Render("**bold** and ![img](/a.png) and #12")
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
