package markdown

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFootnotes(t *testing.T) {
	got := FormatFootnotes("A[^1] and B[^2].\n\n[^1]: First.\n[^2]: Second.\n")

	want := `A<sup class="footnote-ref" id="fnref-1"><a href="#fn-1">1</a></sup> and ` +
		`B<sup class="footnote-ref" id="fnref-2"><a href="#fn-2">2</a></sup>.` + "\n\n" +
		"<section class=\"footnotes\">\n<ol>\n" +
		"<li id=\"fn-1\">First. <a href=\"#fnref-1\">↩</a></li>\n" +
		"<li id=\"fn-2\">Second. <a href=\"#fnref-2\">↩</a></li>\n" +
		"</ol>\n</section>\n"

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FormatFootnotes mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatFootnotes_NoDefinitions(t *testing.T) {
	assert.Equal(t, "plain text", FormatFootnotes("plain text"))
	assert.Contains(t, FormatFootnotes("dangling[^x]"), `id="fnref-x"`)
}

func TestFormatFootnotes_SkipsCode(t *testing.T) {
	md := "Use `[^1]` literally, but cite[^1].\n\n" +
		"```\nx := list[^1]\n[^2]: not a definition\n```\n\n" +
		"[^1]: Real note.\n"

	got := FormatFootnotes(md)

	assert.Contains(t, got, "Use `[^1]` literally, but cite<sup class=\"footnote-ref\" id=\"fnref-1\">")
	assert.Contains(t, got, "```\nx := list[^1]\n[^2]: not a definition\n```")
	assert.Contains(t, got, `<li id="fn-1">Real note. <a href="#fnref-1">↩</a></li>`)
	assert.NotContains(t, got, `id="fn-2"`)
	assert.Equal(t, 1, strings.Count(got, `id="fnref-1"`))
}

func TestFormatFootnotes_RendersDefinitionMarkdown(t *testing.T) {
	got := FormatFootnotes("Text[^a].\n\n[^a]: A *note* with `code`.\n")
	assert.Contains(t, got, `<li id="fn-a">A <em>note</em> with <code>code</code>. <a href="#fnref-a">↩</a></li>`)
}

func TestRenderChapter(t *testing.T) {
	r := NewRenderer()

	html, err := r.RenderChapter("Hello *world*[^1]\n\nSecond paragraph.\n\n[^1]: Note <script>alert(1)</script>")
	require.NoError(t, err)

	assert.Contains(t, html, `<p id="p-1">Hello <em>world</em>`)
	assert.Contains(t, html, `<p id="p-2">Second paragraph.</p>`)
	assert.Contains(t, html, `id="fnref-1"`)
	assert.Contains(t, html, `<li id="fn-1">`)
	assert.Contains(t, html, `href="#fn-1"`)
	assert.NotContains(t, html, "<script")
	assert.NotContains(t, html, "alert")
}

func TestRenderPost_DropsRawHTML(t *testing.T) {
	r := NewRenderer()

	html, err := r.RenderPost("**bold** <b onclick=\"x()\">raw</b>")
	require.NoError(t, err)
	assert.Contains(t, html, "<strong>bold</strong>")
	assert.NotContains(t, html, "<b ")
	assert.NotContains(t, html, "onclick")
}

func TestStripHTML(t *testing.T) {
	r := NewRenderer()
	assert.Equal(t, "hi there", r.StripHTML("<b>hi</b> <i>there</i>"))
}
