package markdown

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const googleDocExport = `<html><head><style>.c1{font-weight:700}.c2{font-style:italic}</style></head><body>
<h1>Chapter 1</h1>
<p><span>The </span><span class="c1">hero</span><span> arrived</span><sup><a href="#ftnt1" id="ftnt_ref1">[1]</a></sup><span>.</span></p>
<p><span class="c2">Quietly</span>, <a href="https://www.google.com/url?q=https://example.com/map&amp;sa=D">a map</a>.</p>
<ul><li>one</li><li>two<ul><li>nested</li></ul></li></ul>
<ol><li>first</li><li>second</li></ol>
<blockquote><p>Quote</p></blockquote>
<hr>
<p>Line<br>break</p>
<div><p><a href="#ftnt_ref1" id="ftnt1">[1]</a><span>&nbsp;A footnote.</span></p></div>
</body></html>`

func TestHTMLToMarkdown_GoogleDocExport(t *testing.T) {
	got, err := HTMLToMarkdown(googleDocExport)
	require.NoError(t, err)

	want := "# Chapter 1\n\n" +
		"The **hero** arrived[^1].\n\n" +
		"*Quietly*, [a map](https://example.com/map).\n\n" +
		"- one\n- two\n    - nested\n\n" +
		"1. first\n2. second\n\n" +
		"> Quote\n\n" +
		"---\n\n" +
		"Line  \nbreak\n\n" +
		"[^1]: A footnote."

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("HTMLToMarkdown mismatch (-want +got):\n%s", diff)
	}
}

func TestHTMLToMarkdown_PlainHTML(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"emphasis", `<p><strong>Bold</strong> and <em>italic</em> and <s>gone</s></p>`, "**Bold** and *italic* and ~~gone~~"},
		{"inline style span", `<p><span style="font-weight:700;font-style:italic">both</span></p>`, "***both***"},
		{"spaces stay outside markers", `<p>a<b> b </b>c</p>`, "a **b** c"},
		{"heading levels", `<h3>Part  Two</h3>`, "### Part Two"},
		{"scripts dropped", `<p>safe</p><script>alert(1)</script>`, "safe"},
		{"anchor without href", `<p><a id="x">name</a></p>`, "name"},
		{"empty", ``, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := HTMLToMarkdown(tc.in)
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestHTMLToMarkdown_EscapesLiteralText(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"literal tags", `<p>Use &lt;b&gt;tags&lt;/b&gt; here</p>`, `Use \<b\>tags\</b\> here`},
		{"stars and underscores", `<p>*stars* and _x_ and snake_case</p>`, `\*stars\* and \_x\_ and snake\_case`},
		{"brackets backslash tilde", `<p>[see] C:\dir ~old~</p>`, `\[see\] C:\\dir \~old\~`},
		{"leading hash", `<p># not a heading</p>`, `\# not a heading`},
		{"leading ordered marker", `<p>1. not a list</p>`, `1\. not a list`},
		{"leading dash and plus", `<p>- dash</p><p>+ plus</p>`, "\\- dash\n\n\\+ plus"},
		{"marker after line break", `<p>intro<br>2) second</p>`, "intro  \n2\\) second"},
		{"list item text", `<ul><li>3. odd</li></ul>`, `- 3\. odd`},
		{"code keeps text", `<p><code>x * y_z</code></p>`, "`x * y_z`"},
		{"code with backtick", "<p><code>a`b</code></p>", "``a`b``"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := HTMLToMarkdown(tc.in)
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestHTMLToMarkdown_LiteralTextSurvivesRendering(t *testing.T) {
	md, err := HTMLToMarkdown(`<p>Use &lt;b&gt;tags&lt;/b&gt; and *stars*</p><p># not a heading</p>`)
	require.NoError(t, err)

	html, err := NewRenderer().RenderChapter(md)
	require.NoError(t, err)

	assert.Contains(t, html, "Use &lt;b&gt;tags&lt;/b&gt; and *stars*")
	assert.Contains(t, html, "# not a heading")
	assert.NotContains(t, html, "<b>")
	assert.NotContains(t, html, "<em>")
	assert.NotContains(t, html, "<h1")
}
