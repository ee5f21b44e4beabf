package markdown

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// paragraphIDs gán id="p-N" cho các paragraph cấp cao nhất để comment gắn theo đoạn
type paragraphIDs struct{}

func (paragraphIDs) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	n := 0
	for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Kind() == ast.KindParagraph {
			n++
			c.SetAttributeString("id", []byte(fmt.Sprintf("p-%d", n)))
		}
	}
}

// Renderer: Markdown → HTML (goldmark) → sanitize (bluemonday UGC)
type Renderer struct {
	chapter goldmark.Markdown
	plain   goldmark.Markdown
	policy  *bluemonday.Policy
	strict  *bluemonday.Policy
}

func NewRenderer() *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("id").Matching(regexp.MustCompile(`^(fn|fnref)-[A-Za-z0-9_-]+$`)).OnElements("sup", "li")
	policy.AllowAttrs("id").Matching(regexp.MustCompile(`^p-[0-9]+$`)).OnElements("p")
	policy.AllowAttrs("class").Matching(regexp.MustCompile(`^(footnotes|footnote-ref)$`)).OnElements("section", "sup")
	policy.AllowElements("section")

	return &Renderer{
		chapter: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithASTTransformers(util.Prioritized(paragraphIDs{}, 100))),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		plain: goldmark.New(
			goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
		),
		policy: policy,
		strict: bluemonday.StrictPolicy(),
	}
}

// RenderChapter format footnote, render và sanitize nội dung chapter
func (r *Renderer) RenderChapter(md string) (string, error) {
	var buf bytes.Buffer
	if err := r.chapter.Convert([]byte(FormatFootnotes(md)), &buf); err != nil {
		return "", fmt.Errorf("render chapter: %w", err)
	}
	return r.policy.Sanitize(buf.String()), nil
}

// RenderPost render forum body; raw HTML trong input bị goldmark bỏ qua
func (r *Renderer) RenderPost(md string) (string, error) {
	var buf bytes.Buffer
	if err := r.plain.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render post: %w", err)
	}
	return r.policy.Sanitize(buf.String()), nil
}

// StripHTML bỏ toàn bộ tag (comment, title)
func (r *Renderer) StripHTML(s string) string {
	return r.strict.Sanitize(s)
}
