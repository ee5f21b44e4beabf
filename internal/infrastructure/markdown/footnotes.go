package markdown

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	footnoteDefinition = regexp.MustCompile(`^\[\^([A-Za-z0-9_-]+)\]:[ \t]*(.*)$`)
	footnoteReference  = regexp.MustCompile(`\[\^([A-Za-z0-9_-]+)\]`)
	codeFence          = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})")
)

// footnoteInline render text của định nghĩa footnote; raw HTML được giữ lại để policy của Renderer lọc
var footnoteInline = goldmark.New(
	goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

const footnoteRefHTML = `<sup class="footnote-ref" id="fnref-$1"><a href="#fn-$1">$1</a></sup>`

// FormatFootnotes thay [^n] bằng anchor và gom định nghĩa "[^n]: text" xuống cuối
// thành một section. Code fence và code span giữ nguyên.
func FormatFootnotes(md string) string {
	type def struct{ id, text string }
	var defs []def

	var body strings.Builder
	fence := ""
	for _, line := range strings.SplitAfter(md, "\n") {
		content := strings.TrimRight(line, "\r\n")

		if fence != "" {
			body.WriteString(line)
			if closesFence(content, fence) {
				fence = ""
			}
			continue
		}
		if m := codeFence.FindStringSubmatch(content); m != nil {
			fence = m[1]
			body.WriteString(line)
			continue
		}
		if m := footnoteDefinition.FindStringSubmatch(content); m != nil {
			defs = append(defs, def{id: m[1], text: strings.TrimSpace(m[2])})
			continue
		}
		body.WriteString(replaceOutsideCode(line))
	}

	if len(defs) == 0 {
		return body.String()
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(body.String(), "\n"))
	b.WriteString("\n\n<section class=\"footnotes\">\n<ol>\n")
	for _, d := range defs {
		fmt.Fprintf(&b, "<li id=\"fn-%s\">%s <a href=\"#fnref-%s\">↩</a></li>\n", d.id, renderFootnoteText(d.text), d.id)
	}
	b.WriteString("</ol>\n</section>\n")
	return b.String()
}

func closesFence(line, fence string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, fence) && strings.Trim(trimmed, fence[:1]) == ""
}

// replaceOutsideCode thay reference trong một dòng, bỏ qua các code span `...`
func replaceOutsideCode(line string) string {
	var b strings.Builder
	i := 0
	for i < len(line) {
		j := strings.IndexByte(line[i:], '`')
		if j < 0 {
			b.WriteString(footnoteReference.ReplaceAllString(line[i:], footnoteRefHTML))
			break
		}
		start := i + j
		// \` là backtick thường
		if start > 0 && line[start-1] == '\\' {
			b.WriteString(footnoteReference.ReplaceAllString(line[i:start+1], footnoteRefHTML))
			i = start + 1
			continue
		}
		b.WriteString(footnoteReference.ReplaceAllString(line[i:start], footnoteRefHTML))

		n := backtickRun(line, start)
		end := closingRun(line, start+n, n)
		if end < 0 {
			b.WriteString(line[start : start+n])
			i = start + n
			continue
		}
		b.WriteString(line[start : end+n])
		i = end + n
	}
	return b.String()
}

func backtickRun(s string, at int) int {
	n := 0
	for at+n < len(s) && s[at+n] == '`' {
		n++
	}
	return n
}

// closingRun tìm chuỗi backtick dài đúng n tính từ from, -1 nếu không có
func closingRun(s string, from, n int) int {
	for from < len(s) {
		k := strings.IndexByte(s[from:], '`')
		if k < 0 {
			return -1
		}
		p := from + k
		m := backtickRun(s, p)
		if m == n {
			return p
		}
		from = p + m
	}
	return -1
}

// renderFootnoteText render Markdown inline của định nghĩa, bỏ thẻ <p> bao ngoài
func renderFootnoteText(text string) string {
	var buf bytes.Buffer
	if err := footnoteInline.Convert([]byte(text), &buf); err != nil {
		return html.EscapeString(text)
	}
	out := strings.TrimSpace(buf.String())
	out = strings.TrimPrefix(out, "<p>")
	return strings.TrimSuffix(out, "</p>")
}
