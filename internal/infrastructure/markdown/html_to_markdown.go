package markdown

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	spaceRun       = regexp.MustCompile(`[ \t\r\n\f\x{00a0}]+`)
	blankLines     = regexp.MustCompile(`\n{3,}`)
	cssClassRule   = regexp.MustCompile(`\.([A-Za-z0-9_-]+)\{([^}]*)\}`)
	boldStyle      = regexp.MustCompile(`font-weight:\s*(bold|[6-9]00)`)
	italicStyle    = regexp.MustCompile(`font-style:\s*italic`)
	footnoteRefID  = regexp.MustCompile(`^#ftnt(\d+)$`)
	footnoteDefID  = regexp.MustCompile(`^ftnt(\d+)$`)
	footnoteDefGap = regexp.MustCompile(`(\[\^\d+\]:) +`)
	orderedStart   = regexp.MustCompile(`(?m)^([ \t]*\d+)([.)])`)
	markerStart    = regexp.MustCompile(`(?m)^([ \t]*)([#+=-])`)
)

// mdSpecial escape ký tự Markdown trong text node để chữ trong tài liệu giữ nguyên nghĩa đen
var mdSpecial = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", `*`, `\*`, `_`, `\_`,
	`[`, `\[`, `]`, `\]`, `<`, `\<`, `>`, `\>`, `~`, `\~`,
)

// converter giữ CSS class → declarations lấy từ <style> của bản export Google Docs
type converter struct {
	classStyles map[string]string
}

// HTMLToMarkdown chuyển HTML (bản export Google Docs hoặc HTML thường) sang Markdown
func HTMLToMarkdown(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	cv := &converter{classStyles: map[string]string{}}
	doc.Find("style").Each(func(_ int, s *goquery.Selection) {
		for _, m := range cssClassRule.FindAllStringSubmatch(s.Text(), -1) {
			cv.classStyles[m[1]] += m[2] + ";"
		}
	})

	var b strings.Builder
	cv.blocks(doc.Find("body"), &b)

	out := footnoteDefGap.ReplaceAllString(b.String(), "$1 ")
	out = blankLines.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out), nil
}

func (cv *converter) blocks(s *goquery.Selection, b *strings.Builder) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		switch name := goquery.NodeName(c); name {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			if text := blockText(cv.inline(c)); text != "" {
				level := int(name[1] - '0')
				b.WriteString(strings.Repeat("#", level) + " " + text + "\n\n")
			}
		case "p":
			if text := blockText(cv.inline(c)); text != "" {
				b.WriteString(text + "\n\n")
			}
		case "ul", "ol":
			cv.list(c, b, 0)
			b.WriteString("\n")
		case "blockquote":
			var inner strings.Builder
			cv.blocks(c, &inner)
			for _, line := range strings.Split(strings.TrimSpace(inner.String()), "\n") {
				if line == "" {
					b.WriteString(">\n")
				} else {
					b.WriteString("> " + line + "\n")
				}
			}
			b.WriteString("\n")
		case "hr":
			b.WriteString("---\n\n")
		case "div", "section", "article", "main", "body", "table", "tbody", "thead", "tr", "td", "th":
			cv.blocks(c, b)
		case "script", "style", "head", "title", "meta", "#comment":
		default:
			if text := blockText(cv.inlineNode(c)); text != "" {
				b.WriteString(text + "\n\n")
			}
		}
	})
}

func (cv *converter) list(s *goquery.Selection, b *strings.Builder, depth int) {
	ordered := goquery.NodeName(s) == "ol"
	indent := strings.Repeat("    ", depth)
	n := 1

	s.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		var text strings.Builder
		var nested []*goquery.Selection
		li.Contents().Each(func(_ int, c *goquery.Selection) {
			switch goquery.NodeName(c) {
			case "ul", "ol":
				nested = append(nested, c)
			default:
				text.WriteString(cv.inlineNode(c))
			}
		})

		marker := "- "
		if ordered {
			marker = fmt.Sprintf("%d. ", n)
			n++
		}
		b.WriteString(indent + marker + blockText(text.String()) + "\n")
		for _, sub := range nested {
			cv.list(sub, b, depth+1)
		}
	})
}

func (cv *converter) inline(s *goquery.Selection) string {
	var b strings.Builder
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		b.WriteString(cv.inlineNode(c))
	})
	return b.String()
}

func (cv *converter) inlineNode(c *goquery.Selection) string {
	switch goquery.NodeName(c) {
	case "#text":
		return mdSpecial.Replace(spaceRun.ReplaceAllString(c.Text(), " "))
	case "strong", "b":
		return wrap("**", cv.inline(c))
	case "em", "i":
		return wrap("*", cv.inline(c))
	case "s", "del", "strike":
		return wrap("~~", cv.inline(c))
	case "code":
		return codeSpan(c.Text())
	case "br":
		return "  \n"
	case "span":
		inner := cv.inline(c)
		style := cv.styleOf(c)
		if italicStyle.MatchString(style) {
			inner = wrap("*", inner)
		}
		if boldStyle.MatchString(style) {
			inner = wrap("**", inner)
		}
		return inner
	case "a":
		return cv.anchor(c)
	case "script", "style", "img", "#comment":
		return ""
	case "p", "div":
		return cv.inline(c) + " "
	default:
		return cv.inline(c)
	}
}

func (cv *converter) anchor(c *goquery.Selection) string {
	href, _ := c.Attr("href")
	id, _ := c.Attr("id")

	// Google Docs footnote: định nghĩa có id="ftntN", tham chiếu có href="#ftntN"
	if m := footnoteDefID.FindStringSubmatch(id); m != nil {
		return "[^" + m[1] + "]: "
	}
	if m := footnoteRefID.FindStringSubmatch(href); m != nil {
		return "[^" + m[1] + "]"
	}

	text := cv.inline(c)
	if href == "" || strings.HasPrefix(href, "#") || strings.TrimSpace(text) == "" {
		return text
	}
	return "[" + strings.TrimSpace(text) + "](" + unwrapGoogleRedirect(href) + ")"
}

func (cv *converter) styleOf(c *goquery.Selection) string {
	style, _ := c.Attr("style")
	if class, ok := c.Attr("class"); ok {
		for _, name := range strings.Fields(class) {
			style += ";" + cv.classStyles[name]
		}
	}
	return style
}

// blockText trim và escape marker đầu dòng ("# ", "1. ", "- ", "+ ", "=") có sẵn trong text
func blockText(s string) string {
	s = strings.TrimSpace(s)
	s = orderedStart.ReplaceAllString(s, `$1\$2`)
	return markerStart.ReplaceAllString(s, `$1\$2`)
}

// codeSpan chọn số backtick lớn hơn chuỗi backtick dài nhất bên trong
func codeSpan(s string) string {
	s = spaceRun.ReplaceAllString(s, " ")
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	longest, run := 0, 0
	for _, r := range trimmed {
		if r == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	fence := strings.Repeat("`", longest+1)
	code := fence + trimmed + fence
	if strings.HasPrefix(trimmed, "`") || strings.HasSuffix(trimmed, "`") {
		code = fence + " " + trimmed + " " + fence
	}
	lead := s[:strings.Index(s, trimmed)]
	return lead + code + s[len(lead)+len(trimmed):]
}

// wrap đặt marker quanh phần text, giữ khoảng trắng đầu/cuối ở ngoài marker
func wrap(marker, inner string) string {
	trimmed := strings.TrimSpace(inner)
	if trimmed == "" {
		return inner
	}
	lead := inner[:strings.Index(inner, trimmed)]
	trail := inner[len(lead)+len(trimmed):]
	return lead + marker + trimmed + marker + trail
}

// unwrapGoogleRedirect: https://www.google.com/url?q=<real>&sa=D → <real>
func unwrapGoogleRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if strings.HasSuffix(u.Host, "google.com") && u.Path == "/url" {
		if q := u.Query().Get("q"); q != "" {
			return q
		}
	}
	return href
}
