package mailer

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// Category names the kind of object a piece of content belongs to, e.g. the
// ultimate parent type of a comment.
type Category string

const (
	CategoryAdminPost Category = "AdminPost"
	CategoryChapter   Category = "Chapter"
	CategoryTag       Category = "Tag"
)

// SafetyMode is the set of categories with image safety mode enabled. The
// zero value protects nothing.
type SafetyMode struct {
	set map[Category]struct{}
}

func NewSafetyMode(categories ...string) SafetyMode {
	set := make(map[Category]struct{}, len(categories))
	for _, c := range categories {
		if c = strings.TrimSpace(c); c != "" {
			set[Category(c)] = struct{}{}
		}
	}
	return SafetyMode{set: set}
}

func (m SafetyMode) Protects(c Category) bool {
	_, ok := m.set[c]
	return ok
}

func (m SafetyMode) Categories() []string {
	out := make([]string, 0, len(m.set))
	for c := range m.set {
		out = append(out, string(c))
	}
	sort.Strings(out)
	return out
}

// FilterImages returns content with every <img> that has a src replaced by
// the escaped URL when cat is protected by mode. Otherwise content is
// returned as is. Markup the tokenizer cannot read as an image, including an
// <img> without a src, is copied through byte for byte. A bare '<' in text is
// written as &lt; so a replacement URL can never close a new tag.
func FilterImages(content string, cat Category, mode SafetyMode) string {
	out, _ := filterImages(content, cat, mode)
	return out
}

func filterImages(content string, cat Category, mode SafetyMode) (string, int) {
	if content == "" || !mode.Protects(cat) {
		return content, 0
	}

	var b strings.Builder
	b.Grow(len(content))
	stripped := 0

	z := html.NewTokenizer(strings.NewReader(content))
	for {
		tt := z.Next()
		// TagName lowercases the buffer in place, so copy first.
		raw := string(z.Raw())
		switch tt {
		case html.ErrorToken:
			// An unfinished tag at the end would swallow whatever follows
			// the fragment in a mail body.
			b.WriteString(escapeLess(raw))
			return b.String(), stripped
		case html.TextToken:
			b.WriteString(escapeLess(raw))
			continue
		case html.StartTagToken, html.SelfClosingTagToken:
			if src, ok := imageSource(z); ok {
				b.WriteString(html.EscapeString(src))
				stripped++
				continue
			}
		}
		b.WriteString(raw)
	}
}

var lessEscaper = strings.NewReplacer("<", "&lt;")

func escapeLess(s string) string { return lessEscaper.Replace(s) }

func imageSource(z *html.Tokenizer) (string, bool) {
	name, hasAttr := z.TagName()
	if string(name) != "img" || !hasAttr {
		return "", false
	}
	for {
		key, val, more := z.TagAttr()
		if string(key) == "src" {
			src := strings.TrimSpace(string(val))
			return src, src != ""
		}
		if !more {
			return "", false
		}
	}
}

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"blockquote": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "hr": true, "tr": true, "pre": true,
}

// PlainText renders an HTML fragment as markup-free text. Elements are
// dropped, images included, and block elements become line breaks.
func PlainText(content string) string {
	if content == "" {
		return ""
	}

	var b strings.Builder
	skip := 0
	z := html.NewTokenizer(strings.NewReader(content))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return tidyLines(b.String())
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch tag := string(name); {
			case tag == "script" || tag == "style":
				skip++
			case blockElements[tag]:
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch tag := string(name); {
			case tag == "script" || tag == "style":
				if skip > 0 {
					skip--
				}
			case blockElements[tag]:
				b.WriteByte('\n')
			}
		}
	}
}

// TextBody is the text counterpart of FilterImages: protected images survive
// as their URL, everything else is plain text.
func TextBody(content string, cat Category, mode SafetyMode) string {
	return PlainText(FilterImages(content, cat, mode))
}

// tidyLines trims every line and collapses runs of blank lines.
func tidyLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := true
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
