package parser

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/harunosuke/web/builder/models"
)

// BlockKind classifies a transformed block.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockQuote
	BlockRaw
	BlockList
)

// Block is one top-level element of a transformed document.
type Block struct {
	Kind    BlockKind
	HTML    string
	Heading *models.Heading
}

var (
	headingRe          = regexp.MustCompile(`^(#{1,6})[ \t]+(.+?)[ \t]*$`)
	quoteRe            = regexp.MustCompile(`^>[ \t]?(.*)$`)
	blockPlaceholderRe = regexp.MustCompile(`^\x{E000}__(?:CODE|MATH)_BLOCK_\d+__\x{E000}$`)
	rawBlockRe         = regexp.MustCompile(`(?i)^</?(?:h[1-6]|p|blockquote|div|ul|ol|li|dl|dt|dd|table|thead|tbody|tfoot|tr|th|td|pre|figure|figcaption|iframe|hr|section|article|aside|details|summary|nav|header|footer|video|audio|picture)(?:[\s/>]|$)`)
	bulletRe           = regexp.MustCompile(`^[-*+][ \t]+(.+)$`)
	orderedRe          = regexp.MustCompile(`^(\d{1,9})[.)][ \t]+(.+)$`)
	linkRe             = regexp.MustCompile(`\[([^\]\n]+)\]\(([^)\s"<>]+)\)`)
	inlineCodeRe       = regexp.MustCompile("`([^`\n]+)`")
	boldRe             = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicRe           = regexp.MustCompile(`\*([^*\n]+?)\*`)
	entityRe           = regexp.MustCompile(`^&(?:[A-Za-z][A-Za-z0-9]{1,31}|#[0-9]{1,7}|#[xX][0-9A-Fa-f]{1,6});`)
)

// Transformer converts sanitized markdown (protected spans already replaced
// by placeholders) into HTML blocks.
type Transformer struct {
	// Resolve maps heading source text back to what the reader sees, so ids
	// are derived from restored titles. Identity when nil.
	Resolve func(string) string
	// RawHTML keeps author-written tags; otherwise < and > are escaped.
	RawHTML bool
}

// Transform splits src into blocks and returns them with the headings in
// document order.
func (t *Transformer) Transform(src string) ([]Block, []models.Heading) {
	src = strings.ReplaceAll(src, "\r\n", "\n")

	var (
		blocks   []Block
		headings []models.Heading
		para     []string
		items    []string
		ordered  bool
		start    string
	)
	flushPara := func() {
		if len(para) == 0 {
			return
		}
		body := strings.TrimSpace(t.inline(strings.Join(para, "\n")))
		para = para[:0]
		if body == "" {
			return
		}
		blocks = append(blocks, Block{Kind: BlockParagraph, HTML: "<p>" + body + "</p>"})
	}
	flushList := func() {
		if len(items) == 0 {
			return
		}
		blocks = append(blocks, t.list(items, ordered, start))
		items = items[:0]
	}
	flush := func() {
		flushPara()
		flushList()
	}
	addItem := func(isOrdered bool, num, text string) {
		flushPara()
		if len(items) > 0 && ordered != isOrdered {
			flushList()
		}
		if len(items) == 0 {
			ordered, start = isOrdered, num
		}
		items = append(items, text)
	}

	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}
		if m := headingRe.FindStringSubmatch(line); m != nil {
			flush()
			b := t.heading(len(m[1]), m[2])
			blocks = append(blocks, b)
			headings = append(headings, *b.Heading)
			continue
		}
		if m := quoteRe.FindStringSubmatch(line); m != nil {
			flush()
			if body := strings.TrimSpace(t.inline(m[1])); body != "" {
				blocks = append(blocks, Block{Kind: BlockQuote, HTML: "<blockquote>" + body + "</blockquote>"})
			}
			continue
		}
		if blockPlaceholderRe.MatchString(trimmed) {
			flush()
			blocks = append(blocks, Block{Kind: BlockRaw, HTML: trimmed})
			continue
		}
		if t.RawHTML && rawBlockRe.MatchString(trimmed) {
			flush()
			blocks = append(blocks, Block{Kind: BlockRaw, HTML: t.inline(trimmed)})
			continue
		}
		if m := bulletRe.FindStringSubmatch(trimmed); m != nil {
			addItem(false, "", m[1])
			continue
		}
		if m := orderedRe.FindStringSubmatch(trimmed); m != nil {
			addItem(true, m[1], m[2])
			continue
		}
		if len(items) > 0 {
			// lazy continuation
			items[len(items)-1] += "\n" + trimmed
			continue
		}
		para = append(para, strings.TrimRight(line, " \t"))
	}
	flush()

	return blocks, headings
}

// Render joins blocks into one HTML fragment.
func Render(blocks []Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b.HTML == "" || b.HTML == "<p></p>" {
			continue
		}
		parts = append(parts, b.HTML)
	}
	return strings.Join(parts, "\n")
}

// list renders collected items as one ul or ol. An ordered list keeps its
// first number.
func (t *Transformer) list(items []string, ordered bool, start string) Block {
	tag := "ul"
	var b strings.Builder
	if ordered {
		tag = "ol"
		n, _ := strconv.Atoi(start)
		if n != 1 {
			fmt.Fprintf(&b, `<ol start="%d">`, n)
		} else {
			b.WriteString("<ol>")
		}
	} else {
		b.WriteString("<ul>")
	}
	for _, it := range items {
		b.WriteString("<li>" + strings.TrimSpace(t.inline(it)) + "</li>")
	}
	b.WriteString("</" + tag + ">")
	return Block{Kind: BlockList, HTML: b.String()}
}

func (t *Transformer) heading(level int, title string) Block {
	display := title
	if t.Resolve != nil {
		display = t.Resolve(title)
	}
	plain := stripInline(display)
	h := &models.Heading{ID: Slug(plain), Title: plain, Level: level}

	var b strings.Builder
	fmt.Fprintf(&b, "<h%d", level)
	if h.ID != "" {
		fmt.Fprintf(&b, ` id="%s"`, html.EscapeString(h.ID))
	}
	fmt.Fprintf(&b, ` class="heading heading-%d">%s<span class="heading-underline" aria-hidden="true"></span></h%d>`,
		level, t.inline(title), level)

	return Block{Kind: BlockHeading, HTML: b.String(), Heading: h}
}

// inline applies escaping, code spans and emphasis to one run of text.
func (t *Transformer) inline(s string) string {
	s = escapeText(s, !t.RawHTML)

	// emphasis is applied only between code spans
	var b strings.Builder
	last := 0
	for _, m := range inlineCodeRe.FindAllStringSubmatchIndex(s, -1) {
		b.WriteString(emphasis(links(s[last:m[0]])))
		b.WriteString(`<code class="inline-code">`)
		b.WriteString(s[m[2]:m[3]])
		b.WriteString(`</code>`)
		last = m[1]
	}
	b.WriteString(emphasis(links(s[last:])))
	return b.String()
}

// links turns [text](url) into anchors. Script-capable schemes keep only
// the text.
func links(s string) string {
	if !strings.Contains(s, "](") {
		return s
	}
	return linkRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := linkRe.FindStringSubmatch(m)
		text, href := sub[1], sub[2]
		scheme := strings.ToLower(href)
		if strings.HasPrefix(scheme, "javascript:") || strings.HasPrefix(scheme, "vbscript:") || strings.HasPrefix(scheme, "data:") {
			return text
		}
		return `<a href="` + href + `">` + text + `</a>`
	})
}

func emphasis(s string) string {
	if !strings.Contains(s, "*") {
		return s
	}
	s = boldRe.ReplaceAllString(s, "<strong>${1}</strong>")
	return italicRe.ReplaceAllString(s, "<em>${1}</em>")
}

// stripInline removes emphasis and code markers, leaving the text a reader sees.
func stripInline(s string) string {
	s = inlineCodeRe.ReplaceAllString(s, "${1}")
	s = linkRe.ReplaceAllString(s, "${1}")
	s = boldRe.ReplaceAllString(s, "${1}")
	s = italicRe.ReplaceAllString(s, "${1}")
	return strings.TrimSpace(s)
}

// escapeText escapes bare ampersands, and angle brackets when tags is set.
// Existing character references are kept as written.
func escapeText(s string, tags bool) string {
	if !strings.ContainsAny(s, "&<>") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 16)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '&':
			end := i + 40
			if end > len(s) {
				end = len(s)
			}
			if entityRe.MatchString(s[i:end]) {
				b.WriteByte(c)
			} else {
				b.WriteString("&amp;")
			}
		case c == '<' && tags:
			b.WriteString("&lt;")
		case c == '>' && tags:
			b.WriteString("&gt;")
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
