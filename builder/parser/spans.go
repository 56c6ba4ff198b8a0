package parser

import (
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// SpanKind identifies what a protected span holds.
type SpanKind int

const (
	CodeBlock SpanKind = iota
	CodeInline
	MathBlock
	MathInline
)

var spanKindNames = [...]string{"CODE_BLOCK", "CODE_INLINE", "MATH_BLOCK", "MATH_INLINE"}

func (k SpanKind) String() string {
	if k < 0 || int(k) >= len(spanKindNames) {
		return "UNKNOWN"
	}
	return spanKindNames[k]
}

// Display reports whether the span renders as its own block.
func (k SpanKind) Display() bool {
	return k == CodeBlock || k == MathBlock
}

// placeholderSentinel frames every placeholder. It is a Private Use Area
// code point, so it does not occur in authored markdown.
const placeholderSentinel = "\uE000"

var strayPlaceholderRe = regexp.MustCompile(`\x{E000}__([A-Z_]+?)_(\d+)__\x{E000}`)

// ProtectedSpan is a region of markdown lifted out before transformation.
type ProtectedSpan struct {
	Kind        SpanKind
	Raw         string // source text including delimiters
	Body        string // text between the delimiters
	Lang        string // fence info string, code blocks only
	Index       int    // discovery order within Kind
	Offset      int    // byte offset of Raw in the original markdown
	Placeholder string
}

// shieldSentinel writes authored sentinels as character references, so they
// cannot forge or split a placeholder.
func shieldSentinel(s string) string {
	return strings.ReplaceAll(s, placeholderSentinel, "&#xE000;")
}

func placeholder(kind SpanKind, index int) string {
	return placeholderSentinel + "__" + kind.String() + "_" + strconv.Itoa(index) + "__" + placeholderSentinel
}

// segment is either literal markdown or an extracted span.
type segment struct {
	text   string
	offset int
	span   *ProtectedSpan
}

// scanner finds the first span in text, returning its byte range.
type scanner func(text string) (start, end int, span ProtectedSpan, ok bool)

// scanners run in priority order. A later scanner only sees text left
// literal by the earlier ones, so a closing delimiter never crosses an
// already protected region.
var scanners = []scanner{scanFence, scanInlineCode, scanDisplayMath, scanInlineMath}

// Extract lifts fenced code, inline code and math out of markdown and
// replaces each with a placeholder. Spans are returned in document order.
// Unterminated delimiters stay in the text as literal characters.
func Extract(markdown string) (string, []ProtectedSpan) {
	segs := []segment{{text: markdown}}
	for _, scan := range scanners {
		segs = splitSegments(segs, scan)
	}

	var counters [len(spanKindNames)]int
	var spans []ProtectedSpan
	var b strings.Builder
	b.Grow(len(markdown))
	for _, sg := range segs {
		if sg.span == nil {
			b.WriteString(shieldSentinel(sg.text))
			continue
		}
		sp := *sg.span
		sp.Index = counters[sp.Kind]
		counters[sp.Kind]++
		sp.Placeholder = placeholder(sp.Kind, sp.Index)
		b.WriteString(sp.Placeholder)
		spans = append(spans, sp)
	}
	return b.String(), spans
}

func splitSegments(segs []segment, scan scanner) []segment {
	out := make([]segment, 0, len(segs))
	for _, sg := range segs {
		if sg.span != nil {
			out = append(out, sg)
			continue
		}
		text, offset := sg.text, sg.offset
		for text != "" {
			start, end, sp, ok := scan(text)
			if !ok {
				break
			}
			if start > 0 {
				out = append(out, segment{text: text[:start], offset: offset})
			}
			sp.Raw = text[start:end]
			sp.Offset = offset + start
			out = append(out, segment{text: sp.Raw, offset: sp.Offset, span: &sp})
			text, offset = text[end:], offset+end
		}
		if text != "" {
			out = append(out, segment{text: text, offset: offset})
		}
	}
	return out
}

func scanFence(text string) (int, int, ProtectedSpan, bool) {
	for pos := 0; pos < len(text); {
		lineEnd := strings.IndexByte(text[pos:], '\n')
		if lineEnd < 0 {
			return 0, 0, ProtectedSpan{}, false
		}
		lineEnd += pos
		line := text[pos:lineEnd]
		info := strings.TrimSpace(strings.TrimPrefix(line, "```"))
		if !strings.HasPrefix(line, "```") || strings.Contains(info, "`") {
			pos = lineEnd + 1
			continue
		}

		bodyStart := lineEnd + 1
		for q := bodyStart; q <= len(text); {
			end := strings.IndexByte(text[q:], '\n')
			if end < 0 {
				end = len(text)
			} else {
				end += q
			}
			if closer := text[q:end]; strings.HasPrefix(closer, "```") && strings.TrimSpace(closer[3:]) == "" {
				body := ""
				if q > bodyStart {
					body = text[bodyStart : q-1]
				}
				lang := info
				if f := strings.Fields(info); len(f) > 0 {
					lang = f[0]
				}
				return pos, end, ProtectedSpan{Kind: CodeBlock, Body: body, Lang: lang}, true
			}
			if end == len(text) {
				break
			}
			q = end + 1
		}
		// no closing fence anywhere below, so no later opener can close either
		return 0, 0, ProtectedSpan{}, false
	}
	return 0, 0, ProtectedSpan{}, false
}

func scanInlineCode(text string) (int, int, ProtectedSpan, bool) {
	for from := 0; from < len(text); {
		i := strings.IndexByte(text[from:], '`')
		if i < 0 {
			return 0, 0, ProtectedSpan{}, false
		}
		i += from
		j := strings.IndexAny(text[i+1:], "`\n")
		if j > 0 && text[i+1+j] == '`' {
			end := i + 1 + j + 1
			return i, end, ProtectedSpan{Kind: CodeInline, Body: text[i+1 : end-1]}, true
		}
		from = i + 1
		if j == 0 {
			from = i + 2 // an empty pair is literal
		}
	}
	return 0, 0, ProtectedSpan{}, false
}

func scanDisplayMath(text string) (int, int, ProtectedSpan, bool) {
	i := strings.Index(text, "$$")
	if i < 0 {
		return 0, 0, ProtectedSpan{}, false
	}
	j := strings.Index(text[i+2:], "$$")
	if j < 0 {
		return 0, 0, ProtectedSpan{}, false
	}
	end := i + 2 + j + 2
	return i, end, ProtectedSpan{Kind: MathBlock, Body: text[i+2 : end-2]}, true
}

func scanInlineMath(text string) (int, int, ProtectedSpan, bool) {
	for from := 0; from < len(text); {
		i := strings.IndexByte(text[from:], '$')
		if i < 0 {
			return 0, 0, ProtectedSpan{}, false
		}
		i += from
		if i+1 < len(text) && text[i+1] == '$' {
			// an unterminated display delimiter stays literal
			from = i + 2
			continue
		}
		j := strings.IndexAny(text[i+1:], "$\n")
		if j > 0 && text[i+1+j] == '$' {
			end := i + 1 + j + 1
			return i, end, ProtectedSpan{Kind: MathInline, Body: text[i+1 : end-1]}, true
		}
		from = i + 1
	}
	return 0, 0, ProtectedSpan{}, false
}

// Restore puts every span's raw source back in place of its placeholder.
func Restore(text string, spans []ProtectedSpan) string {
	return RestoreFunc(text, spans, func(sp ProtectedSpan) string { return sp.Raw })
}

// RestoreFunc replaces each placeholder with render(span).
// Placeholders that match no span are left as an inert marker.
func RestoreFunc(text string, spans []ProtectedSpan, render func(ProtectedSpan) string) string {
	return newRestorer(spans, render, slog.Default()).restore(text)
}

// restorer resolves placeholders for one document. Rendered values are
// computed once, so the same restorer can be applied block by block.
type restorer struct {
	spans    []ProtectedSpan
	order    []int
	rendered []string
	done     []bool
	found    []bool
	render   func(ProtectedSpan) string
	logger   *slog.Logger
}

func newRestorer(spans []ProtectedSpan, render func(ProtectedSpan) string, logger *slog.Logger) *restorer {
	order := make([]int, len(spans))
	for i := range order {
		order[i] = i
	}
	// kinds in reverse extraction order, spans in reverse discovery order
	sort.SliceStable(order, func(a, b int) bool {
		sa, sb := spans[order[a]], spans[order[b]]
		if sa.Kind != sb.Kind {
			return sa.Kind > sb.Kind
		}
		return sa.Index > sb.Index
	})
	return &restorer{
		spans:    spans,
		order:    order,
		rendered: make([]string, len(spans)),
		done:     make([]bool, len(spans)),
		found:    make([]bool, len(spans)),
		render:   render,
		logger:   logger,
	}
}

func (r *restorer) value(i int) string {
	if !r.done[i] {
		r.rendered[i] = r.render(r.spans[i])
		r.done[i] = true
	}
	return r.rendered[i]
}

func (r *restorer) restore(text string) string {
	if !strings.Contains(text, placeholderSentinel) {
		return text
	}
	for _, i := range r.order {
		ph := r.spans[i].Placeholder
		at := strings.Index(text, ph)
		if at < 0 {
			continue
		}
		r.found[i] = true
		text = text[:at] + r.value(i) + text[at+len(ph):]
	}
	return r.inert(text)
}

// inert neutralises placeholders that survived restoration, either because
// they were duplicated or because their span is unknown.
func (r *restorer) inert(text string) string {
	if !strings.Contains(text, placeholderSentinel) {
		return text
	}
	return strayPlaceholderRe.ReplaceAllStringFunc(text, func(m string) string {
		marker := strings.Trim(m, placeholderSentinel)
		if r.logger != nil {
			r.logger.Warn("unresolved protected span placeholder", "placeholder", marker)
		}
		return marker
	})
}

// missing returns spans whose placeholder was never seen by restore.
func (r *restorer) missing() []ProtectedSpan {
	var out []ProtectedSpan
	for i, ok := range r.found {
		if !ok {
			out = append(out, r.spans[i])
		}
	}
	return out
}
