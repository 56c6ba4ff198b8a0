package parser

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/harunosuke/web/builder/models"
	"github.com/harunosuke/web/builder/testutil"
	"github.com/harunosuke/web/builder/utils"
)

const scenario = "# Title\n\nSome $x^2$ math and a\n\n```js\nconst a = 1;\n```\n"

type fakeTypesetter struct {
	available bool
	err       error
	calls     []string
}

func (f *fakeTypesetter) Available() bool { return f.available }

func (f *fakeTypesetter) RenderMath(latex string, display bool) (string, error) {
	f.calls = append(f.calls, latex)
	if f.err != nil {
		return "", f.err
	}
	return `<span class="katex">` + latex + `</span>`, nil
}

func newPipeline(opts ...Option) *Pipeline {
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(os.Stdout, nil)))}, opts...)
	return New(opts...)
}

func TestRenderScenario(t *testing.T) {
	doc := newPipeline().Render(scenario)

	if len(doc.Headings) != 1 || doc.Headings[0] != (models.Heading{ID: "title", Title: "Title", Level: 1}) {
		t.Fatalf("headings = %+v", doc.Headings)
	}
	if !strings.Contains(doc.HTML, "<p>Some $x^2$ math and a</p>") {
		t.Errorf("inline math not left literal:\n%s", doc.HTML)
	}
	if !strings.Contains(doc.HTML, `<span class="token storage-keyword">const</span> a = <span class="token number">1</span>;`) {
		t.Errorf("code not highlighted:\n%s", doc.HTML)
	}

	html := testutil.ParseHTML(t, doc.HTML)
	if html.Find("h1#title").Length() != 1 {
		t.Error("heading id missing")
	}
	if lang, _ := html.Find(".code-wrapper").Attr("data-lang"); lang != "js" {
		t.Errorf("data-lang = %q", lang)
	}
	if html.Find("pre.code-block.language-javascript").Length() != 1 {
		t.Error("canonical language class missing")
	}
	if got := html.Find(".code-lang").Text(); got != "JavaScript" {
		t.Errorf("display name = %q", got)
	}
}

func TestRenderDocumentFields(t *testing.T) {
	doc := newPipeline().Render(scenario)

	if doc.Identity != utils.HashContent("markdown", scenario) {
		t.Errorf("identity = %q", doc.Identity)
	}
	if doc.Raw != scenario {
		t.Error("raw markdown not kept")
	}
	if doc.Count(CodeBlock) != 1 || doc.Count(MathInline) != 1 || doc.Count(MathBlock) != 0 {
		t.Errorf("span counts: code=%d inline=%d block=%d", doc.Count(CodeBlock), doc.Count(MathInline), doc.Count(MathBlock))
	}
	if !doc.HasMath() {
		t.Error("HasMath = false")
	}
	if strings.Contains(doc.HTML, "\uE000") {
		t.Error("placeholder sentinel leaked into output")
	}
}

func TestRenderHeadingWithProtectedSpans(t *testing.T) {
	doc := newPipeline().Render("## Using `fmt` and $n$")

	h := doc.Headings[0]
	if h.Title != "Using fmt and $n$" {
		t.Errorf("title = %q", h.Title)
	}
	if h.ID != "using-fmt-and-n" {
		t.Errorf("id = %q", h.ID)
	}
	if !strings.Contains(doc.HTML, `<code class="inline-code">fmt</code>`) {
		t.Errorf("inline code not restored in heading:\n%s", doc.HTML)
	}
}

func TestRenderCodeIsEscaped(t *testing.T) {
	doc := newPipeline().Render("```html\n<div class=\"a\">&</div>\n```\n\nText with `<b>` code.")

	html := testutil.ParseHTML(t, doc.HTML)
	if html.Find(".post-content div.a, .code-block div.a").Length() != 0 {
		t.Error("code markup was not escaped")
	}
	if got := html.Find("code.inline-code").Text(); got != "<b>" {
		t.Errorf("inline code text = %q", got)
	}
	if got := html.Find("pre code").Text(); got != "<div class=\"a\">&</div>" {
		t.Errorf("code text = %q", got)
	}
}

func TestRenderMathTypesetter(t *testing.T) {
	ts := &fakeTypesetter{available: true}
	doc := newPipeline(WithTypesetter(ts)).Render("Inline $a+b$ costs $5 and $10.\n\n$$\nE = mc^2\n$$")

	if !strings.Contains(doc.HTML, `<span class="math-inline"><span class="katex">a+b</span></span>`) {
		t.Errorf("inline math not typeset:\n%s", doc.HTML)
	}
	if !strings.Contains(doc.HTML, `<div class="math-display"><span class="katex">E = mc^2</span></div>`) {
		t.Errorf("display math not typeset:\n%s", doc.HTML)
	}
	if !strings.Contains(doc.HTML, "$5 and $") {
		t.Errorf("currency typeset as math:\n%s", doc.HTML)
	}
	if len(ts.calls) != 2 {
		t.Errorf("typesetter calls = %v", ts.calls)
	}
}

func TestRenderMathFallback(t *testing.T) {
	tests := []struct {
		name string
		ts   *fakeTypesetter
	}{
		{"unavailable", &fakeTypesetter{available: false}},
		{"failing", &fakeTypesetter{available: true, err: errors.New("parse error")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := newPipeline(WithTypesetter(tt.ts)).Render("see $x < y$ here")
			if !strings.Contains(doc.HTML, "see $x &lt; y$ here") {
				t.Errorf("math not kept literal:\n%s", doc.HTML)
			}
		})
	}
}

func TestRenderSanitizer(t *testing.T) {
	p := newPipeline(WithSanitizer(NewSanitizer()))
	doc := p.Render("<script>alert(1)</script> hi\n\n```js\nlet x = 1;\n```")

	if strings.Contains(doc.HTML, "<script>") {
		t.Errorf("script survived sanitizer:\n%s", doc.HTML)
	}
	html := testutil.ParseHTML(t, doc.HTML)
	if html.Find(".token.storage-keyword").Length() != 1 {
		t.Errorf("token classes stripped:\n%s", doc.HTML)
	}
	if html.Find("button.code-copy").Length() != 1 {
		t.Error("copy button stripped")
	}
}

func TestRenderRawHTMLDisabled(t *testing.T) {
	doc := newPipeline(WithRawHTML(false)).Render("<em>x</em>")
	if !strings.Contains(doc.HTML, "&lt;em&gt;x&lt;/em&gt;") {
		t.Errorf("raw html not escaped:\n%s", doc.HTML)
	}
}

func TestRenderHeadingCallbackAndTOC(t *testing.T) {
	var got []models.Heading
	p := newPipeline(WithHeadingCallback(func(h []models.Heading) { got = h }))
	doc := p.Render("# Top\n\n## Section\n\n## !!!\n\n### Sub\n\n## Section")

	if len(got) != 5 {
		t.Fatalf("callback headings = %+v", got)
	}
	toc := doc.TOC(2, 6)
	ids := make([]string, len(toc))
	for i, h := range toc {
		ids[i] = h.ID
	}
	if strings.Join(ids, ",") != "section,sub,section" {
		t.Errorf("toc ids = %v", ids)
	}
}

func TestRenderConcurrentDocuments(t *testing.T) {
	p := newPipeline()
	inputs := []string{scenario, testutil.SamplePost, "$a$ `b` $c$", "## 見出し\n\n```py\nprint('x')\n```"}
	want := make([]string, len(inputs))
	for i, in := range inputs {
		want[i] = p.Render(in).HTML
	}

	var wg sync.WaitGroup
	for round := 0; round < 8; round++ {
		for i, in := range inputs {
			i, in := i, in
			wg.Add(1)
			go func() {
				defer wg.Done()
				if got := p.Render(in).HTML; got != want[i] {
					t.Errorf("concurrent render of input %d differs", i)
				}
			}()
		}
	}
	wg.Wait()
}

func TestRenderNeverEmptyForMalformedInput(t *testing.T) {
	for _, in := range []string{"```js\nunterminated", "$$ open", "**bold", "> ", "#"} {
		doc := newPipeline().Render(in)
		if strings.TrimSpace(in) != "" && strings.TrimSpace(doc.HTML) == "" && in != "> " {
			t.Errorf("Render(%q) produced no output", in)
		}
	}
}

func TestRenderRawBlockHTMLStable(t *testing.T) {
	p := newPipeline()
	doc := p.Render("<h2 id=\"x\">Raw</h2>\n\n<blockquote>q</blockquote>\n\n<div class=\"note\">n</div>\n\ntext")
	for _, tag := range []string{"<p><h2", "<p><blockquote", "<p><div"} {
		if strings.Contains(doc.HTML, tag) {
			t.Errorf("raw block wrapped (%s):\n%s", tag, doc.HTML)
		}
	}
	again := p.Render(doc.HTML)
	if strings.Contains(again.HTML, "<p><p>") {
		t.Errorf("second pass double-wrapped:\n%s", again.HTML)
	}
}

func TestRenderAuthoredSentinelIsInert(t *testing.T) {
	ts := &fakeTypesetter{available: true}
	forged := "\uE000__MATH_INLINE_0__\uE000"
	doc := newPipeline(WithTypesetter(ts)).Render("a " + forged + " b $x$ and `\uE000`")

	if strings.Contains(doc.HTML, "\uE000") {
		t.Errorf("sentinel reached output:\n%q", doc.HTML)
	}
	forgedAt := strings.Index(doc.HTML, "&#xE000;__MATH_INLINE_0__&#xE000;")
	mathAt := strings.Index(doc.HTML, `<span class="katex">x</span>`)
	if forgedAt < 0 || mathAt < 0 || forgedAt > mathAt {
		t.Errorf("forged placeholder swapped with real span:\n%s", doc.HTML)
	}
	if !strings.Contains(doc.HTML, `<code class="inline-code">&#xE000;</code>`) {
		t.Errorf("sentinel in inline code not shielded:\n%s", doc.HTML)
	}
}

func TestRenderCurrencyMarkedNoMath(t *testing.T) {
	doc := newPipeline().Render("costs $5 and $10 today")
	if !strings.Contains(doc.HTML, `<span class="no-math">$5 and $</span>`) {
		t.Errorf("currency not marked:\n%s", doc.HTML)
	}
}
