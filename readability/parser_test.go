package readability

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

// articlePage builds a realistic page: metadata, navigation chrome and a
// content div holding several substantial paragraphs.
func articlePage() string {
	para := "The council voted on Tuesday to expand the transit budget, a move officials said would fund new bus lines, station repairs, and accessibility upgrades across the network over the next five years. "
	var body strings.Builder
	body.WriteString(`<div class="content">`)
	for i := 0; i < 4; i++ {
		body.WriteString("<p>" + para + "</p>")
	}
	body.WriteString(`</div>`)

	return `<!DOCTYPE html>
<html lang="en">
<head>
	<title>Council Expands Transit Budget | Example News</title>
	<meta property="og:title" content="Council Expands Transit Budget">
	<meta property="og:site_name" content="Example News">
	<meta name="description" content="The vote passed 7-2 after months of debate.">
	<meta name="author" content="Jane Doe">
</head>
<body>
	<div class="sidebar"><a href="/a">Home</a><a href="/b">Politics</a><a href="/c">Sports</a></div>
	` + body.String() + `
	<div class="comment-section"><p>First! Great article, totally agree with everything said here today.</p></div>
	<div class="footer">Copyright 2024 Example News. All rights reserved.</div>
</body>
</html>`
}

func TestParse_ExtractsArticle(t *testing.T) {
	article, err := NewParser(Options{}).Parse(strings.NewReader(articlePage()), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if !strings.Contains(article.TextContent, "expand the transit budget") {
		t.Error("article text missing")
	}
	if strings.Contains(article.TextContent, "Politics") {
		t.Error("navigation chrome leaked into the article")
	}
	if strings.Contains(article.TextContent, "First!") {
		t.Error("comment section leaked into the article")
	}
	if article.Length != len(article.TextContent) {
		t.Errorf("Length = %d, want len(TextContent) = %d", article.Length, len(article.TextContent))
	}
	if article.Node == nil {
		t.Fatal("Node must be set")
	}
	if tagName(article.Node) != "div" || getAttribute(article.Node, "class") != "page" {
		t.Error("container should be a div.page")
	}
}

func TestParse_ArticleElementWithNav(t *testing.T) {
	first := "Opening paragraph of the piece, laying out the dispute between the two agencies and the timeline both sides have agreed to follow this year."
	rest := "Another substantial paragraph continuing the report, with quotes from officials and a summary of the documents released alongside the decision."

	var page strings.Builder
	page.WriteString(`<html><head><title>Agency Dispute Settled</title></head><body>`)
	page.WriteString(`<nav>`)
	for i := 0; i < 10; i++ {
		page.WriteString(`<a href="/section">Section link</a>`)
	}
	page.WriteString(`</nav><article><p>` + first + `</p>`)
	for i := 0; i < 4; i++ {
		page.WriteString(`<p>` + rest + `</p>`)
	}
	page.WriteString(`</article></body></html>`)

	article, err := NewParser(Options{}).Parse(strings.NewReader(page.String()), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !strings.Contains(article.TextContent, first) || !strings.Contains(article.TextContent, rest) {
		t.Error("article paragraphs missing from the output")
	}
	if strings.Contains(article.TextContent, "Section link") {
		t.Error("nav links leaked into the article")
	}
	if article.Excerpt != first {
		t.Errorf("Excerpt = %q, want the first paragraph", article.Excerpt)
	}
}

func TestParse_Metadata(t *testing.T) {
	article, err := NewParser(Options{}).Parse(strings.NewReader(articlePage()), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if article.Title != "Council Expands Transit Budget" {
		t.Errorf("Title = %q", article.Title)
	}
	if article.SiteName != "Example News" {
		t.Errorf("SiteName = %q", article.SiteName)
	}
	if article.Byline != "Jane Doe" {
		t.Errorf("Byline = %q", article.Byline)
	}
	if article.Excerpt != "The vote passed 7-2 after months of debate." {
		t.Errorf("Excerpt = %q", article.Excerpt)
	}
	if article.Language != "en" {
		t.Errorf("Language = %q", article.Language)
	}
}

func TestParse_ExcerptBackfill(t *testing.T) {
	// No description meta: the excerpt falls back to the first paragraph.
	page := `<html><head><title>T</title></head><body><div class="content">
		<p>` + longText(120) + `</p><p>` + longText(30) + `</p>
	</div></body></html>`

	article, err := NewParser(Options{CharThreshold: 100}).Parse(strings.NewReader(page), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !strings.HasPrefix(article.Excerpt, "word word") {
		t.Errorf("Excerpt should come from the first paragraph, got %q", article.Excerpt)
	}
}

func TestParse_Deterministic(t *testing.T) {
	p := NewParser(Options{})
	a1, err1 := p.Parse(strings.NewReader(articlePage()), nil)
	a2, err2 := p.Parse(strings.NewReader(articlePage()), nil)

	if err1 != nil || err2 != nil {
		t.Fatalf("Parse errors: %v, %v", err1, err2)
	}
	if a1.Content != a2.Content {
		t.Error("repeated runs on the same input must produce identical output")
	}
}

func TestParse_BestEffortShortContent(t *testing.T) {
	page := `<html><body><div><p>Short but real article content, just a sentence.</p></div></body></html>`

	article, err := NewParser(Options{}).Parse(strings.NewReader(page), nil)
	if err != nil {
		t.Fatalf("short content should come back best-effort, got error: %v", err)
	}
	if !strings.Contains(article.TextContent, "Short but real article content") {
		t.Errorf("TextContent = %q", article.TextContent)
	}
	if article.Length >= DefaultCharThreshold {
		t.Errorf("Length = %d, expected a sub-threshold result", article.Length)
	}
}

func TestParse_NoContent(t *testing.T) {
	_, err := NewParser(Options{}).Parse(strings.NewReader(`<html><body></body></html>`), nil)
	if !errors.Is(err, ErrNoContent) {
		t.Errorf("err = %v, want ErrNoContent", err)
	}
}

func TestParseDocument_NoBody(t *testing.T) {
	doc := &html.Node{Type: html.DocumentNode}
	_, err := NewParser(Options{}).ParseDocument(doc, nil)
	if !errors.Is(err, ErrNoBody) {
		t.Errorf("err = %v, want ErrNoBody", err)
	}
}

func TestParse_MaxElemsToParse(t *testing.T) {
	// <html>, <head>, <body>, <div>, <p> = 5 elements.
	page := `<html><head></head><body><div><p>tiny</p></div></body></html>`

	if _, err := NewParser(Options{MaxElemsToParse: 4}).Parse(strings.NewReader(page), nil); !errors.Is(err, ErrTooLarge) {
		t.Errorf("err = %v, want ErrTooLarge", err)
	}

	// Exactly at the limit: the guard passes (extraction itself then
	// fails on the empty-ish page, which is fine).
	_, err := NewParser(Options{MaxElemsToParse: 5}).Parse(strings.NewReader(page), nil)
	if errors.Is(err, ErrTooLarge) {
		t.Errorf("guard should pass at the limit, got %v", err)
	}
}

func TestParse_InputNotMutated(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(articlePage()))
	if err != nil {
		t.Fatal(err)
	}
	before := renderNode(doc)

	if _, err := NewParser(Options{}).ParseDocument(doc, nil); err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}

	if after := renderNode(doc); after != before {
		t.Error("input document was mutated by extraction")
	}
}

func TestParse_RelativeLinksResolved(t *testing.T) {
	page := `<html><body><div class="content">
		<p>` + longText(120) + ` <a href="/next-part">continue reading</a></p>
		<p><img src="charts/budget.png" alt="chart"></p>
	</div></body></html>`
	base, _ := url.Parse("https://example.com/news/2024/budget")

	article, err := NewParser(Options{CharThreshold: 100}).Parse(strings.NewReader(page), base)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if !strings.Contains(article.Content, `href="https://example.com/next-part"`) {
		t.Errorf("relative href not resolved:\n%s", article.Content)
	}
	if !strings.Contains(article.Content, `src="https://example.com/news/2024/charts/budget.png"`) {
		t.Errorf("relative src not resolved:\n%s", article.Content)
	}
}

func TestParse_CustomSerializer(t *testing.T) {
	serializer := func(n *html.Node) (string, error) {
		return "SERIALIZED:" + innerText(findFirst(n, "p")), nil
	}

	article, err := NewParser(Options{Serializer: serializer}).Parse(strings.NewReader(articlePage()), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !strings.HasPrefix(article.Content, "SERIALIZED:") {
		t.Errorf("Content = %q, want serializer output", article.Content)
	}
}

func TestParse_EscalationRecoversOverfilteredContent(t *testing.T) {
	// The only real content sits in a container whose class matches the
	// unlikely pattern, so the strictest attempt strips it. A later
	// attempt without StripUnlikelys must recover it.
	para := "A long and genuinely informative paragraph, with several clauses, plenty of commas, and enough text to convince the scorer that this block is actual article content worth keeping around. "
	page := `<html><body><div class="comment-block">` +
		strings.Repeat("<p>"+para+"</p>", 4) + `</div></body></html>`

	article, err := NewParser(Options{}).Parse(strings.NewReader(page), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !strings.Contains(article.TextContent, "genuinely informative paragraph") {
		t.Error("escalation should recover content removed by the strict pass")
	}
}

func TestParse_KeepClasses(t *testing.T) {
	page := `<html><body><div class="content">
		<p class="lede">` + longText(120) + `</p>
	</div></body></html>`

	article, err := NewParser(Options{CharThreshold: 100, KeepClasses: true}).
		Parse(strings.NewReader(page), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !strings.Contains(article.Content, `class="lede"`) {
		t.Errorf("KeepClasses should retain classes:\n%s", article.Content)
	}
}
