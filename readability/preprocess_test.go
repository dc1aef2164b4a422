package readability

import (
	"strings"
	"testing"
)

func TestStripUnlikelyCandidates(t *testing.T) {
	doc := parseDoc(t, `
		<body>
			<div class="sidebar">widgets</div>
			<div class="comment-section">comments</div>
			<div class="article comment">rescued by the allow-list</div>
			<div class="content">real text</div>
			<div class="story" style="display:none">hidden</div>
		</body>`)

	p := NewParser(Options{})
	p.stripUnlikelyCandidates(doc)

	body := documentBody(doc)
	text := innerText(body)

	if strings.Contains(text, "widgets") {
		t.Error("sidebar should be removed")
	}
	if strings.Contains(text, "comments") {
		t.Error("comment section should be removed")
	}
	if !strings.Contains(text, "rescued by the allow-list") {
		t.Error("node matching both patterns should fail open and stay")
	}
	if !strings.Contains(text, "real text") {
		t.Error("content should stay")
	}
	if strings.Contains(text, "hidden") {
		t.Error("hidden element should be removed")
	}
}

func TestReplaceBrs(t *testing.T) {
	doc := parseDoc(t, `<div>intro<br><br>second paragraph text</div>`)

	replaceBrs(doc)

	paras := getElementsByTagName(doc, "p")
	if len(paras) != 1 {
		t.Fatalf("expected 1 paragraph, got %d", len(paras))
	}
	if got := innerText(paras[0]); got != "second paragraph text" {
		t.Errorf("paragraph text = %q, want %q", got, "second paragraph text")
	}
	if got := len(getElementsByTagName(doc, "br")); got != 0 {
		t.Errorf("expected all brs consumed, %d remain", got)
	}
}

func TestReplaceBrs_SingleBrUntouched(t *testing.T) {
	doc := parseDoc(t, `<div>line one<br>line two</div>`)

	replaceBrs(doc)

	if got := len(getElementsByTagName(doc, "br")); got != 1 {
		t.Errorf("single br should survive, got %d brs", got)
	}
	if got := len(getElementsByTagName(doc, "p")); got != 0 {
		t.Errorf("no paragraphs expected, got %d", got)
	}
}

func TestReplaceFonts(t *testing.T) {
	doc := parseDoc(t, `<font color="red" size="3">styled</font>`)

	replaceFonts(doc)

	if findFirst(doc, "font") != nil {
		t.Error("font element should be gone")
	}
	span := findFirst(doc, "span")
	if span == nil {
		t.Fatal("span replacement missing")
	}
	if len(span.Attr) != 0 {
		t.Errorf("span should carry no attributes, got %v", span.Attr)
	}
	if got := innerText(span); got != "styled" {
		t.Errorf("text = %q, want %q", got, "styled")
	}
}

func TestDivsToParagraphs(t *testing.T) {
	doc := parseDoc(t, `
		<body>
			<div id="leaf">just inline text</div>
			<div id="wrapper"><p>wrapped</p></div>
			<div id="block"><ul><li>x</li></ul></div>
		</body>`)

	divsToParagraphs(doc)

	// Childless-of-block div becomes a paragraph.
	found := false
	for _, p := range getElementsByTagName(doc, "p") {
		if getAttribute(p, "id") == "leaf" {
			found = true
		}
	}
	if !found {
		t.Error("leaf div should become a paragraph")
	}

	// A div around a single p unwraps.
	for _, d := range getElementsByTagName(doc, "div") {
		if getAttribute(d, "id") == "wrapper" {
			t.Error("wrapper div should be unwrapped")
		}
	}

	// A div with block children stays a div.
	blockStays := false
	for _, d := range getElementsByTagName(doc, "div") {
		if getAttribute(d, "id") == "block" {
			blockStays = true
		}
	}
	if !blockStays {
		t.Error("div with block children should stay a div")
	}
}

func TestUnwrapNoscriptImages(t *testing.T) {
	doc := parseDoc(t, `<div><noscript><img src="real.jpg" alt="photo"></noscript></div>`)

	unwrapNoscriptImages(doc)
	stripTags(doc, "noscript")

	img := findFirst(doc, "img")
	if img == nil {
		t.Fatal("image should be promoted out of noscript")
	}
	if got := getAttribute(img, "src"); got != "real.jpg" {
		t.Errorf("src = %q, want %q", got, "real.jpg")
	}
	if findFirst(doc, "noscript") != nil {
		t.Error("noscript should be gone")
	}
}

func TestPreprocess_StripsHeadPlumbing(t *testing.T) {
	doc := parseDoc(t, `
		<html><head>
			<script>var x = 1;</script>
			<style>body { color: red }</style>
			<link rel="stylesheet" href="a.css">
			<meta name="description" content="d">
		</head><body><p>content stays here</p></body></html>`)

	p := NewParser(Options{})
	p.preprocess(doc, escalationLevels[0])

	for _, tag := range []string{"script", "style", "link", "meta", "template", "noscript"} {
		if findFirst(doc, tag) != nil {
			t.Errorf("%s should be stripped", tag)
		}
	}
	if !strings.Contains(innerText(doc), "content stays here") {
		t.Error("body content should survive preprocessing")
	}
}
