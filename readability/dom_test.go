package readability

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func parseDoc(t *testing.T, src string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestGetAttribute_CaseInsensitive(t *testing.T) {
	doc := parseDoc(t, `<div DATA-Foo="bar" class="x"></div>`)
	div := findFirst(doc, "div")

	if got := getAttribute(div, "data-foo"); got != "bar" {
		t.Errorf("getAttribute(data-foo) = %q, want %q", got, "bar")
	}
	if got := getAttribute(div, "missing"); got != "" {
		t.Errorf("getAttribute(missing) = %q, want empty", got)
	}
}

func TestSetAttribute_OverwritesExisting(t *testing.T) {
	div := createElement("div")
	setAttribute(div, "class", "a")
	setAttribute(div, "class", "b")

	if len(div.Attr) != 1 {
		t.Fatalf("expected 1 attribute, got %d", len(div.Attr))
	}
	if got := getAttribute(div, "class"); got != "b" {
		t.Errorf("class = %q, want %q", got, "b")
	}
}

func TestInnerText_NormalizesWhitespace(t *testing.T) {
	doc := parseDoc(t, "<p>  hello \n\n  <b>big</b>   world  </p>")
	p := findFirst(doc, "p")

	if got := innerText(p); got != "hello big world" {
		t.Errorf("innerText = %q, want %q", got, "hello big world")
	}
}

func TestCloneNode_Independent(t *testing.T) {
	doc := parseDoc(t, `<div id="a"><p>text</p></div>`)
	div := findFirst(doc, "div")
	clone := cloneNode(div)

	// Mutating the clone must not affect the original.
	setAttribute(clone, "id", "changed")
	detachNode(clone.FirstChild)

	if got := getAttribute(div, "id"); got != "a" {
		t.Errorf("original id changed to %q", got)
	}
	if findFirst(div, "p") == nil {
		t.Error("original lost its paragraph after clone mutation")
	}
	if clone.Parent != nil {
		t.Error("clone should be detached")
	}
}

func TestGetElementsByTagName(t *testing.T) {
	doc := parseDoc(t, `<div><p>a</p><span>b</span><p>c</p></div>`)

	if got := len(getElementsByTagName(doc, "p")); got != 2 {
		t.Errorf("p count = %d, want 2", got)
	}
	// Wildcard counts html, head, body, div, p, span, p.
	if got := len(getElementsByTagName(doc, "*")); got != 7 {
		t.Errorf("* count = %d, want 7", got)
	}
}

func TestUnwrapNode(t *testing.T) {
	doc := parseDoc(t, `<div><span><b>x</b>text</span></div>`)
	span := findFirst(doc, "span")
	div := findFirst(doc, "div")

	unwrapNode(span)

	if findFirst(doc, "span") != nil {
		t.Error("span should be gone")
	}
	if findFirst(div, "b") == nil {
		t.Error("span children should be promoted into the div")
	}
	if got := innerText(div); got != "xtext" {
		t.Errorf("innerText = %q, want %q", got, "xtext")
	}
}

func TestLinkDensity(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want float64
	}{
		{"no links", `<div>plain text here</div>`, 0},
		{"all linked", `<div><a href="#">everything</a></div>`, 1},
		{"no text", `<div></div>`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseDoc(t, tt.src)
			div := findFirst(doc, "div")
			if got := linkDensity(div); got != tt.want {
				t.Errorf("linkDensity = %v, want %v", got, tt.want)
			}
		})
	}

	// Half the text inside a link.
	doc := parseDoc(t, `<div>12345<a href="#">67890</a></div>`)
	if got := linkDensity(findFirst(doc, "div")); got != 0.5 {
		t.Errorf("linkDensity = %v, want 0.5", got)
	}
}

func TestCountElements(t *testing.T) {
	doc := parseDoc(t, `<div><p>a</p><p>b</p></div>`)
	// html, head, body, div, p, p
	if got := countElements(doc); got != 6 {
		t.Errorf("countElements = %d, want 6", got)
	}
}

func TestIsElementHidden(t *testing.T) {
	doc := parseDoc(t, `
		<div id="styled" style="display: none"></div>
		<div id="vis" style="visibility:hidden"></div>
		<div id="attr" hidden></div>
		<div id="shown" style="color: red"></div>`)

	for _, tt := range []struct {
		id   string
		want bool
	}{
		{"styled", true},
		{"vis", true},
		{"attr", true},
		{"shown", false},
	} {
		var node *html.Node
		for _, d := range getElementsByTagName(doc, "div") {
			if getAttribute(d, "id") == tt.id {
				node = d
			}
		}
		if node == nil {
			t.Fatalf("div#%s not found", tt.id)
		}
		if got := isElementHidden(node); got != tt.want {
			t.Errorf("isElementHidden(#%s) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestCharCount(t *testing.T) {
	doc := parseDoc(t, `<p>one, two, three</p>`)
	if got := charCount(findFirst(doc, "p"), ","); got != 2 {
		t.Errorf("charCount = %d, want 2", got)
	}
}

func TestReplaceNode(t *testing.T) {
	doc := parseDoc(t, `<div><span>old</span></div>`)
	span := findFirst(doc, "span")
	p := createElement("p")
	p.AppendChild(&html.Node{Type: html.TextNode, Data: "new"})

	replaceNode(span, p)

	div := findFirst(doc, "div")
	if findFirst(div, "span") != nil {
		t.Error("old node still present")
	}
	if got := innerText(div); got != "new" {
		t.Errorf("innerText = %q, want %q", got, "new")
	}
}
