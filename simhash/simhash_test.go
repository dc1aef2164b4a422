package simhash

import (
	"testing"
)

func TestFingerprint_Deterministic(t *testing.T) {
	text := "breaking news city council approves new transit budget"
	if Fingerprint(text) != Fingerprint(text) {
		t.Error("identical texts produced different fingerprints")
	}
}

func TestFingerprint_NearDuplicateTitles(t *testing.T) {
	// The sanitizer relies on restated titles landing within a small
	// Hamming distance of the page title.
	title := "City Council Approves New Transit Budget"
	heading := "City Council Approves The New Transit Budget"

	dist := Distance(Fingerprint(title), Fingerprint(heading))
	if dist > 10 {
		t.Errorf("near-duplicate titles have too large distance: %d", dist)
	}
}

func TestFingerprint_UnrelatedTexts(t *testing.T) {
	fp1 := Fingerprint("city council approves new transit budget")
	fp2 := Fingerprint("quantum entanglement explained for undergraduate physicists")

	if dist := Distance(fp1, fp2); dist < 5 {
		t.Errorf("unrelated texts have too small distance: %d", dist)
	}
}

func TestFingerprint_EmptyAndWhitespace(t *testing.T) {
	for _, in := range []string{"", "   \t\n  "} {
		if fp := Fingerprint(in); fp != 0 {
			t.Errorf("Fingerprint(%q) = %064b, want 0", in, fp)
		}
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b uint64
		want int
	}{
		{"identical", 0xFF, 0xFF, 0},
		{"all bits differ", 0, ^uint64(0), 64},
		{"one bit", 0, 1, 1},
		{"two bits", 0, 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance(tt.a, tt.b); got != tt.want {
				t.Errorf("Distance(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilar_ThresholdBoundary(t *testing.T) {
	fp1 := Fingerprint("the quick brown fox")
	fp2 := Fingerprint("a completely different text about nothing related")
	dist := Distance(fp1, fp2)

	if Similar(fp1, fp2, dist-1) {
		t.Errorf("should not be similar below the distance (%d)", dist)
	}
	if !Similar(fp1, fp2, dist) {
		t.Errorf("should be similar at threshold equal to distance (%d)", dist)
	}
}

func TestFingerprintDOM_StructureOnly(t *testing.T) {
	// Same structure, different text: fingerprints must match.
	html1 := `<html><head><title>Page 1</title></head><body><div><h1>Hello</h1><p>World</p></div></body></html>`
	html2 := `<html><head><title>Page 2</title></head><body><div><h1>Hi</h1><p>Earth</p></div></body></html>`

	if FingerprintDOM(html1) != FingerprintDOM(html2) {
		t.Error("identical DOM structures should produce the same fingerprint")
	}
}

func TestFingerprintDOM_DifferentStructures(t *testing.T) {
	html1 := `<html><body><div><h1>Title</h1><p>Text</p><p>More text</p></div></body></html>`
	html2 := `<html><body><table><tr><td>A</td><td>B</td></tr><tr><td>C</td><td>D</td></tr></table></body></html>`

	if dist := Distance(FingerprintDOM(html1), FingerprintDOM(html2)); dist < 3 {
		t.Errorf("different DOM structures should have larger distance, got: %d", dist)
	}
}

func TestFingerprintDOM_DegenerateInputs(t *testing.T) {
	if fp := FingerprintDOM(""); fp != 0 {
		t.Errorf("empty HTML should produce fingerprint 0, got: %064b", fp)
	}
	if fp := FingerprintDOM("just some plain text with no tags"); fp != 0 {
		t.Errorf("tagless input should produce fingerprint 0, got: %064b", fp)
	}
	if fp := FingerprintDOM("<br/>"); fp == 0 {
		t.Error("single tag should still produce a non-zero fingerprint")
	}
}

func TestExtractTags(t *testing.T) {
	tags := extractTags(`<html><head><title>Test</title></head><body><div><p>Hello</p></div></body></html>`)

	expected := []string{"html", "head", "title", "body", "div", "p"}
	if len(tags) != len(expected) {
		t.Fatalf("expected %d tags, got %d: %v", len(expected), len(tags), tags)
	}
	for i, tag := range tags {
		if tag != expected[i] {
			t.Errorf("tag[%d] = %q, want %q", i, tag, expected[i])
		}
	}
}

func TestMakeShingles(t *testing.T) {
	shingles := makeShingles([]string{"a", "b", "c", "d"}, 3)
	expected := []string{"a_b_c", "b_c_d"}

	if len(shingles) != len(expected) {
		t.Fatalf("expected %d shingles, got %d: %v", len(expected), len(shingles), shingles)
	}
	for i, s := range shingles {
		if s != expected[i] {
			t.Errorf("shingle[%d] = %q, want %q", i, s, expected[i])
		}
	}

	if got := makeShingles([]string{"a", "b"}, 3); got != nil {
		t.Errorf("expected nil for fewer tokens than n, got: %v", got)
	}
}
