package readability

import (
	"log/slog"
	"math"

	"golang.org/x/net/html"
)

// Tuned heuristic constants. These numbers were validated against a
// regression corpus of real pages; treat them as data, not code.
const (
	// lengthScoreCap bounds the text-length contribution to the base
	// score (one point per 100 characters, at most 3).
	lengthScoreCap = 3

	// classWeight is the adjustment applied for positive/negative
	// class or id matches when the WeightClasses flag is active.
	classWeight = 25

	// propagationDepth is how many ancestor levels receive a share of
	// a scored node's base score.
	propagationDepth = 5

	// promotionFactor: the top candidate's parent takes over while its
	// own score is at least top/promotionFactor.
	promotionFactor = 3.0

	// promotionClimbLimit bounds how many levels ancestor promotion may
	// climb.
	promotionClimbLimit = 3

	// siblingScoreFloor and siblingScoreFactor define the sibling
	// inclusion threshold: max(floor, top*factor).
	siblingScoreFloor  = 10.0
	siblingScoreFactor = 0.2

	// siblingMaxLinkDensity is the cutoff above which a long paragraph
	// sibling is still rejected as navigation.
	siblingMaxLinkDensity = 0.25

	// minParagraphLength: paragraph-equivalents shorter than this score
	// nothing at all.
	minParagraphLength = 25
)

// candidate pairs a node with its final (link-density adjusted) score.
// Ranking ties break by encounter order, so selection is deterministic
// for identical input and flags.
type candidate struct {
	node  *html.Node
	score float64
	order int
}

// scorer holds the transient per-attempt scoring state. Scores live in
// an external map keyed by node pointer, never on the nodes themselves,
// and are discarded with the scorer when the attempt ends.
type scorer struct {
	scores map[*html.Node]float64
	order  map[*html.Node]int
	flags  flags
	opts   Options
	seq    int
}

func newScorer(f flags, opts Options) *scorer {
	return &scorer{
		scores: make(map[*html.Node]float64),
		order:  make(map[*html.Node]int),
		flags:  f,
		opts:   opts,
	}
}

// scoreDocument walks the preprocessed document, scores every eligible
// paragraph-like node, propagates scores to ancestors and returns the
// ranked top-N candidates. Returns nil when nothing scored above zero.
func (s *scorer) scoreDocument(doc *html.Node) []candidate {
	for _, n := range getElementsByTagName(doc, "*") {
		if !scoreableTags[tagName(n)] {
			continue
		}
		text := innerText(n)
		if len(text) < minParagraphLength {
			continue
		}

		// Base score: 1 point, +1 per comma, +1 per 100 chars capped.
		score := 1.0
		score += float64(charCount(n, ","))
		score += math.Min(math.Floor(float64(len(text))/100), lengthScoreCap)

		s.propagate(n, score)
	}

	return s.rank()
}

// propagate adds base score to the node's ancestors: the parent in
// full, the grandparent at half, and each level beyond divided by
// (level × 2). Ancestors accumulate contributions from every descendant
// that scores them.
func (s *scorer) propagate(n *html.Node, base float64) {
	level := 0
	for ancestor := n.Parent; ancestor != nil && level < propagationDepth; ancestor = ancestor.Parent {
		if ancestor.Type != html.ElementNode || tagName(ancestor) == "html" {
			break
		}
		s.initialize(ancestor)
		switch level {
		case 0:
			s.scores[ancestor] += base
		case 1:
			s.scores[ancestor] += base / 2
		default:
			s.scores[ancestor] += base / float64(level*2)
		}
		level++
	}
}

// initialize seeds a node's score entry on first touch: a structural
// tag adjustment plus the ±classWeight class/id adjustment when the
// WeightClasses flag is active. Once initialised, a score only grows.
func (s *scorer) initialize(n *html.Node) {
	if _, ok := s.scores[n]; ok {
		return
	}
	score := tagScoreAdjustment[tagName(n)]
	if s.flags.isSet(flagWeightClasses) {
		score += s.weighClass(n)
	}
	s.scores[n] = score
	s.order[n] = s.seq
	s.seq++
}

// weighClass returns the class/id weight for a node: +classWeight for a
// positive match, −classWeight for a negative one. Both can apply.
func (s *scorer) weighClass(n *html.Node) float64 {
	match := classAndID(n)
	w := 0.0
	if rxPositive.MatchString(match) {
		w += classWeight
	}
	if rxNegative.MatchString(match) {
		w -= classWeight
	}
	return w
}

// rank applies the link-density penalty to every scored node and keeps
// the NbTopCandidates best, ordered by final score descending with
// first-seen winning ties.
func (s *scorer) rank() []candidate {
	top := make([]candidate, 0, s.opts.NbTopCandidates)
	for n, raw := range s.scores {
		final := raw * (1 - linkDensity(n))
		if final <= 0 {
			continue
		}
		c := candidate{node: n, score: final, order: s.order[n]}

		// Insertion sort into the bounded top list.
		pos := len(top)
		for i, t := range top {
			if c.score > t.score || (c.score == t.score && c.order < t.order) {
				pos = i
				break
			}
		}
		if pos >= s.opts.NbTopCandidates {
			continue
		}
		top = append(top, candidate{})
		copy(top[pos+1:], top[pos:])
		top[pos] = c
		if len(top) > s.opts.NbTopCandidates {
			top = top[:s.opts.NbTopCandidates]
		}
	}
	if len(top) == 0 {
		return nil
	}
	return top
}

// promote climbs from the raw top candidate toward the document root:
// article text usually sits one level below its true container, so a
// parent scoring within promotionFactor of the child takes its place.
func (s *scorer) promote(top candidate) candidate {
	threshold := top.score / promotionFactor
	body := documentBody(topDocument(top.node))
	for i := 0; i < promotionClimbLimit; i++ {
		parent := top.node.Parent
		if parent == nil || parent == body || tagName(parent) == "html" {
			break
		}
		raw, ok := s.scores[parent]
		if !ok {
			break
		}
		parentFinal := raw * (1 - linkDensity(parent))
		if parentFinal < threshold {
			break
		}
		top = candidate{node: parent, score: parentFinal, order: s.order[parent]}
	}
	return top
}

// topDocument walks to the root of the tree n belongs to.
func topDocument(n *html.Node) *html.Node {
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}

// gatherArticle builds the article container: the top candidate plus
// every sibling that either clears the sibling score threshold or reads
// like a continuation paragraph. Nodes are deep-cloned in, so the
// container shares nothing with the attempt's document.
func (s *scorer) gatherArticle(top candidate) *html.Node {
	container := createElement("div")
	setAttribute(container, "class", "page")

	parent := top.node.Parent
	if parent == nil {
		appendChild(container, cloneNode(top.node))
		return container
	}

	threshold := math.Max(siblingScoreFloor, top.score*siblingScoreFactor)
	topClass := getAttribute(top.node, "class")

	for _, sibling := range children(parent) {
		if sibling == top.node {
			appendChild(container, cloneNode(sibling))
			continue
		}

		// Same class/id as the winner is strong evidence of a
		// continuation block (pagination, part 2, ...).
		bonus := 0.0
		if topClass != "" && getAttribute(sibling, "class") == topClass {
			bonus = top.score * siblingScoreFactor
		}

		include := false
		if raw, ok := s.scores[sibling]; ok {
			final := raw*(1-linkDensity(sibling)) + bonus
			include = final >= threshold
		}
		if !include && tagName(sibling) == "p" {
			text := innerText(sibling)
			include = len(text) > s.opts.CharThreshold && linkDensity(sibling) < siblingMaxLinkDensity
		}
		if include {
			if s.opts.Debug {
				slog.Debug("readability: appending sibling",
					"tag", tagName(sibling), "class", getAttribute(sibling, "class"))
			}
			appendChild(container, cloneNode(sibling))
		}
	}
	return container
}
