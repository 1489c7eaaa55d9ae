package markdown

import "regexp"

// Rule is one text substitution applied to rendered HTML.
type Rule struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
}

var containerTags = []string{"div", "section", "article", "aside", "header", "footer", "nav", "main"}

const (
	// inParagraph matches any text that does not close the paragraph.
	inParagraph = `(?:[^<]|<[^/<]|</[^pP]|</[pP][^>])*?`
	imgTag      = `<img\b[^>]*>`
	linkedImg   = `<a\b[^>]*>\s*` + imgTag + `\s*</a>`
	badge       = `(?:` + imgTag + `|` + linkedImg + `)`
)

// DefaultRules unwrap block-level elements that ended up inside paragraphs.
// A <p> is only removed together with its own </p>. Container rules come
// before the image rules so a badge row inside a <div> is not partially
// unwrapped.
var DefaultRules = defaultRules()

func defaultRules() []Rule {
	rules := []Rule{unwrapElement("table")}
	for _, tag := range containerTags {
		rules = append(rules, unwrapElement(tag))
	}
	return append(rules,
		Rule{"image-sequence", regexp.MustCompile(`(?i)<p>\s*(` + badge + `(?:\s*` + badge + `)*)\s*</p>`), "${1}"},
		Rule{"image", regexp.MustCompile(`(?i)<p>\s*(` + imgTag + `)\s*</p>`), "${1}"},
		Rule{"linked-image", regexp.MustCompile(`(?i)<p>\s*(` + linkedImg + `)\s*</p>`), "${1}"},
	)
}

// unwrapElement drops a paragraph whose only content is one <tag> element.
func unwrapElement(tag string) Rule {
	return Rule{
		Name:        "unwrap-" + tag,
		Pattern:     regexp.MustCompile(`(?i)<p>\s*(<` + tag + `\b[^>]*>` + inParagraph + `</` + tag + `>)\s*</p>`),
		Replacement: "${1}",
	}
}

// Normalizer rewrites rendered HTML with a fixed rule table. Every rule only
// removes a <p> together with its matching </p>, so the rules are applied
// until the text stops changing; the result is a fixed point and normalizing
// it again is a no-op.
type Normalizer struct {
	rules []Rule
}

// NewNormalizer returns a normalizer over DefaultRules.
func NewNormalizer() *Normalizer {
	return &Normalizer{rules: DefaultRules}
}

// NewNormalizerWithRules returns a normalizer over a custom table.
func NewNormalizerWithRules(rules []Rule) *Normalizer {
	return &Normalizer{rules: rules}
}

// Normalize applies the rule table until no rule matches.
func (n *Normalizer) Normalize(html string) string {
	for {
		out := html
		for _, r := range n.rules {
			out = r.Pattern.ReplaceAllString(out, r.Replacement)
		}
		if out == html {
			return out
		}
		html = out
	}
}
