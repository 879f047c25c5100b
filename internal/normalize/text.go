package normalize

import (
	"net/url"
	"regexp"
	"strings"
)

// trackingParams is the set of URL query parameters stripped during
// canonicalization.
var trackingParams = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_term":     true,
	"utm_content":  true,
	"utm_id":       true,
	"fbclid":       true,
	"gclid":        true,
	"gclsrc":       true,
	"dclid":        true,
	"msclkid":      true,
	"twclid":       true,
	"mc_cid":       true,
	"mc_eid":       true,
	"_ga":          true,
	"_gl":          true,
}

// reHTMLTag matches HTML tags.
var reHTMLTag = regexp.MustCompile(`<[^>]*>`)

// reWhitespace matches sequences of whitespace.
var reWhitespace = regexp.MustCompile(`\s+`)

// CanonicalizeURL normalizes a URL: lowercase scheme and host, strip
// tracking parameters, fragment, and trailing slash, sort the remaining
// query. Deterministic and idempotent.
func CanonicalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""
	parsed.RawFragment = ""

	if len(parsed.Path) > 1 {
		parsed.Path = strings.TrimRight(parsed.Path, "/")
	}

	query := parsed.Query()
	for key := range query {
		if trackingParams[strings.ToLower(key)] {
			query.Del(key)
		}
	}
	parsed.RawQuery = query.Encode()

	return parsed.String()
}

// CleanText strips HTML tags, decodes common entities, and collapses
// whitespace into single spaces.
func CleanText(html string) string {
	if html == "" {
		return ""
	}
	text := reHTMLTag.ReplaceAllString(html, " ")

	text = strings.ReplaceAll(text, "&amp;", "&")
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	text = strings.ReplaceAll(text, "&quot;", `"`)
	text = strings.ReplaceAll(text, "&#39;", "'")
	text = strings.ReplaceAll(text, "&apos;", "'")
	text = strings.ReplaceAll(text, "&nbsp;", " ")

	return strings.TrimSpace(reWhitespace.ReplaceAllString(text, " "))
}

// TruncateAtSentence shortens text to at most maxLen characters, cutting at
// the last sentence boundary inside the limit. Falls back to a hard cut at
// the last word when no boundary exists.
func TruncateAtSentence(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	cut := text[:maxLen]

	best := -1
	for _, sep := range []string{". ", "! ", "? "} {
		if idx := strings.LastIndex(cut, sep); idx > best {
			best = idx
		}
	}
	if best > 0 {
		return strings.TrimSpace(cut[:best+1])
	}
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		return strings.TrimSpace(cut[:idx])
	}
	return cut
}

// tokenize lowercases and splits text into alphanumeric tokens.
func tokenize(text string) []string {
	var tokens []string
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}

// TitleSimilarity computes token-set Jaccard similarity between two titles.
func TitleSimilarity(a, b string) float64 {
	setA := make(map[string]bool)
	for _, t := range tokenize(a) {
		setA[t] = true
	}
	setB := make(map[string]bool)
	for _, t := range tokenize(b) {
		setB[t] = true
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	inter := 0
	for t := range setA {
		if setB[t] {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	return float64(inter) / float64(union)
}

// noiseTitlePatterns mark procedural or promotional items that carry a news
// feed's furniture rather than news.
var noiseTitlePatterns = []string{
	"newsletter",
	"sign up for",
	"subscribe to",
	"sponsored content",
	"advertisement",
	"live updates:",
	"watch live",
	"in pictures:",
	"in photos:",
	"quiz of the week",
	"crossword",
	"horoscope",
	"notice of meeting",
	"federal register",
}

// IsNoiseTitle reports whether a title matches a known noise pattern.
func IsNoiseTitle(title string) bool {
	lower := strings.ToLower(title)
	for _, pattern := range noiseTitlePatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// entityStopwords are capitalized function words that start sentences but
// never open a noun-phrase entity on their own.
var entityStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "in": true, "on": true, "at": true,
	"of": true, "for": true, "to": true, "and": true, "but": true, "or": true,
	"as": true, "by": true, "with": true, "after": true, "before": true,
	"from": true, "over": true, "under": true, "this": true, "that": true,
	"it": true, "its": true, "his": true, "her": true, "their": true,
	"why": true, "how": true, "what": true, "when": true,
	"where": true, "who": true,
}

// maxEntitiesPerArticle caps extraction per article.
const maxEntitiesPerArticle = 50

// ExtractEntities pulls noun-phrase entities out of text with a capitalized
// token-run heuristic: maximal runs of capitalized words, joined with
// spaces, in textual order, deduplicated, capped at 50.
func ExtractEntities(text string) []string {
	words := strings.Fields(text)
	var entities []string
	seen := make(map[string]bool)
	var run []string

	flush := func() {
		if len(run) == 0 {
			return
		}
		// Drop a leading stopword left over from sentence position.
		if entityStopwords[strings.ToLower(run[0])] {
			run = run[1:]
		}
		if len(run) > 0 {
			entity := strings.Join(run, " ")
			if !seen[entity] && len(entity) > 1 {
				seen[entity] = true
				entities = append(entities, entity)
			}
		}
		run = nil
	}

	for _, word := range words {
		trimmed := strings.Trim(word, `.,;:!?"'()[]`)
		if isCapitalized(trimmed) {
			run = append(run, trimmed)
		} else {
			flush()
		}
		if len(entities) >= maxEntitiesPerArticle {
			return entities
		}
		// Punctuation inside the original token ends the phrase.
		if trimmed != word && strings.ContainsAny(word, ".,;:!?") && len(run) > 0 {
			flush()
		}
	}
	flush()

	if len(entities) > maxEntitiesPerArticle {
		entities = entities[:maxEntitiesPerArticle]
	}
	return entities
}

func isCapitalized(word string) bool {
	if word == "" {
		return false
	}
	first := rune(word[0])
	return first >= 'A' && first <= 'Z'
}
