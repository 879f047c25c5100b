// Package sources holds the static Source Registry: per-domain region,
// country, and bias tags consulted by the scorer. The registry is read-only
// at runtime.
package sources

import "strings"

// Regions used on the geographic bias axis.
const (
	RegionWestern     = "western"
	RegionEastern     = "eastern"
	RegionGlobalSouth = "global_south"
)

// PoliticalBias is a distribution over political leanings; the three floats
// sum to 1.
type PoliticalBias struct {
	Left   float64
	Center float64
	Right  float64
}

// Leaning returns the dominant axis of the distribution.
func (b PoliticalBias) Leaning() string {
	switch {
	case b.Left > b.Center && b.Left > b.Right:
		return "left"
	case b.Right > b.Center && b.Right > b.Left:
		return "right"
	default:
		return "center"
	}
}

// ToneBias is a distribution over reporting tone; the two floats sum to 1.
type ToneBias struct {
	Sensational float64
	Factual     float64
}

// Source is one registry entry.
type Source struct {
	Domain    string
	Region    string
	Country   string
	Political PoliticalBias
	Tone      ToneBias
}

// officialDomains are the primary-evidence feeds. An event citing any of
// them gets the primary-evidence component of the truth score.
var officialDomains = map[string]bool{
	"usgs.gov":      true,
	"who.int":       true,
	"nasa.gov":      true,
	"unocha.org":    true,
	"reliefweb.int": true,
}

// majorWireDomains are the global wire agencies. Events with NGO/official
// evidence but no wire coverage are underreported-eligible.
var majorWireDomains = map[string]bool{
	"ap.org":      true,
	"reuters.com": true,
	"afp.com":     true,
}

// registry is the static per-domain tag table. Domains absent from the table
// fall back to neutral defaults.
var registry = map[string]Source{
	"reuters.com":        {Domain: "reuters.com", Region: RegionWestern, Country: "GB", Political: PoliticalBias{0.2, 0.6, 0.2}, Tone: ToneBias{0.1, 0.9}},
	"ap.org":             {Domain: "ap.org", Region: RegionWestern, Country: "US", Political: PoliticalBias{0.2, 0.6, 0.2}, Tone: ToneBias{0.1, 0.9}},
	"afp.com":            {Domain: "afp.com", Region: RegionWestern, Country: "FR", Political: PoliticalBias{0.25, 0.55, 0.2}, Tone: ToneBias{0.1, 0.9}},
	"bbc.co.uk":          {Domain: "bbc.co.uk", Region: RegionWestern, Country: "GB", Political: PoliticalBias{0.3, 0.55, 0.15}, Tone: ToneBias{0.15, 0.85}},
	"bbc.com":            {Domain: "bbc.com", Region: RegionWestern, Country: "GB", Political: PoliticalBias{0.3, 0.55, 0.15}, Tone: ToneBias{0.15, 0.85}},
	"theguardian.com":    {Domain: "theguardian.com", Region: RegionWestern, Country: "GB", Political: PoliticalBias{0.6, 0.3, 0.1}, Tone: ToneBias{0.2, 0.8}},
	"nytimes.com":        {Domain: "nytimes.com", Region: RegionWestern, Country: "US", Political: PoliticalBias{0.55, 0.35, 0.1}, Tone: ToneBias{0.15, 0.85}},
	"washingtonpost.com": {Domain: "washingtonpost.com", Region: RegionWestern, Country: "US", Political: PoliticalBias{0.55, 0.35, 0.1}, Tone: ToneBias{0.15, 0.85}},
	"wsj.com":            {Domain: "wsj.com", Region: RegionWestern, Country: "US", Political: PoliticalBias{0.15, 0.45, 0.4}, Tone: ToneBias{0.1, 0.9}},
	"foxnews.com":        {Domain: "foxnews.com", Region: RegionWestern, Country: "US", Political: PoliticalBias{0.05, 0.25, 0.7}, Tone: ToneBias{0.6, 0.4}},
	"cnn.com":            {Domain: "cnn.com", Region: RegionWestern, Country: "US", Political: PoliticalBias{0.55, 0.35, 0.1}, Tone: ToneBias{0.45, 0.55}},
	"nypost.com":         {Domain: "nypost.com", Region: RegionWestern, Country: "US", Political: PoliticalBias{0.1, 0.3, 0.6}, Tone: ToneBias{0.7, 0.3}},
	"dailymail.co.uk":    {Domain: "dailymail.co.uk", Region: RegionWestern, Country: "GB", Political: PoliticalBias{0.1, 0.3, 0.6}, Tone: ToneBias{0.75, 0.25}},
	"lemonde.fr":         {Domain: "lemonde.fr", Region: RegionWestern, Country: "FR", Political: PoliticalBias{0.5, 0.4, 0.1}, Tone: ToneBias{0.15, 0.85}},
	"spiegel.de":         {Domain: "spiegel.de", Region: RegionWestern, Country: "DE", Political: PoliticalBias{0.5, 0.4, 0.1}, Tone: ToneBias{0.2, 0.8}},
	"abc.net.au":         {Domain: "abc.net.au", Region: RegionWestern, Country: "AU", Political: PoliticalBias{0.35, 0.5, 0.15}, Tone: ToneBias{0.15, 0.85}},
	"rt.com":             {Domain: "rt.com", Region: RegionEastern, Country: "RU", Political: PoliticalBias{0.2, 0.3, 0.5}, Tone: ToneBias{0.65, 0.35}},
	"tass.com":           {Domain: "tass.com", Region: RegionEastern, Country: "RU", Political: PoliticalBias{0.2, 0.4, 0.4}, Tone: ToneBias{0.4, 0.6}},
	"xinhuanet.com":      {Domain: "xinhuanet.com", Region: RegionEastern, Country: "CN", Political: PoliticalBias{0.3, 0.5, 0.2}, Tone: ToneBias{0.3, 0.7}},
	"globaltimes.cn":     {Domain: "globaltimes.cn", Region: RegionEastern, Country: "CN", Political: PoliticalBias{0.3, 0.4, 0.3}, Tone: ToneBias{0.6, 0.4}},
	"scmp.com":           {Domain: "scmp.com", Region: RegionEastern, Country: "HK", Political: PoliticalBias{0.3, 0.5, 0.2}, Tone: ToneBias{0.2, 0.8}},
	"japantimes.co.jp":   {Domain: "japantimes.co.jp", Region: RegionEastern, Country: "JP", Political: PoliticalBias{0.35, 0.5, 0.15}, Tone: ToneBias{0.15, 0.85}},
	"nhk.or.jp":          {Domain: "nhk.or.jp", Region: RegionEastern, Country: "JP", Political: PoliticalBias{0.25, 0.6, 0.15}, Tone: ToneBias{0.1, 0.9}},
	"aljazeera.com":      {Domain: "aljazeera.com", Region: RegionGlobalSouth, Country: "QA", Political: PoliticalBias{0.45, 0.4, 0.15}, Tone: ToneBias{0.25, 0.75}},
	"thehindu.com":       {Domain: "thehindu.com", Region: RegionGlobalSouth, Country: "IN", Political: PoliticalBias{0.4, 0.45, 0.15}, Tone: ToneBias{0.2, 0.8}},
	"timesofindia.com":   {Domain: "timesofindia.com", Region: RegionGlobalSouth, Country: "IN", Political: PoliticalBias{0.3, 0.4, 0.3}, Tone: ToneBias{0.5, 0.5}},
	"folha.uol.com.br":   {Domain: "folha.uol.com.br", Region: RegionGlobalSouth, Country: "BR", Political: PoliticalBias{0.45, 0.4, 0.15}, Tone: ToneBias{0.25, 0.75}},
	"news24.com":         {Domain: "news24.com", Region: RegionGlobalSouth, Country: "ZA", Political: PoliticalBias{0.35, 0.45, 0.2}, Tone: ToneBias{0.3, 0.7}},
	"usgs.gov":           {Domain: "usgs.gov", Region: RegionWestern, Country: "US", Political: PoliticalBias{0.1, 0.8, 0.1}, Tone: ToneBias{0.0, 1.0}},
	"who.int":            {Domain: "who.int", Region: RegionWestern, Country: "CH", Political: PoliticalBias{0.1, 0.8, 0.1}, Tone: ToneBias{0.0, 1.0}},
	"nasa.gov":           {Domain: "nasa.gov", Region: RegionWestern, Country: "US", Political: PoliticalBias{0.1, 0.8, 0.1}, Tone: ToneBias{0.0, 1.0}},
	"unocha.org":         {Domain: "unocha.org", Region: RegionGlobalSouth, Country: "UN", Political: PoliticalBias{0.15, 0.75, 0.1}, Tone: ToneBias{0.05, 0.95}},
	"reliefweb.int":      {Domain: "reliefweb.int", Region: RegionGlobalSouth, Country: "UN", Political: PoliticalBias{0.15, 0.75, 0.1}, Tone: ToneBias{0.05, 0.95}},
}

// neutralSource is the fallback for unregistered domains.
var neutralSource = Source{
	Region:    RegionWestern,
	Political: PoliticalBias{Left: 1.0 / 3, Center: 1.0 / 3, Right: 1.0 / 3},
	Tone:      ToneBias{Sensational: 0.5, Factual: 0.5},
}

// Lookup returns the registry entry for a domain, falling back to neutral
// tags. Subdomains resolve to their registered parent (news.bbc.co.uk →
// bbc.co.uk).
func Lookup(domain string) Source {
	domain = strings.ToLower(strings.TrimPrefix(domain, "www."))
	if src, ok := registry[domain]; ok {
		return src
	}
	// Walk up the domain labels looking for a registered parent.
	parts := strings.Split(domain, ".")
	for i := 1; i < len(parts)-1; i++ {
		parent := strings.Join(parts[i:], ".")
		if src, ok := registry[parent]; ok {
			return src
		}
	}
	s := neutralSource
	s.Domain = domain
	return s
}

// IsOfficial reports whether the domain is a primary-evidence official feed.
func IsOfficial(domain string) bool {
	domain = strings.ToLower(strings.TrimPrefix(domain, "www."))
	if officialDomains[domain] {
		return true
	}
	parts := strings.Split(domain, ".")
	for i := 1; i < len(parts)-1; i++ {
		if officialDomains[strings.Join(parts[i:], ".")] {
			return true
		}
	}
	return false
}

// IsMajorWire reports whether the domain is one of the global wire agencies.
func IsMajorWire(domain string) bool {
	domain = strings.ToLower(strings.TrimPrefix(domain, "www."))
	return majorWireDomains[domain]
}

// TLD returns the last label of a domain ("bbc.co.uk" → "uk").
func TLD(domain string) string {
	domain = strings.ToLower(domain)
	idx := strings.LastIndex(domain, ".")
	if idx == -1 || idx == len(domain)-1 {
		return domain
	}
	return domain[idx+1:]
}
