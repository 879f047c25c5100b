package score

import "strings"

// Event categories.
const (
	CategoryPolitics        = "politics"
	CategoryNaturalDisaster = "natural_disaster"
	CategoryHealth          = "health"
	CategoryConflict        = "conflict"
	CategoryBusiness        = "business"
	CategoryScience         = "science"
	CategoryTechnology      = "technology"
	CategoryCrime           = "crime"
	CategorySports          = "sports"
	CategoryEntertainment   = "entertainment"
	CategoryOther           = "other"
)

// categoryKeywords drive the keyword-count classifier. Matching is
// case-insensitive substring over title plus entities.
var categoryKeywords = map[string][]string{
	CategoryPolitics: {
		"election", "parliament", "senate", "congress", "president",
		"minister", "government", "legislation", "referendum", "coalition",
		"vote", "campaign", "impeach", "policy", "diplomat",
	},
	CategoryNaturalDisaster: {
		"earthquake", "flood", "wildfire", "hurricane", "typhoon", "cyclone",
		"tsunami", "eruption", "volcano", "landslide", "drought", "tornado",
		"magnitude", "aftershock",
	},
	CategoryHealth: {
		"outbreak", "epidemic", "pandemic", "virus", "vaccine", "hospital",
		"disease", "infection", "cholera", "malaria", "health emergency",
		"who declares",
	},
	CategoryConflict: {
		"airstrike", "ceasefire", "offensive", "troops", "missile", "war",
		"militant", "insurgent", "shelling", "frontline", "hostage",
		"sanctions", "invasion",
	},
	CategoryBusiness: {
		"stocks", "earnings", "merger", "bankruptcy", "inflation", "markets",
		"ipo", "layoffs", "revenue", "central bank", "interest rate",
		"tariff",
	},
	CategoryScience: {
		"research", "study finds", "telescope", "spacecraft", "climate",
		"species", "fossil", "physicists", "nasa", "satellite", "probe",
	},
	CategoryTechnology: {
		"software", "startup", "artificial intelligence", "chip", "cyber",
		"data breach", "smartphone", "silicon", "algorithm", "app",
	},
	CategoryCrime: {
		"arrested", "charged", "murder", "fraud", "trial", "sentenced",
		"police", "shooting", "trafficking", "indicted", "robbery",
	},
	CategorySports: {
		"championship", "tournament", "league", "olympic", "world cup",
		"final", "coach", "stadium", "medal", "match",
	},
	CategoryEntertainment: {
		"film", "album", "festival", "box office", "celebrity", "premiere",
		"awards", "concert", "streaming series",
	},
}

// politicalLexicon marks entities that force politics_flag regardless of
// the classified category.
var politicalLexicon = map[string]bool{
	"white house": true, "kremlin": true, "congress": true, "senate": true,
	"parliament": true, "european union": true, "united nations": true,
	"nato": true, "republican": true, "democrat": true, "labour": true,
	"tory": true, "president": true, "prime minister": true,
	"supreme court": true, "state department": true, "pentagon": true,
	"communist party": true, "opposition leader": true, "electoral": true,
}

// Classify assigns a category and confidence from keyword hits over the
// title and entities. Confidence is the winning category's share of all
// hits; no hits at all classifies as other with zero confidence.
func Classify(title string, entities []string) (string, float64) {
	text := strings.ToLower(title + " " + strings.Join(entities, " "))

	hits := make(map[string]int)
	total := 0
	for category, keywords := range categoryKeywords {
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				hits[category]++
				total++
			}
		}
	}
	if total == 0 {
		return CategoryOther, 0
	}

	best, bestHits := CategoryOther, 0
	for _, category := range categoryOrder {
		if hits[category] > bestHits {
			best, bestHits = category, hits[category]
		}
	}
	return best, float64(bestHits) / float64(total)
}

// categoryOrder fixes iteration order so ties resolve deterministically.
var categoryOrder = []string{
	CategoryPolitics, CategoryNaturalDisaster, CategoryHealth,
	CategoryConflict, CategoryBusiness, CategoryScience, CategoryTechnology,
	CategoryCrime, CategorySports, CategoryEntertainment,
}

// IsPoliticalEntity reports whether an extracted entity appears in the
// political lexicon.
func IsPoliticalEntity(entity string) bool {
	return politicalLexicon[strings.ToLower(entity)]
}
