package detector

import (
	"net/url"
	"strings"
	"sync"

	"github.com/go-shiori/go-readability"
	"github.com/pemistahl/lingua-go"

	"github.com/dtnitsch/localfeed/pkg/analytics"
)

// Signals contains cheap detection results for a fetched article
type Signals struct {
	DomainType string  // gov, edu, mobile, commercial
	Country    string  // TLD-based guess: uk, de, fr, etc; empty when unknown
	Region     string  // region tag derived from Country
	Category   string  // sport, politics, business, ... ; empty when nothing matched
	Language   string  // ISO 639-1, lowercase; empty when undetected
	Confidence float64 // 0-10 scale based on signal strength

	// Readability enrichment
	Author   string
	SiteName string
}

// Analyze performs detection on URL, readability article, and extracted text
func Analyze(rawURL string, article readability.Article, content string) *Signals {
	s := &Signals{
		Author:   article.Byline,
		SiteName: article.SiteName,
		Language: DetectLanguage(content),
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		s.Category = analytics.InferTopic(content)
		s.Confidence = s.calculateConfidence()
		return s
	}

	s.DomainType = detectDomainType(parsedURL)
	s.Country = detectCountry(parsedURL)
	s.Region = s.Country

	s.Category = detectCategory(parsedURL)
	if s.Category == "" {
		s.Category = analytics.InferTopic(content)
	}

	s.Confidence = s.calculateConfidence()
	return s
}

// detectDomainType identifies domain classification
func detectDomainType(u *url.URL) string {
	host := strings.ToLower(u.Hostname())

	if strings.HasSuffix(host, ".gov") || strings.HasSuffix(host, ".mil") ||
		strings.Contains(host, ".gov.") {
		return "gov"
	}
	if strings.HasSuffix(host, ".edu") || strings.Contains(host, ".ac.") {
		return "edu"
	}
	if strings.HasPrefix(host, "m.") || strings.HasPrefix(host, "mobile.") {
		return "mobile"
	}
	return "commercial"
}

// Common country TLDs
var countries = map[string]string{
	"uk": "uk", "de": "de", "fr": "fr", "jp": "jp", "cn": "cn",
	"au": "au", "ca": "ca", "in": "in", "br": "br", "ru": "ru",
	"it": "it", "es": "es", "nl": "nl", "se": "se", "ch": "ch",
	"ie": "ie", "nz": "nz", "at": "at", "be": "be", "dk": "dk",
	"no": "no", "fi": "fi", "pl": "pl", "pt": "pt", "us": "us",
}

// detectCountry extracts country from TLD
func detectCountry(u *url.URL) string {
	host := strings.ToLower(u.Hostname())
	parts := strings.Split(host, ".")
	if len(parts) < 2 {
		return ""
	}

	tld := parts[len(parts)-1]
	if country, ok := countries[tld]; ok {
		return country
	}

	// US implied for .gov, .edu, .mil
	if tld == "gov" || tld == "edu" || tld == "mil" {
		return "us"
	}
	return ""
}

// categoryHints maps URL fragments to categories. Checked in order.
var categoryHints = []struct {
	category string
	hints    []string
}{
	{"sport", []string{"sport", "football", "soccer", "cricket", "rugby", "espn"}},
	{"weather", []string{"weather", "forecast"}},
	{"business", []string{"business", "finance", "markets", "money"}},
	{"politics", []string{"politics", "election", "parliament"}},
	{"technology", []string{"technology", "/tech/", "techcrunch", "theverge", "arstechnica", "wired"}},
	{"entertainment", []string{"entertainment", "culture", "showbiz", "/arts/"}},
	{"health", []string{"health", "nhs"}},
}

// detectCategory determines article category from host and path patterns
func detectCategory(u *url.URL) string {
	haystack := strings.ToLower(u.Hostname() + u.Path + "/")
	for _, c := range categoryHints {
		for _, h := range c.hints {
			if strings.Contains(haystack, h) {
				return c.category
			}
		}
	}
	return ""
}

// calculateConfidence computes overall confidence (0-10) based on signal strength
func (s *Signals) calculateConfidence() float64 {
	confidence := 5.0 // baseline

	switch s.DomainType {
	case "gov", "edu":
		confidence += 2.0
	case "mobile":
		confidence += 1.0
	}

	if s.Country != "" {
		confidence += 1.0
	}
	if s.Language != "" {
		confidence += 0.5
	}
	if s.Author != "" {
		confidence += 0.5
	}
	if s.SiteName != "" {
		confidence += 0.3
	}

	if confidence > 10.0 {
		confidence = 10.0
	}
	return confidence
}

var (
	languageDetector     lingua.LanguageDetector
	languageDetectorOnce sync.Once
)

// Languages the detector distinguishes between. Limiting the set keeps
// model loading cheap.
var supportedLanguages = []lingua.Language{
	lingua.English,
	lingua.French,
	lingua.German,
	lingua.Spanish,
	lingua.Italian,
	lingua.Dutch,
	lingua.Portuguese,
}

// DetectLanguage returns the lowercase ISO 639-1 code of text's language, or
// "" when text is too short or ambiguous.
func DetectLanguage(text string) string {
	if len(strings.Fields(text)) < 3 {
		return ""
	}

	languageDetectorOnce.Do(func() {
		languageDetector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(supportedLanguages...).
			Build()
	})

	lang, ok := languageDetector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}
