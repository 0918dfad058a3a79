package detector

import (
	"net/url"
	"testing"

	"github.com/go-shiori/go-readability"
	"github.com/stretchr/testify/assert"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("bad url %q: %v", raw, err)
	}
	return u
}

func TestDetectCountry(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.bbc.co.uk/news/articles/x", "uk"},
		{"https://www.spiegel.de/politik", "de"},
		{"https://www.weather.gov/forecast", "us"},
		{"https://example.com/a", ""},
		{"http://localhost:8080/a", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, detectCountry(mustParse(t, tt.url)))
		})
	}
}

func TestDetectCategory(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.bbc.co.uk/sport/football/123", "sport"},
		{"https://news.example.com/business/markets-rally", "business"},
		{"https://www.theverge.com/2025/1/1/thing", "technology"},
		{"https://example.com/local/leeds-bridge", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, detectCategory(mustParse(t, tt.url)))
		})
	}
}

func TestDetectDomainType(t *testing.T) {
	assert.Equal(t, "gov", detectDomainType(mustParse(t, "https://www.gov.uk/guidance")))
	assert.Equal(t, "edu", detectDomainType(mustParse(t, "https://www.ox.ac.uk/news")))
	assert.Equal(t, "mobile", detectDomainType(mustParse(t, "https://m.example.com/")))
	assert.Equal(t, "commercial", detectDomainType(mustParse(t, "https://example.com/")))
}

func TestAnalyze(t *testing.T) {
	article := readability.Article{Byline: "A. Reporter", SiteName: "Example News"}
	text := "The striker scored twice as the league leaders won the derby match in front of a record crowd at the stadium."

	s := Analyze("https://www.example.co.uk/local/derby-day", article, text)

	assert.Equal(t, "uk", s.Region)
	assert.Equal(t, "commercial", s.DomainType)
	assert.Equal(t, "sport", s.Category)
	assert.Equal(t, "en", s.Language)
	assert.Equal(t, "A. Reporter", s.Author)
	assert.InDelta(t, 7.3, s.Confidence, 0.001)
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "", DetectLanguage("too short"))
	assert.Equal(t, "en", DetectLanguage("The council approved the new budget for road repairs across the city this week."))
	assert.Equal(t, "de", DetectLanguage("Der Stadtrat hat heute den neuen Haushalt für die Reparatur der Straßen beschlossen."))
}
