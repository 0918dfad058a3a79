package parser

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"github.com/dtnitsch/localfeed/models"
	"github.com/dtnitsch/localfeed/pkg/detector"
)

// maxExcerptRunes bounds excerpts built from the first paragraph.
const maxExcerptRunes = 280

type Parser struct {
	// Now stamps FetchedAt; nil means time.Now.
	Now func() time.Time
}

// Parse uses go-readability to find the main article and goquery to pull its
// paragraph text, then tags the result with detected region, category and
// language. Tags and category on the request win over detected values.
func (p *Parser) Parse(req models.ParseRequest) (*models.ContentItem, error) {
	parsedURL, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", req.URL, err)
	}

	article, err := readability.NewParser().Parse(strings.NewReader(req.HTML), parsedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to extract article: %w", err)
	}

	// Now, use goquery on the *clean* HTML content provided by readability
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse article html: %w", err)
	}

	var paragraphs []string
	doc.Find("h2,h3,p,li,blockquote").Each(func(i int, s *goquery.Selection) {
		if text := normalizeText(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	body := strings.Join(paragraphs, "\n\n")

	title := normalizeText(article.Title)
	if title == "" && len(paragraphs) == 0 {
		return nil, fmt.Errorf("no article content found at %s", req.URL)
	}

	excerpt := normalizeText(article.Excerpt)
	if excerpt == "" && len(paragraphs) > 0 {
		excerpt = truncateRunes(paragraphs[0], maxExcerptRunes)
	}

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	fetchedAt := now().UTC()

	publishedAt := fetchedAt
	if article.PublishedTime != nil && !article.PublishedTime.IsZero() {
		publishedAt = article.PublishedTime.UTC()
	}

	signals := detector.Analyze(req.URL, article, title+"\n"+body)

	item := &models.ContentItem{
		ID:          ItemID(req.URL),
		URL:         req.URL,
		Title:       title,
		Excerpt:     excerpt,
		Body:        body,
		Category:    signals.Category,
		Language:    signals.Language,
		PublishedAt: publishedAt,
		FetchedAt:   fetchedAt,
		LocationTags: models.LocationTags{
			Region: signals.Region,
		},
	}

	if req.Category != "" {
		item.Category = req.Category
	}
	if req.Tags.Region != "" {
		item.Region = req.Tags.Region
	}
	if req.Tags.SubRegion != "" {
		item.SubRegion = req.Tags.SubRegion
	}
	if req.Tags.Locality != "" {
		item.Locality = req.Tags.Locality
	}

	return item, nil
}

// ItemID derives a stable item id from a URL.
func ItemID(rawURL string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(rawURL)))
	return hex.EncodeToString(sum[:8])
}

// normalizeText cleans up a string by trimming space and removing excess newlines.
func normalizeText(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			b.WriteString(line)
			b.WriteString(" ")
		}
	}
	return strings.TrimSpace(b.String())
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n])) + "…"
}
