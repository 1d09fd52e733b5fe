package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mikey/coach-ops/internal/core"
	"github.com/mikey/coach-ops/internal/utils"
	"go.uber.org/zap"
)

const (
	// DefaultRole is assigned to every extracted lead
	DefaultRole = "Executive Coach"

	evidenceBefore = 60
	evidenceAfter  = 120
	maxNameLength  = 60
	maxSpecialties = 3
)

// evidencePhrases are tried in order when quoting the page
var evidencePhrases = []string{"executive coach", "executive coaching", "leadership coach", "coach"}

var (
	linkedInPattern = regexp.MustCompile(`https?://(?:[a-z]{2,3}\.)?linkedin\.com/in/[A-Za-z0-9_%-]+/?`)
	titleSeparators = regexp.MustCompile(`\s+[|\-–—]\s+|\s*\|\s*|:\s+`)
	namePunctuation = regexp.MustCompile(`^[^\p{L}]+|[^\p{L}.]+$`)
)

// Extractor turns coach web pages into lead candidates
type Extractor struct {
	text        *utils.TextProcessor
	specialties []*regexp.Regexp
	keywords    []string
	logger      *zap.Logger
}

// NewExtractor creates a new page extractor
func NewExtractor(specialtyKeywords []string, text *utils.TextProcessor, logger *zap.Logger) *Extractor {
	e := &Extractor{text: text, logger: logger}
	for _, kw := range specialtyKeywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		e.keywords = append(e.keywords, kw)
		e.specialties = append(e.specialties, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(kw)+`\b`))
	}
	return e
}

// Extract parses html fetched from pageURL
func (e *Extractor) Extract(pageURL string, html string) (*core.Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}

	title := e.text.CleanText(doc.Find("title").First().Text())
	heading := e.text.CleanText(visibleText(doc.Find("h1").First()))
	linkedIn := findLinkedIn(doc, html)

	doc.Find("script, style, noscript, template").Remove()
	text := e.text.CleanText(visibleText(doc.Find("body")))
	if text == "" {
		text = e.text.CleanText(visibleText(doc.Selection))
	}

	_, location := core.ClassifyLocation(text)

	lead := core.Lead{
		Name:        guessName(heading, title),
		Role:        DefaultRole,
		WebsiteURL:  pageURL,
		LinkedInURL: linkedIn,
		Location:    location,
		Specialty:   e.specialty(title + " " + text),
		Evidence:    e.evidence(text),
	}

	e.logger.Debug("Page extracted",
		zap.String("url", pageURL),
		zap.String("name", lead.Name),
		zap.String("location", lead.Location),
		zap.Int("text_length", len(text)))

	return &core.Candidate{
		Lead:     lead,
		PageText: text,
		Title:    strings.TrimSpace(title + " " + heading),
	}, nil
}

// visibleText joins the text nodes under sel with spaces so that words from
// adjacent elements stay separate.
func visibleText(sel *goquery.Selection) string {
	var parts []string
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, child *goquery.Selection) {
			switch name := goquery.NodeName(child); {
			case name == "#text":
				parts = append(parts, child.Text())
			case name != "#comment":
				walk(child)
			}
		})
	}
	walk(sel)
	return strings.Join(parts, " ")
}

func (e *Extractor) specialty(text string) string {
	var found []string
	for i, pattern := range e.specialties {
		if pattern.MatchString(text) {
			found = append(found, e.keywords[i])
			if len(found) == maxSpecialties {
				break
			}
		}
	}
	return strings.Join(found, ", ")
}

func (e *Extractor) evidence(text string) string {
	for _, phrase := range evidencePhrases {
		if snippet := e.text.Snippet(text, phrase, evidenceBefore, evidenceAfter); snippet != "" {
			return snippet
		}
	}
	return e.text.TruncateText(text, evidenceBefore+evidenceAfter)
}

// findLinkedIn returns the first linkedin.com/in profile linked from the page
func findLinkedIn(doc *goquery.Document, html string) string {
	var profile string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if m := linkedInPattern.FindString(href); m != "" {
			profile = m
			return false
		}
		return true
	})
	if profile == "" {
		profile = linkedInPattern.FindString(html)
	}
	return profile
}

// guessName takes the leading segment of the page heading or title
func guessName(heading, title string) string {
	for _, candidate := range []string{heading, title} {
		if candidate == "" {
			continue
		}
		name := strings.TrimSpace(titleSeparators.Split(candidate, 2)[0])
		name = namePunctuation.ReplaceAllString(name, "")
		if name != "" && len(name) <= maxNameLength {
			return name
		}
	}
	return ""
}
