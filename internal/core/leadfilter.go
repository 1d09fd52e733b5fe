package core

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Filter verdict reasons
const (
	ReasonIncluded         = "included"
	ReasonExcludedKeyword  = "excluded_keyword"
	ReasonNoCoachingSignal = "no_coaching_signal"
	ReasonOutsideEastern   = "outside_eastern_time"
)

var coachingPattern = regexp.MustCompile(`(?i)\bcoach(es|ing)?\b`)

// FilterDecision is the lead filter's verdict for one candidate
type FilterDecision struct {
	Include bool
	Reason  string
	// Keyword is the excluded keyword that matched, if any
	Keyword string
	// Lead is the candidate's lead with its location normalized
	Lead Lead
}

type keywordMatcher struct {
	keyword string
	pattern *regexp.Regexp
	acronym bool
}

func (m keywordMatcher) matches(text string) bool {
	if !m.acronym {
		return m.pattern.MatchString(text)
	}
	for _, loc := range m.pattern.FindAllStringIndex(text, -1) {
		if !shouted(text, loc[0], loc[1]) {
			return true
		}
	}
	return false
}

// shouted reports whether text[start:end] sits in a run of all-caps words, as
// in a heading like "MAKE IT HAPPEN", where it reads as an ordinary word.
func shouted(text string, start, end int) bool {
	before, after := wordBefore(text[:start]), wordAfter(text[end:])
	if before == "" && after == "" {
		return false
	}
	return (before == "" || allCaps(before)) && (after == "" || allCaps(after))
}

func wordBefore(s string) string {
	end := len(s)
	for end > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:end])
		if isWordRune(r) {
			break
		}
		end -= size
	}
	start := end
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:start])
		if !isWordRune(r) {
			break
		}
		start -= size
	}
	return s[start:end]
}

func wordAfter(s string) string {
	start := strings.IndexFunc(s, isWordRune)
	if start < 0 {
		return ""
	}
	end := strings.IndexFunc(s[start:], func(r rune) bool { return !isWordRune(r) })
	if end < 0 {
		return s[start:]
	}
	return s[start : start+end]
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func allCaps(word string) bool {
	hasLetter := false
	for _, r := range word {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

// LeadFilter decides which candidates become leads
type LeadFilter struct {
	exclude []keywordMatcher
	logger  *zap.Logger
}

// NewLeadFilter creates a new lead filter. Keywords are matched as whole words,
// ignoring case. Keywords of three letters or fewer are treated as acronyms: they
// only match in upper case so that "it" in running text is not mistaken for "IT",
// and not inside all-caps text where every word is upper case.
func NewLeadFilter(excludeKeywords []string, logger *zap.Logger) *LeadFilter {
	f := &LeadFilter{logger: logger}
	for _, kw := range excludeKeywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		acronym := len(kw) <= 3
		var expr string
		if acronym {
			expr = `\b` + regexp.QuoteMeta(strings.ToUpper(kw)) + `\b`
		} else {
			expr = `(?i)\b` + regexp.QuoteMeta(kw) + `\b`
		}
		f.exclude = append(f.exclude, keywordMatcher{keyword: kw, pattern: regexp.MustCompile(expr), acronym: acronym})
	}
	return f
}

// Classify returns INCLUDE or EXCLUDE for a candidate. Only what the page itself
// says is scanned; the assigned role is not evidence of coaching.
func (f *LeadFilter) Classify(c *Candidate) FilterDecision {
	lead := c.Lead
	blob := strings.Join([]string{c.Title, lead.Specialty, lead.Evidence, c.PageText}, "\n")

	for _, m := range f.exclude {
		if m.matches(blob) {
			return f.decide(c, FilterDecision{Reason: ReasonExcludedKeyword, Keyword: m.keyword, Lead: lead})
		}
	}

	if !coachingPattern.MatchString(blob) {
		return f.decide(c, FilterDecision{Reason: ReasonNoCoachingSignal, Lead: lead})
	}

	zone, location := ClassifyLocation(lead.Location)
	switch zone {
	case ZoneEastern:
		lead.Location = location
	case ZoneOther:
		return f.decide(c, FilterDecision{Reason: ReasonOutsideEastern, Lead: lead})
	default:
		lead.Location = ""
		if strings.TrimSpace(c.Lead.Location) == "" {
			// A page without a location inherits an Eastern search target
			if targetZone, target := ClassifyLocation(c.Target); targetZone == ZoneEastern {
				lead.Location = target
			}
		}
	}

	if lead.Name == "" {
		lead.Name = "Unknown"
	}
	return f.decide(c, FilterDecision{Include: true, Reason: ReasonIncluded, Lead: lead})
}

func (f *LeadFilter) decide(c *Candidate, d FilterDecision) FilterDecision {
	f.logger.Debug("Lead filter decision",
		zap.String("website", c.WebsiteURL),
		zap.Bool("include", d.Include),
		zap.String("reason", d.Reason),
		zap.String("keyword", d.Keyword))
	return d
}
