package core

import (
	"strings"
	"testing"

	"github.com/mikey/coach-ops/internal/config"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestFilter() *LeadFilter {
	return NewLeadFilter(config.DefaultExcludeKeywords, zap.NewNop())
}

func TestLeadFilterClassify(t *testing.T) {
	tests := []struct {
		name      string
		candidate Candidate
		include   bool
		reason    string
		location  string
	}{
		{
			name:      "technical coaching",
			candidate: Candidate{Title: "DevOps Coach"},
			include:   false,
			reason:    ReasonExcludedKeyword,
		},
		{
			name:      "eastern leadership coach",
			candidate: Candidate{Lead: Lead{Location: "Boston"}, Title: "Leadership Coach"},
			include:   true,
			reason:    ReasonIncluded,
			location:  "Boston, MA",
		},
		{
			name:      "IT acronym in page text",
			candidate: Candidate{PageText: "Coaching for IT directors"},
			include:   false,
			reason:    ReasonExcludedKeyword,
		},
		{
			name:      "pronoun it is not a keyword",
			candidate: Candidate{Lead: Lead{Location: "Atlanta"}, PageText: "Make it happen with executive coaching"},
			include:   true,
			reason:    ReasonIncluded,
			location:  "Atlanta, GA",
		},
		{
			name:      "no coaching signal",
			candidate: Candidate{Lead: Lead{Role: "Consultant"}, PageText: "Strategy consulting"},
			include:   false,
			reason:    ReasonNoCoachingSignal,
		},
		{
			name:      "assigned role is not a coaching signal",
			candidate: Candidate{Lead: Lead{Role: "Executive Coach", Location: "Boston"}, Title: "Tony's Pizza", PageText: "Wood-fired pizza in Boston, MA"},
			include:   false,
			reason:    ReasonNoCoachingSignal,
		},
		{
			name:      "coaching signal in evidence",
			candidate: Candidate{Lead: Lead{Evidence: "an executive coach based in Miami", Location: "Miami"}},
			include:   true,
			reason:    ReasonIncluded,
			location:  "Miami, FL",
		},
		{
			name:      "all-caps heading is not an acronym",
			candidate: Candidate{Lead: Lead{Location: "Atlanta"}, PageText: "MAKE IT HAPPEN. Executive coaching for founders"},
			include:   true,
			reason:    ReasonIncluded,
			location:  "Atlanta, GA",
		},
		{
			name:      "acronym beside a mixed-case word",
			candidate: Candidate{PageText: "EXECUTIVE COACHING for IT Leaders"},
			include:   false,
			reason:    ReasonExcludedKeyword,
		},
		{
			name:      "definite non-eastern state",
			candidate: Candidate{Lead: Lead{Location: "Austin, TX"}, Title: "Leadership Coach"},
			include:   false,
			reason:    ReasonOutsideEastern,
		},
		{
			name:      "ambiguous location is kept blank",
			candidate: Candidate{Lead: Lead{Location: "Remote worldwide"}, Title: "Executive Coach", Target: "Boston, MA"},
			include:   true,
			reason:    ReasonIncluded,
			location:  "",
		},
		{
			name:      "missing location falls back to eastern target",
			candidate: Candidate{Title: "Executive Coach", Target: "Maryland"},
			include:   true,
			reason:    ReasonIncluded,
			location:  "Maryland",
		},
		{
			name:      "whole-word match only",
			candidate: Candidate{Title: "Executive Coach", PageText: "Reengineering careers"},
			include:   true,
			reason:    ReasonIncluded,
		},
	}

	filter := newTestFilter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filter.Classify(&tt.candidate)
			assert.Equal(t, tt.include, got.Include)
			assert.Equal(t, tt.reason, got.Reason)
			if tt.include {
				assert.Equal(t, tt.location, got.Lead.Location)
			}
		})
	}
}

func TestLeadFilterDefaultsName(t *testing.T) {
	got := newTestFilter().Classify(&Candidate{Title: "Executive Coach"})
	assert.True(t, got.Include)
	assert.Equal(t, "Unknown", got.Lead.Name)
}

func TestShouted(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"MAKE IT HAPPEN", true},
		{"WE DO IT", true},
		{"Make IT happen", false},
		{"IT", false},
		{"Coaching for IT directors", false},
		{"SERVICES: IT, Strategy", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			start := strings.Index(tt.text, "IT")
			assert.Equal(t, tt.want, shouted(tt.text, start, start+2))
		})
	}
}
