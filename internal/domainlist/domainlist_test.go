package domainlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestIsBlocked(t *testing.T) {
	c := NewChecker([]string{"LinkedIn.com", " www.yelp.com ", ".bing.com", ""}, zap.NewNop())

	tests := []struct {
		host string
		want bool
	}{
		{"linkedin.com", true},
		{"www.linkedin.com", true},
		{"uk.linkedin.com", true},
		{"yelp.com", true},
		{"bing.com.", true},
		{"notlinkedin.com", false},
		{"coach.example.com", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsBlocked(tt.host))
		})
	}
}

func TestEmptyCheckerBlocksNothing(t *testing.T) {
	c := NewChecker(nil, nil)
	assert.False(t, c.IsBlocked("linkedin.com"))
}
