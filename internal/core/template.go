package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
)

// Placeholder names understood by the onboarding template
const (
	FieldFirstName      = "first_name"
	FieldSenderName     = "sender_name"
	FieldSchedulingLink = "scheduling_link"
	FieldSchedulingLine = "scheduling_line"
)

// SchedulingFallback replaces {scheduling_link} when no link was given
const SchedulingFallback = "I'll follow up with a kickoff time."

// DefaultTemplate is used when no template file is available
const DefaultTemplate = `Hi {first_name},

Thanks for signing up to work together — I'm excited to get started.

Here's what happens next:
- I'll review your intake details and draft an initial plan
- {scheduling_line}
- I'll share a shared workspace and any prep materials

If you have any immediate questions, just reply here.

Best,
{sender_name}`

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// fallbacks supply a value for placeholders whose field is empty
var fallbacks = map[string]func(fields map[string]string) string{
	FieldSchedulingLink: func(map[string]string) string {
		return SchedulingFallback
	},
	FieldSchedulingLine: func(fields map[string]string) string {
		if link := fields[FieldSchedulingLink]; link != "" {
			return fmt.Sprintf("We'll schedule our kickoff call (%s)", link)
		}
		return "I'll follow up with a kickoff time"
	},
}

// Render substitutes every {name} placeholder in tmpl in a single pass.
// Substituted values are never rescanned. Empty fields count as absent.
func Render(tmpl string, fields map[string]string) (string, error) {
	var missing []string
	seen := make(map[string]bool)

	out := placeholderPattern.ReplaceAllStringFunc(tmpl, func(token string) string {
		name := token[1 : len(token)-1]
		if value := fields[name]; value != "" {
			return value
		}
		if fallback, ok := fallbacks[name]; ok {
			return fallback(fields)
		}
		if !seen[name] {
			seen[name] = true
			missing = append(missing, name)
		}
		return token
	})

	if len(missing) > 0 {
		return "", &TemplateError{Missing: missing}
	}
	return out, nil
}

// LoadTemplate reads the template at path, falling back to DefaultTemplate
// when path is empty or the file does not exist.
func LoadTemplate(path string) (string, error) {
	if path == "" {
		return DefaultTemplate, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultTemplate, nil
		}
		return "", fmt.Errorf("failed to read template %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return DefaultTemplate, nil
	}
	return string(data), nil
}
