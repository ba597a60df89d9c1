package summary

import (
	"regexp"
	"strings"

	"mvdan.cc/xurls/v2"
)

type cleaningStep struct {
	name        string
	re          *regexp.Regexp
	replacement string
}

// cleaningSteps is applied top to bottom. Images go before links so that
// alt text is dropped. snake_case goes before emphasis so that identifier
// underscores are not read as markup.
//
//nolint:gochecknoglobals // Compiled once, never mutated.
var cleaningSteps = []cleaningStep{
	{"fenced code", regexp.MustCompile("(?s)```.*?```"), ""},
	{"inline code", regexp.MustCompile("`[^`]+`"), ""},
	{"heading marker", regexp.MustCompile(`(?m)^#+\s+`), ""},
	{"image", regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`), ""},
	{"link", regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`), "${1}"},
	{"snake_case", regexp.MustCompile(`\b[a-z_]+(?:_[a-z]+)+\b`), " "},
	{"emphasis", regexp.MustCompile(`[*_]{1,2}([^*_]+)[*_]{1,2}`), "${1}"},
	{"blockquote marker", regexp.MustCompile(`(?m)^>\s+`), ""},
	{"bullet marker", regexp.MustCompile(`(?m)^\s*[-*+]\s+`), ""},
	{"numbered marker", regexp.MustCompile(`(?m)^\s*\d+\.\s+`), ""},
	{"horizontal rule", regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`), ""},
	{"shell symbol", regexp.MustCompile(`[$#>]\s*`), ""},
	{"escaped whitespace", regexp.MustCompile(`\\[nrt]`), ""},
	{"parenthetical", regexp.MustCompile(`\([^)]*\)`), ""},
	{"full-width parenthetical", regexp.MustCompile(`（[^）]*）`), ""},
	{"bracketed", regexp.MustCompile(`\[[^\]]*\]`), ""},
	{"corner bracketed", regexp.MustCompile(`[「『][^」』]*[」』]`), ""},
	{"url", xurls.Strict(), ""},
	{"url remnant", regexp.MustCompile(`https?:\S*`), ""},
	{"www host", regexp.MustCompile(`www\.\S*`), ""},
	{"ipv4", regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`), ""},
	{"CamelCase", regexp.MustCompile(`\b[A-Z][a-z]+(?:[A-Z][a-z]+)+\b`), " "},
	{"code file", regexp.MustCompile(`\b\w+\.(?:php|js|py|java|sql|sh|bash|yml|yaml|json|xml|html|css)\b`), ""},
	{"disallowed char", regexp.MustCompile(`[^\p{L}\p{N}_\s，。！？、；：“”‘’《》.,!?\-()·"']`), " "},
	{"whitespace", regexp.MustCompile(`\s+`), " "},
}

// clean strips markup and technical noise from content, leaving prose.
// Unrecognised syntax is left in place as literal text.
func clean(content string) string {
	for _, step := range cleaningSteps {
		content = step.re.ReplaceAllString(content, step.replacement)
	}

	return strings.TrimSpace(content)
}
