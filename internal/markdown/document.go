package markdown

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontMatterDelimiter = "---"

//nolint:gochecknoglobals // Compiled once, never mutated.
var titleHeadingRe = regexp.MustCompile(`^#+\s+(.+)$`)

// Document is a markdown file split into its metadata and body.
type Document struct {
	Title    string
	Summary  string
	Category string
	Tags     []string
	Body     string
}

type frontMatter struct {
	Title    string  `yaml:"title"`
	Summary  string  `yaml:"summary"`
	Category string  `yaml:"category"`
	Tags     tagList `yaml:"tags"`
}

// tagList accepts both `tags: [a, b]` and `tags: a, b`.
type tagList []string

func (t *tagList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		for _, part := range strings.Split(node.Value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				*t = append(*t, part)
			}
		}

		return nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		*t = items

		return nil
	default:
		return fmt.Errorf("tags: unexpected YAML node kind %d", node.Kind)
	}
}

// ParseDocument extracts front matter and title from a markdown file. The
// title comes from front matter, else from the first heading, which is then
// dropped from the body. Malformed front matter is an error.
func ParseDocument(content string) (Document, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")

	var doc Document

	if len(lines) > 0 && strings.TrimSpace(lines[0]) == frontMatterDelimiter {
		end := -1
		for i := 1; i < len(lines); i++ {
			if strings.TrimSpace(lines[i]) == frontMatterDelimiter {
				end = i
				break
			}
		}

		if end > 0 {
			var fm frontMatter
			if err := yaml.Unmarshal([]byte(strings.Join(lines[1:end], "\n")), &fm); err != nil {
				return Document{}, fmt.Errorf("parse front matter: %w", err)
			}

			doc.Title = strings.TrimSpace(fm.Title)
			doc.Summary = strings.TrimSpace(fm.Summary)
			doc.Category = strings.TrimSpace(fm.Category)
			doc.Tags = []string(fm.Tags)
			lines = lines[end+1:]
		}
	}

	body := make([]string, 0, len(lines))
	for _, line := range lines {
		if doc.Title == "" {
			if m := titleHeadingRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
				doc.Title = strings.TrimSpace(m[1])
				continue
			}
		}

		body = append(body, line)
	}

	doc.Body = strings.TrimSpace(strings.Join(body, "\n"))

	return doc, nil
}
