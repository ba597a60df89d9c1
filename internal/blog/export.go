package blog

import (
	"context"
	"fmt"
	"strings"

	"inkpad/internal/domain"

	"gopkg.in/yaml.v3"
)

const exportTimeLayout = "2006-01-02 15:04"

type exportFrontMatter struct {
	Title    string `yaml:"title"`
	Author   string `yaml:"author"`
	Date     string `yaml:"date"`
	Updated  string `yaml:"updated,omitempty"`
	Category string `yaml:"category,omitempty"`
	Tags     string `yaml:"tags,omitempty"`
	Summary  string `yaml:"summary,omitempty"`
}

// Export is a post rendered as a Markdown file.
type Export struct {
	Filename string
	Content  string
}

// ExportMarkdown renders a post the viewer can see as Markdown with front
// matter. Exports do not count as views.
func (s *Service) ExportMarkdown(ctx context.Context, viewerID int64, postID int64) (Export, error) {
	post, err := s.visiblePost(ctx, viewerID, postID)
	if err != nil {
		return Export{}, err
	}

	content, err := renderMarkdown(post)
	if err != nil {
		return Export{}, err
	}

	return Export{Filename: exportFilename(post.Title), Content: content}, nil
}

func renderMarkdown(post *domain.Post) (string, error) {
	fm := exportFrontMatter{
		Title:    post.Title,
		Author:   post.AuthorName,
		Date:     post.CreatedAt.Format(exportTimeLayout),
		Category: post.Category,
		Summary:  post.Summary,
	}

	if !post.UpdatedAt.Equal(post.CreatedAt) {
		fm.Updated = post.UpdatedAt.Format(exportTimeLayout)
	}

	tags := make([]string, 0, len(post.Tags))
	for _, t := range post.Tags {
		tags = append(tags, t.Name)
	}
	fm.Tags = strings.Join(tags, ", ")

	header, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("marshal front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(header)
	b.WriteString("---\n\n# ")
	b.WriteString(post.Title)
	b.WriteString("\n\n")
	b.WriteString(strings.TrimSpace(post.Content))
	b.WriteString("\n")

	return b.String(), nil
}

//nolint:gochecknoglobals // Immutable replacer.
var filenameReplacer = strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_")

func exportFilename(title string) string {
	return filenameReplacer.Replace(strings.TrimSpace(title)) + ".md"
}
