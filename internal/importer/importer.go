// Package importer turns Markdown files and RSS/Atom feeds into draft posts.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"inkpad/internal/domain"
	"inkpad/internal/markdown"

	"github.com/mmcdole/gofeed"
)

const (
	fetchTimeout = 20 * time.Second
	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"

	markdownExt = ".md"
)

var ErrUnsupportedFile = errors.New("only .md files are supported")

// Store creates posts on behalf of an author. Summaries left empty are
// expected to be filled in by the store.
type Store interface {
	CreatePost(ctx context.Context, authorID int64, in domain.PostInput) (*domain.Post, error)
	ListCategories(ctx context.Context) ([]domain.CategoryStat, error)
}

// File is one uploaded or local file.
type File struct {
	Name string
	Data []byte
}

type Imported struct {
	PostID int64  `json:"postId"`
	Title  string `json:"title"`
	Source string `json:"source"`
}

type Failure struct {
	Source string `json:"source"`
	Reason string `json:"reason"`
}

// Result reports a batch import. A failed item never aborts the batch.
type Result struct {
	Imported []Imported `json:"imported"`
	Failed   []Failure  `json:"failed"`
}

type Importer struct {
	store      Store
	client     *http.Client
	feedParser *gofeed.Parser
	log        *slog.Logger
}

func New(store Store, log *slog.Logger) *Importer {
	client := &http.Client{Timeout: fetchTimeout}

	feedParser := gofeed.NewParser()
	feedParser.Client = client
	feedParser.UserAgent = userAgent

	return &Importer{
		store:      store,
		client:     client,
		feedParser: feedParser,
		log:        log,
	}
}

// ImportMarkdown creates a single draft from a Markdown file.
func (im *Importer) ImportMarkdown(
	ctx context.Context,
	authorID int64,
	file File,
) (*domain.Post, error) {
	in, err := im.markdownInput(ctx, file)
	if err != nil {
		return nil, err
	}

	post, err := im.store.CreatePost(ctx, authorID, in)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	im.log.InfoContext(ctx, "Imported markdown file",
		"authorID", authorID,
		"file", file.Name,
		"postID", post.ID)

	return post, nil
}

// ImportMarkdownBatch imports every file and collects per-file failures.
func (im *Importer) ImportMarkdownBatch(
	ctx context.Context,
	authorID int64,
	files []File,
) (Result, error) {
	var result Result

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("import batch: %w", err)
		}

		if strings.TrimSpace(file.Name) == "" {
			continue
		}

		post, err := im.ImportMarkdown(ctx, authorID, file)
		if err != nil {
			im.log.WarnContext(ctx, "Failed to import markdown file",
				"error", err,
				"authorID", authorID,
				"file", file.Name)

			result.Failed = append(result.Failed, Failure{Source: file.Name, Reason: err.Error()})

			continue
		}

		result.Imported = append(result.Imported, Imported{
			PostID: post.ID,
			Title:  post.Title,
			Source: file.Name,
		})
	}

	return result, nil
}

func (im *Importer) markdownInput(ctx context.Context, file File) (domain.PostInput, error) {
	if !strings.EqualFold(filepath.Ext(file.Name), markdownExt) {
		return domain.PostInput{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, ErrUnsupportedFile)
	}

	text, enc := Decode(file.Data)
	if enc != EncodingUTF8 {
		im.log.DebugContext(ctx, "Decoded markdown file",
			"encoding", enc,
			"file", file.Name)
	}

	doc, err := markdown.ParseDocument(text)
	if err != nil {
		return domain.PostInput{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	title := doc.Title
	if title == "" {
		base := filepath.Base(file.Name)
		title = strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
	}

	in := domain.PostInput{
		Title:   title,
		Content: doc.Body,
		Summary: doc.Summary,
		Tags:    doc.Tags,
	}

	if doc.Category != "" {
		in.CategoryID, err = im.categoryID(ctx, doc.Category)
		if err != nil {
			return domain.PostInput{}, err
		}
	}

	return in, nil
}

// categoryID resolves a category by name. Unknown names leave the post
// uncategorised.
func (im *Importer) categoryID(ctx context.Context, name string) (*int64, error) {
	categories, err := im.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	for _, c := range categories {
		if strings.EqualFold(c.Name, name) {
			id := c.ID
			return &id, nil
		}
	}

	im.log.WarnContext(ctx, "Unknown category in imported file",
		"category", name)

	return nil, nil //nolint:nilnil // Absent category is not an error.
}
