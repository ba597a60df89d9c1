package importer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"inkpad/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"
)

const (
	DefaultFeedItemLimit = 20

	blockSelector = "p, div, li, h1, h2, h3, h4, h5, h6, blockquote, pre, tr"
)

// ImportFeed creates a draft for each of the first limit items of an RSS or
// Atom feed. Items that carry only a link get their text from the linked
// article.
func (im *Importer) ImportFeed(
	ctx context.Context,
	authorID int64,
	feedURL string,
	limit int,
) (Result, error) {
	feedURL = strings.TrimSpace(feedURL)
	if feedURL == "" {
		return Result{}, fmt.Errorf("%w: feed URL is empty", domain.ErrInvalidInput)
	}

	if u, err := url.Parse(feedURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return Result{}, fmt.Errorf("%w: feed URL must be http(s)", domain.ErrInvalidInput)
	}

	if limit <= 0 {
		limit = DefaultFeedItemLimit
	}

	parsed, err := im.feedParser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return Result{}, fmt.Errorf("parse feed (URL = %s): %w", feedURL, err)
	}

	if len(parsed.Items) == 0 {
		return Result{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, errors.New("feed has no items"))
	}

	var result Result

	for _, item := range parsed.Items[:min(limit, len(parsed.Items))] {
		source := strings.TrimSpace(item.Link)
		if source == "" {
			source = strings.TrimSpace(item.Title)
		}

		in, itemErr := im.feedItemInput(ctx, item)
		if itemErr == nil {
			var post *domain.Post
			if post, itemErr = im.store.CreatePost(ctx, authorID, in); itemErr == nil {
				result.Imported = append(result.Imported, Imported{
					PostID: post.ID,
					Title:  post.Title,
					Source: source,
				})

				continue
			}
		}

		im.log.WarnContext(ctx, "Failed to import feed item",
			"error", itemErr,
			"authorID", authorID,
			"feedURL", feedURL,
			"item", source)

		result.Failed = append(result.Failed, Failure{Source: source, Reason: itemErr.Error()})
	}

	im.log.InfoContext(ctx, "Imported feed",
		"authorID", authorID,
		"failed", len(result.Failed),
		"feedURL", feedURL,
		"imported", len(result.Imported))

	return result, nil
}

func (im *Importer) feedItemInput(ctx context.Context, item *gofeed.Item) (domain.PostInput, error) {
	title := strings.TrimSpace(item.Title)
	link := strings.TrimSpace(item.Link)

	html := item.Content
	if strings.TrimSpace(html) == "" {
		html = item.Description
	}

	text, err := htmlToText(html)
	if err != nil {
		return domain.PostInput{}, fmt.Errorf("convert item HTML: %w", err)
	}

	if text == "" && link != "" {
		var articleTitle string
		if text, articleTitle, err = im.fetchArticle(ctx, link); err != nil {
			return domain.PostInput{}, fmt.Errorf("fetch article: %w", err)
		}
		if title == "" {
			title = articleTitle
		}
	}

	if text == "" {
		return domain.PostInput{}, fmt.Errorf("%w: item has no content", domain.ErrInvalidInput)
	}
	if title == "" {
		return domain.PostInput{}, fmt.Errorf("%w: item has no title", domain.ErrInvalidInput)
	}

	if link != "" {
		text += "\n\n[" + link + "](" + link + ")"
	}

	tags := make([]string, 0, len(item.Categories))
	for _, c := range item.Categories {
		if c = strings.TrimSpace(c); c != "" {
			tags = append(tags, c)
		}
	}

	return domain.PostInput{Title: title, Content: text, Tags: tags, SourceURL: link}, nil
}

// fetchArticle downloads a page and extracts its readable text.
func (im *Importer) fetchArticle(ctx context.Context, rawURL string) (string, string, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("parse URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := im.client.Do(req) //nolint:gosec // URL comes from a feed the author chose.
	if err != nil {
		return "", "", fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			im.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"operation", "fetchArticle",
				"url", rawURL)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("do request: unexpected status: %d", resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, pageURL)
	if err != nil {
		return "", "", fmt.Errorf("extract article: %w", err)
	}

	return normalizeText(article.TextContent), strings.TrimSpace(article.Title), nil
}

// htmlToText renders an HTML fragment as plain paragraphs.
func htmlToText(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("create document from reader: %w", err)
	}

	doc.Find("script, style").Remove()
	doc.Find("br").Each(func(_ int, br *goquery.Selection) {
		br.ReplaceWithHtml("\n")
	})
	doc.Find(blockSelector).Each(func(_ int, block *goquery.Selection) {
		block.AppendHtml("\n\n")
	})

	return normalizeText(doc.Text()), nil
}

// normalizeText trims every line and keeps at most one blank line between
// paragraphs.
func normalizeText(text string) string {
	var b strings.Builder

	blank := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			blank = b.Len() > 0
			continue
		}

		if blank {
			b.WriteString("\n\n")
		} else if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(line)
		blank = false
	}

	return b.String()
}
