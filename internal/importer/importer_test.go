package importer_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"inkpad/internal/domain"
	"inkpad/internal/importer"

	"golang.org/x/text/encoding/simplifiedchinese"
)

type fakeStore struct {
	nextID     int64
	created    []domain.PostInput
	categories []domain.CategoryStat
	failTitle  string
}

func (s *fakeStore) CreatePost(_ context.Context, authorID int64, in domain.PostInput) (*domain.Post, error) {
	if in.Title == s.failTitle {
		return nil, errors.New("store unavailable")
	}

	s.nextID++
	s.created = append(s.created, in)

	return &domain.Post{ID: s.nextID, AuthorID: authorID, Title: in.Title, Content: in.Content}, nil
}

func (s *fakeStore) ListCategories(context.Context) ([]domain.CategoryStat, error) {
	return s.categories, nil
}

func newTestImporter(store importer.Store) *importer.Importer {
	return importer.New(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestDecode(t *testing.T) {
	gbk, err := simplifiedchinese.GBK.NewEncoder().String("# 标题\n\n中文正文")
	if err != nil {
		t.Fatalf("encode GBK: %v", err)
	}

	tests := []struct {
		name     string
		data     []byte
		wantText string
		wantEnc  string
	}{
		{"utf-8", []byte("# 标题"), "# 标题", importer.EncodingUTF8},
		{"utf-8 with BOM", append([]byte{0xEF, 0xBB, 0xBF}, "# 标题"...), "# 标题", importer.EncodingUTF8BOM},
		{"gbk", []byte(gbk), "# 标题\n\n中文正文", importer.EncodingGBK},
		{"latin-1", []byte{'c', 'a', 'f', 0xE9, 0xFF}, "caféÿ", importer.EncodingLatin1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, enc := importer.Decode(tt.data)
			if text != tt.wantText || enc != tt.wantEnc {
				t.Fatalf("Decode = (%q, %q), want (%q, %q)", text, enc, tt.wantText, tt.wantEnc)
			}
		})
	}
}

func TestImportMarkdown(t *testing.T) {
	store := &fakeStore{categories: []domain.CategoryStat{
		{Category: domain.Category{ID: 7, Name: "Go"}},
	}}
	im := newTestImporter(store)

	content := "---\ntitle: 缓存设计\nsummary: 一句话摘要\ncategory: go\ntags: [cache, lru]\n---\n\n正文第一段。\n"

	post, err := im.ImportMarkdown(context.Background(), 1, importer.File{Name: "notes.md", Data: []byte(content)})
	if err != nil {
		t.Fatalf("ImportMarkdown returned error: %v", err)
	}

	if post.ID != 1 || post.Title != "缓存设计" {
		t.Fatalf("unexpected post: %+v", post)
	}

	in := store.created[0]
	if in.Published {
		t.Fatalf("expected imported post to be a draft")
	}
	if in.Summary != "一句话摘要" || in.Content != "正文第一段。" {
		t.Fatalf("unexpected input: %+v", in)
	}
	if in.CategoryID == nil || *in.CategoryID != 7 {
		t.Fatalf("expected category 7, got %v", in.CategoryID)
	}
	if len(in.Tags) != 2 || in.Tags[0] != "cache" || in.Tags[1] != "lru" {
		t.Fatalf("unexpected tags: %v", in.Tags)
	}
}

func TestImportMarkdownTitleFallbacks(t *testing.T) {
	store := &fakeStore{}
	im := newTestImporter(store)
	ctx := context.Background()

	if _, err := im.ImportMarkdown(ctx, 1, importer.File{Name: "a.md", Data: []byte("# 标题行\n\n正文")}); err != nil {
		t.Fatalf("ImportMarkdown returned error: %v", err)
	}
	if _, err := im.ImportMarkdown(ctx, 1, importer.File{Name: "dir/周报 第一期.MD", Data: []byte("只有正文")}); err != nil {
		t.Fatalf("ImportMarkdown returned error: %v", err)
	}

	if store.created[0].Title != "标题行" || store.created[0].Content != "正文" {
		t.Fatalf("unexpected heading import: %+v", store.created[0])
	}
	if store.created[1].Title != "周报 第一期" {
		t.Fatalf("expected filename title, got %q", store.created[1].Title)
	}
}

func TestImportMarkdownRejectsOtherFiles(t *testing.T) {
	im := newTestImporter(&fakeStore{})

	_, err := im.ImportMarkdown(context.Background(), 1, importer.File{Name: "notes.txt", Data: []byte("x")})
	if !errors.Is(err, importer.ErrUnsupportedFile) || !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected unsupported file error, got %v", err)
	}
}

func TestImportMarkdownBatch(t *testing.T) {
	store := &fakeStore{failTitle: "broken"}
	im := newTestImporter(store)

	result, err := im.ImportMarkdownBatch(context.Background(), 1, []importer.File{
		{Name: "one.md", Data: []byte("# 第一篇\n\n正文")},
		{Name: "image.png", Data: []byte{0x89, 'P', 'N', 'G'}},
		{Name: "", Data: []byte("ignored")},
		{Name: "broken.md", Data: []byte("正文")},
		{Name: "bad.md", Data: []byte("---\ntitle: [\n---\n正文")},
		{Name: "two.md", Data: []byte("第二篇正文")},
	})
	if err != nil {
		t.Fatalf("ImportMarkdownBatch returned error: %v", err)
	}

	if len(result.Imported) != 2 || result.Imported[0].Title != "第一篇" || result.Imported[1].Source != "two.md" {
		t.Fatalf("unexpected imported: %+v", result.Imported)
	}

	var failed []string
	for _, f := range result.Failed {
		failed = append(failed, f.Source)
	}
	if strings.Join(failed, ",") != "image.png,broken.md,bad.md" {
		t.Fatalf("unexpected failures: %+v", result.Failed)
	}
}

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Test feed</title>
  <link>https://example.com</link>
  <description>Feed for tests</description>
  <item>
    <title>Inline post</title>
    <link>https://example.com/inline</link>
    <category>go</category>
    <description><![CDATA[<p>First <b>paragraph</b>.</p><script>alert(1)</script><p>Second<br>line.</p>]]></description>
  </item>
  <item>
    <title>Linked post</title>
    <link>{{server}}/article</link>
  </item>
  <item>
    <title>Empty post</title>
  </item>
  <item>
    <title>Beyond limit</title>
    <description>Never imported.</description>
  </item>
</channel>
</rss>`

const testArticle = `<!DOCTYPE html>
<html><head><title>Linked post</title></head>
<body>
<nav><a href="/">Home</a></nav>
<article>
  <h1>Linked post</h1>
  <p>Readable content lives in the article body and is long enough to be picked as the main candidate of the page.</p>
  <p>A second paragraph adds more words, commas, and sentences, so that the extractor scores this node highly.</p>
  <p>The third paragraph closes the article with a distinctive marker: lighthouse-42.</p>
</article>
<footer>Copyright</footer>
</body></html>`

func TestImportFeed(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("expected User-Agent header")
		}

		switch r.URL.Path {
		case "/feed.xml":
			w.Header().Set("Content-Type", "application/rss+xml")
			_, _ = io.WriteString(w, strings.ReplaceAll(testFeed, "{{server}}", srv.URL))
		case "/article":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = io.WriteString(w, testArticle)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	store := &fakeStore{}
	im := newTestImporter(store)

	result, err := im.ImportFeed(context.Background(), 3, srv.URL+"/feed.xml", 3)
	if err != nil {
		t.Fatalf("ImportFeed returned error: %v", err)
	}

	if len(result.Imported) != 2 {
		t.Fatalf("expected two imported items, got %+v", result)
	}
	if len(result.Failed) != 1 || result.Failed[0].Source != "Empty post" {
		t.Fatalf("unexpected failures: %+v", result.Failed)
	}

	inline := store.created[0]
	wantInline := "First paragraph.\n\nSecond\nline.\n\n[https://example.com/inline](https://example.com/inline)"
	if inline.Content != wantInline {
		t.Fatalf("unexpected inline content:\n%q\nwant\n%q", inline.Content, wantInline)
	}
	if len(inline.Tags) != 1 || inline.Tags[0] != "go" || inline.Published {
		t.Fatalf("unexpected inline input: %+v", inline)
	}
	if inline.SourceURL != "https://example.com/inline" {
		t.Fatalf("expected item link as source URL, got %q", inline.SourceURL)
	}

	linked := store.created[1]
	if !strings.Contains(linked.Content, "lighthouse-42") {
		t.Fatalf("expected article text in content, got %q", linked.Content)
	}
}

func TestImportFeedRejectsBadURL(t *testing.T) {
	im := newTestImporter(&fakeStore{})

	for _, feedURL := range []string{"", "ftp://example.com/feed", "not a url"} {
		if _, err := im.ImportFeed(context.Background(), 1, feedURL, 0); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected invalid input for %q, got %v", feedURL, err)
		}
	}
}
