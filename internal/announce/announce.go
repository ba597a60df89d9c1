// Package announce posts newly published articles to a Telegram channel.
package announce

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"inkpad/internal/domain"
	"inkpad/internal/markdown"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	telegramMessageMaxLength = 4096
	summaryMaxRunes          = 1000
)

// Announcer formats published posts and sends them through a Queue.
type Announcer struct {
	queue   *Queue
	chatID  int64
	siteURL string
	log     *slog.Logger
}

func New(sender Sender, chatID int64, siteURL string, log *slog.Logger) *Announcer {
	return &Announcer{
		queue:   NewQueue(sender, DefaultInterval, log),
		chatID:  chatID,
		siteURL: strings.TrimRight(strings.TrimSpace(siteURL), "/"),
		log:     log,
	}
}

// NewTelegram connects to the Bot API with token.
func NewTelegram(token string, chatID int64, siteURL string, log *slog.Logger) (*Announcer, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("token is empty")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}

	return New(api, chatID, siteURL, log), nil
}

// Announce sends one message for post.
func (a *Announcer) Announce(ctx context.Context, post domain.Post) error {
	text := strings.ToValidUTF8(FormatPost(post, a.PostURL(post.ID)), "?")

	message := tgbotapi.NewMessage(a.chatID, text)

	// See https://core.telegram.org/bots/api#markdownv2-style.
	message.ParseMode = tgbotapi.ModeMarkdownV2

	if _, err := a.queue.Send(ctx, message); err != nil {
		return fmt.Errorf("send announcement (postID = %d): %w", post.ID, err)
	}

	a.log.InfoContext(ctx, "Announced post",
		"chatID", a.chatID,
		"postID", post.ID)

	return nil
}

// PostURL is the public address of a post.
func (a *Announcer) PostURL(id int64) string {
	return a.siteURL + "/post/" + strconv.FormatInt(id, 10)
}

func (a *Announcer) Stop() {
	a.queue.Stop()
}

// FormatPost renders a MarkdownV2 announcement: linked title, optional
// category and the summary.
func FormatPost(post domain.Post, postURL string) string {
	var b strings.Builder

	b.WriteString("📝 *New post*\n\n")
	fmt.Fprintf(&b, "*[%s](%s)*\n", markdown.EscapeV2(strings.TrimSpace(post.Title)), markdown.EscapeV2URL(postURL))

	if category := strings.TrimSpace(post.Category); category != "" {
		fmt.Fprintf(&b, "📂 %s\n", markdown.EscapeV2(category))
	}

	if summary := markdown.Truncate(post.Summary, summaryMaxRunes, "..."); summary != "" {
		b.WriteString("\n")
		b.WriteString(markdown.EscapeV2(summary))
	}

	text := b.String()
	if len(text) > telegramMessageMaxLength {
		text = strings.ToValidUTF8(text[:telegramMessageMaxLength], "")
		text = strings.TrimRight(text, "\\")
	}

	return text
}
