package markdown

import (
	"strings"
	"unicode/utf8"
)

// mdV2Reserved lists the characters MarkdownV2 treats as markup, see
// https://core.telegram.org/bots/api#markdownv2-style. The backslash is
// reserved too.
const mdV2Reserved = `\_*[]()~>#+-=|{}.!` + "`"

// EscapeV2 escapes text for Telegram's MarkdownV2 parse mode.
func EscapeV2(input string) string {
	if !strings.ContainsAny(input, mdV2Reserved) {
		return input
	}

	var b strings.Builder
	b.Grow(len(input) + len(input)/4)

	for _, r := range input {
		if r < utf8.RuneSelf && strings.IndexByte(mdV2Reserved, byte(r)) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}

	return b.String()
}

// EscapeV2URL escapes a URL placed inside the (...) part of an inline link,
// where only ')' and '\' are special.
func EscapeV2URL(input string) string {
	return strings.NewReplacer(`\`, `\\`, `)`, `\)`).Replace(input)
}
