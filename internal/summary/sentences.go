package summary

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const minSentenceRunes = 8

//nolint:gochecknoglobals // Compiled once, never mutated.
var (
	sentenceTerminatorRe = regexp.MustCompile(`[。！？.!?]+`)
	keyValueRe           = regexp.MustCompile(`^[\w\-./]+=\S*$`)
	longDigitRunRe       = regexp.MustCompile(`\d{10,}`)
	identifierOnlyRe     = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)

	technicalMarkers = []string{
		"sudo ", "pip ", "npm ", "yum ", "apt ", "function(", "class ",
		"import ", "def ", "=>", "->", "http://", "https://", "127.0.",
		"192.168.", "0.0.0", "localhost", "SELECT ", "INSERT ",
		"UPDATE ", "DELETE ", "CREATE ", "ALTER ", "DROP ",
		"GRANT ", "REVOKE ", "version(", "database(", "table(",
		"column(", "index(", "schema(", "user(", "password(",
		"安装 ", "配置 ", "部署 ", "服务器 ", "端口 ", "协议 ",
		"版本 ", "时间 ", "作者 ", "标签 ", "生成时间 ",
	}
)

// splitSentences cuts cleaned text on terminator runs and keeps only the
// fragments that read like prose.
func splitSentences(text string) []string {
	parts := sentenceTerminatorRe.Split(text, -1)

	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		s := strings.TrimSpace(part)
		if isNoiseSentence(s) {
			continue
		}

		sentences = append(sentences, s)
	}

	return sentences
}

func isNoiseSentence(s string) bool {
	if utf8.RuneCountInString(s) < minSentenceRunes {
		return true
	}

	for _, marker := range technicalMarkers {
		if strings.Contains(s, marker) {
			return true
		}
	}

	return keyValueRe.MatchString(s) ||
		longDigitRunRe.MatchString(s) ||
		identifierOnlyRe.MatchString(s)
}
