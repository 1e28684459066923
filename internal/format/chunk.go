package format

import (
	"strings"
	"unicode/utf16"
)

// MaxMessageLen is Telegram's limit for a text message, in UTF-16 units.
const MaxMessageLen = 4096

// Chunk splits text into pieces of at most limit UTF-16 units, breaking at
// line boundaries where possible. Lines longer than limit are split by rune.
func Chunk(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxMessageLen
	}
	if UTF16Len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if s := strings.TrimRight(cur.String(), "\n"); s != "" {
			chunks = append(chunks, s)
		}
		cur.Reset()
		curLen = 0
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		n := UTF16Len(line)
		if curLen+n <= limit {
			cur.WriteString(line)
			curLen += n
			continue
		}
		flush()
		for n > limit {
			head, tail := splitAt(line, limit)
			chunks = append(chunks, head)
			line = tail
			n = UTF16Len(line)
		}
		cur.WriteString(line)
		curLen = n
	}
	flush()
	return chunks
}

// splitAt cuts s after at most limit UTF-16 units without breaking a rune.
func splitAt(s string, limit int) (string, string) {
	n := 0
	for i, r := range s {
		w := utf16.RuneLen(r)
		if n+w > limit {
			return s[:i], s[i:]
		}
		n += w
	}
	return s, ""
}
