package format

import (
	"sort"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ParseResult contains plain text and message entities
type ParseResult struct {
	Text     string
	Entities []tgbotapi.MessageEntity
}

// UTF16Len returns the length of s in UTF-16 code units, the unit Telegram
// uses for entity offsets and message limits.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

var escaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `_`, `\_`, "`", "\\`")

// Escape protects user text so ParseMarkdown renders it literally.
func Escape(s string) string {
	return escaper.Replace(s)
}

type span struct {
	kind   string
	marker string
	start  int
}

// ParseMarkdown converts a small Markdown subset to Telegram entities:
//   - **bold**
//   - *italic* or _italic_
//   - `code`
//   - # Header (whole line bold)
//
// A backslash makes the next marker character literal. Spans left open at
// the end of the text are dropped.
func ParseMarkdown(text string) ParseResult {
	var (
		out      strings.Builder
		entities []tgbotapi.MessageEntity
		open     []span
		offset   int
		header   = -1
	)

	emit := func(s string) {
		out.WriteString(s)
		offset += UTF16Len(s)
	}
	closeSpan := func(kind string, start int) {
		if offset > start {
			entities = append(entities, tgbotapi.MessageEntity{Type: kind, Offset: start, Length: offset - start})
		}
	}
	top := func() *span {
		if len(open) == 0 {
			return nil
		}
		return &open[len(open)-1]
	}
	toggle := func(kind, marker string) {
		for i := len(open) - 1; i >= 0; i-- {
			if open[i].marker == marker {
				closeSpan(open[i].kind, open[i].start)
				open = append(open[:i], open[i+1:]...)
				return
			}
		}
		open = append(open, span{kind: kind, marker: marker, start: offset})
	}

	lineStart := true
	for i := 0; i < len(text); {
		rest := text[i:]

		if lineStart {
			lineStart = false
			if h := headerPrefix(rest); h > 0 {
				header = offset
				i += h
				continue
			}
		}

		if sp := top(); sp != nil && sp.kind == "code" {
			if rest[0] == '`' {
				closeSpan("code", sp.start)
				open = open[:len(open)-1]
				i++
				continue
			}
		} else {
			switch {
			case rest[0] == '\\' && len(rest) > 1 && strings.ContainsRune("\\*_`", rune(rest[1])):
				emit(rest[1:2])
				i += 2
				continue
			case strings.HasPrefix(rest, "**"):
				toggle("bold", "**")
				i += 2
				continue
			case rest[0] == '*':
				toggle("italic", "*")
				i++
				continue
			case rest[0] == '_':
				toggle("italic", "_")
				i++
				continue
			case rest[0] == '`':
				open = append(open, span{kind: "code", marker: "`", start: offset})
				i++
				continue
			}
		}

		if rest[0] == '\n' {
			if header >= 0 {
				closeSpan("bold", header)
				header = -1
			}
			lineStart = true
		}
		_, size := utf8.DecodeRuneInString(rest)
		emit(rest[:size])
		i += size
	}
	if header >= 0 {
		closeSpan("bold", header)
	}

	result := strings.TrimRight(out.String(), " \n")
	limit := UTF16Len(result)
	kept := entities[:0]
	for _, e := range entities {
		if e.Offset >= limit {
			continue
		}
		if e.Offset+e.Length > limit {
			e.Length = limit - e.Offset
		}
		kept = append(kept, e)
	}

	// Telegram expects entities ordered by offset.
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Offset < kept[j].Offset })

	return ParseResult{Text: result, Entities: kept}
}

func headerPrefix(s string) int {
	n := 0
	for n < len(s) && n < 6 && s[n] == '#' {
		n++
	}
	if n == 0 || n >= len(s) || s[n] != ' ' {
		return 0
	}
	for n < len(s) && s[n] == ' ' {
		n++
	}
	return n
}
