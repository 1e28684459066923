package format

import (
	"reflect"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestUTF16Len(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"abc", 3},
		{"привет", 6},
		{"📅", 2},
		{"📅 today", 8},
	}
	for _, c := range cases {
		if got := UTF16Len(c.in); got != c.want {
			t.Errorf("UTF16Len(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseMarkdown(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		in       string
		text     string
		entities []tgbotapi.MessageEntity
	}{
		{
			name:     "bold",
			in:       "**Hi** there",
			text:     "Hi there",
			entities: []tgbotapi.MessageEntity{{Type: "bold", Offset: 0, Length: 2}},
		},
		{
			name:     "offsets count surrogate pairs",
			in:       "📅 **Сегодня**",
			text:     "📅 Сегодня",
			entities: []tgbotapi.MessageEntity{{Type: "bold", Offset: 3, Length: 7}},
		},
		{
			name:     "italic both markers",
			in:       "*a* _bc_",
			text:     "a bc",
			entities: []tgbotapi.MessageEntity{{Type: "italic", Offset: 0, Length: 1}, {Type: "italic", Offset: 2, Length: 2}},
		},
		{
			name:     "code keeps markers literal",
			in:       "`x_y*z`",
			text:     "x_y*z",
			entities: []tgbotapi.MessageEntity{{Type: "code", Offset: 0, Length: 5}},
		},
		{
			name:     "header line is bold",
			in:       "# Title\nbody",
			text:     "Title\nbody",
			entities: []tgbotapi.MessageEntity{{Type: "bold", Offset: 0, Length: 5}},
		},
		{
			name: "escaped markers",
			in:   `a\*b\_c\\`,
			text: `a*b_c\`,
		},
		{
			name: "unclosed span dropped",
			in:   "**open",
			text: "open",
		},
		{
			name:     "trailing newlines trimmed",
			in:       "**a**\n\n",
			text:     "a",
			entities: []tgbotapi.MessageEntity{{Type: "bold", Offset: 0, Length: 1}},
		},
		{
			name:     "nested italic in bold",
			in:       "**a _b_**",
			text:     "a b",
			entities: []tgbotapi.MessageEntity{{Type: "bold", Offset: 0, Length: 3}, {Type: "italic", Offset: 2, Length: 1}},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ParseMarkdown(tt.in)
			if got.Text != tt.text {
				t.Fatalf("text = %q, want %q", got.Text, tt.text)
			}
			if len(got.Entities) == 0 && len(tt.entities) == 0 {
				return
			}
			if !reflect.DeepEqual(got.Entities, tt.entities) {
				t.Fatalf("entities = %+v, want %+v", got.Entities, tt.entities)
			}
		})
	}
}

func TestEscapeRoundTrip(t *testing.T) {
	t.Parallel()
	raw := "snake_case *star* `tick` back\\slash"
	got := ParseMarkdown(Escape(raw))
	if got.Text != raw {
		t.Fatalf("text = %q, want %q", got.Text, raw)
	}
	if len(got.Entities) != 0 {
		t.Fatalf("unexpected entities %+v", got.Entities)
	}
}
