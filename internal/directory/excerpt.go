package directory

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const excerptLength = 160

// Excerpt returns the visible text of an HTML fragment, whitespace
// collapsed, cut to at most limit runes with a trailing "...".
func Excerpt(fragment string, limit int) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	text := strings.Join(strings.Fields(htmlText(fragment)), " ")
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return strings.TrimRight(string(runes[:limit]), " ") + "..."
}

func htmlText(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.StartTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				skip++
			case "br", "p", "div", "li":
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				if skip > 0 {
					skip--
				}
			case "p", "div", "li":
				b.WriteByte(' ')
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}
