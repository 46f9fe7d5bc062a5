package normalize

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// StripMarkup reduces an HTML document to its visible text. Script and style
// bodies are dropped, every tag becomes a word break, entities are decoded
// and whitespace runs collapse to a single space.
func StripMarkup(doc string) string {
	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(doc))
	skipping := false

	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(sb.String()), " ")
		case html.TextToken:
			if !skipping {
				sb.Write(z.Text())
			}
		case html.StartTagToken:
			if isHidden(z) {
				skipping = true
			}
			sb.WriteByte(' ')
		case html.EndTagToken:
			if isHidden(z) {
				skipping = false
			}
			sb.WriteByte(' ')
		default:
			// self-closing tags, comments and doctypes
			sb.WriteByte(' ')
		}
	}
}

func isHidden(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch atom.Lookup(name) {
	case atom.Script, atom.Style:
		return true
	}
	return false
}
