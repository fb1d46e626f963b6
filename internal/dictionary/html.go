package dictionary

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"

	"github.com/vocabkeep/vocabkeep/internal/domain"
)

// htmlTagPattern detects the markup dictionary dumps commonly carry.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|sup|sub|h[1-6]|blockquote)[\s>/]`)

func containsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// cleanEntry rewrites HTML in an entry in place. Meanings keep their emphasis
// as Markdown; headwords, pronunciations, examples and synonyms become plain text.
func cleanEntry(e *domain.DictionaryEntry) {
	e.Word = plainText(e.Word)
	e.Pronunciation = plainText(e.Pronunciation)
	for i := range e.Definitions {
		d := &e.Definitions[i]
		d.PartOfSpeech = plainText(d.PartOfSpeech)
		d.Meaning = htmlToMarkdown(d.Meaning)
		for j := range d.Examples {
			d.Examples[j] = plainText(d.Examples[j])
		}
	}
	for i := range e.Synonyms {
		e.Synonyms[i] = plainText(e.Synonyms[i])
	}
	for i := range e.Antonyms {
		e.Antonyms[i] = plainText(e.Antonyms[i])
	}
}

// htmlToMarkdown converts HTML content to Markdown.
// Input without HTML, or that fails to convert, is returned unchanged.
func htmlToMarkdown(s string) string {
	if s == "" || !containsHTML(s) {
		return s
	}
	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(markdown)
}

// plainText strips tags and collapses whitespace.
func plainText(s string) string {
	if s == "" || !containsHTML(s) {
		return s
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var buf strings.Builder
	extractText(doc, &buf)
	return strings.Join(strings.Fields(buf.String()), " ")
}

func extractText(n *html.Node, buf *strings.Builder) {
	if n.Type == html.TextNode {
		buf.WriteString(n.Data)
	}
	if n.Type == html.ElementNode && n.Data == "br" {
		buf.WriteString(" ")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractText(c, buf)
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6":
			buf.WriteString(" ")
		}
	}
}
