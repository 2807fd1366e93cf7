package soffice

import (
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockSelector lists the elements that end a line of text.
const blockSelector = "p, div, li, h1, h2, h3, h4, h5, h6, tr, table, section, article, pre, blockquote, dt, dd"

// lineBreak marks intended line ends while source newlines are collapsed
// as ordinary HTML whitespace.
const lineBreak = "\u2029"

var whitespace = regexp.MustCompile(`[\s\x{00a0}]+`)

// flattenHTML reduces converter HTML to readable text.
// Block elements end lines and table cells are joined with " | ".
func flattenHTML(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}

	doc.Find("script, style, head, noscript").Remove()
	doc.Find("pre").Each(func(_ int, s *goquery.Selection) {
		s.SetText(strings.ReplaceAll(s.Text(), "\n", lineBreak))
	})
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		var cells []string
		row.ChildrenFiltered("td, th").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.Join(strings.Fields(cell.Text()), " "))
		})
		row.SetText(strings.Join(cells, " | "))
	})
	doc.Find("br").ReplaceWithHtml(lineBreak)
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(lineBreak)
	})

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	lines := strings.Split(root.Text(), lineBreak)
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(whitespace.ReplaceAllString(line, " "))
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n"), nil
}
