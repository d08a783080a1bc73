package extract

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"
)

// htmlRefAttrs lists the element/attribute pairs that carry references worth
// tracking as dependencies.
var htmlRefAttrs = []struct {
	selector string
	attr     string
}{
	{"img", "src"},
	{"script", "src"},
	{"link", "href"},
	{"a", "href"},
	{"source", "src"},
}

func scanHTML(content []byte) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		// malformed HTML is not an error, just no dependencies
		return nil
	}

	var targets []string
	for _, ref := range htmlRefAttrs {
		doc.Find(ref.selector).Each(func(_ int, sel *goquery.Selection) {
			if value, exists := sel.Attr(ref.attr); exists {
				targets = append(targets, value)
			}
		})
	}
	return targets
}
