package scan

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/baonq-me/screenberry/models"
)

// Fallback extraction from captured HTML, used when live DOM element
// queries fail after the page was already rendered. A failed query then
// degrades to parsing the snapshot instead of losing the whole script or
// href inventory.

// scriptsFromHTML extracts script elements from an HTML snapshot.
func scriptsFromHTML(html string) []models.ScriptElement {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var scripts []models.ScriptElement
	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		var se models.ScriptElement
		if src, ok := sel.Attr("src"); ok {
			se.Src = src
		}
		if se.Src == "" {
			se.Inline = sel.Text()
		}
		scripts = append(scripts, se)
	})
	return scripts
}

// hrefsFromHTML extracts raw anchor hrefs from an HTML snapshot.
// Duplicates are kept; deduplication is the crawler's job.
func hrefsFromHTML(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var hrefs []string
	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok && href != "" {
			hrefs = append(hrefs, href)
		}
	})
	return hrefs
}
