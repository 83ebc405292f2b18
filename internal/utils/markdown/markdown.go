package markdown

import (
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

var (
	blankRunsRe = regexp.MustCompile(`\n{3,}`)
	imageLineRe = regexp.MustCompile(`!\[[^\]]*\]\([^\)]+\)`)
)

// ConvertDescriptionHTML converts a product description block to markdown
// for the review UI. Marketplace description HTML is full of tracking
// pixels, size charts rendered as nav widgets, and inline scripts, so the
// fragment is scrubbed before conversion.
func ConvertDescriptionHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	sel := doc.Find("body")
	sel.Find("script, style, noscript, iframe, svg, button, input, form, nav").Each(func(_ int, s *goquery.Selection) { s.Remove() })

	// Marketplace detail blocks nest promo/upsell widgets inside the
	// description markup; drop anything that smells like one.
	keywords := []string{"recommend", "promo", "advert", "ad-", "feedback", "related", "share", "modal", "popup"}
	sel.Find("[class], [id]").Each(func(_ int, s *goquery.Selection) {
		classVal, _ := s.Attr("class")
		idVal, _ := s.Attr("id")
		lower := strings.ToLower(classVal + " " + idVal)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				s.Remove()
				break
			}
		}
	})

	body, err := sel.Html()
	if err != nil {
		return ""
	}

	conv := md.NewConverter("", true, nil)
	out, err := conv.ConvertString(body)
	if err != nil {
		return ""
	}

	out = dropImageOnlyLines(out)
	out = blankRunsRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// dropImageOnlyLines removes lines that are nothing but markdown images.
// Image URLs already travel on the product record; repeating them in the
// description just bloats the stored payload.
func dropImageOnlyLines(mdText string) string {
	lines := strings.Split(mdText, "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		line := strings.TrimSpace(l)
		if line != "" && strings.TrimSpace(imageLineRe.ReplaceAllString(line, "")) == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
