package browser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// labelDeliveryOnly switches which underlying field the UI exposes for the
// task email address.
const labelDeliveryOnly = "Delivery Only"

// HasHeaderCell reports whether any <th> in the document contains label.
func HasHeaderCell(html, label string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}

	found := false
	doc.Find("th").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.Contains(s.Text(), label) {
			found = true
			return false
		}
		return true
	})
	return found
}

// DomainEmailPattern builds the page-scan pattern for addresses under any
// subdomain of domain.
func DomainEmailPattern(domain string) *regexp.Regexp {
	return regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]*\.` + regexp.QuoteMeta(domain) + `\b`)
}

// FindDomainEmail scans raw page markup for the first address on domain.
func FindDomainEmail(html, domain string) (string, bool) {
	match := DomainEmailPattern(domain).FindString(html)
	return match, match != ""
}

// EmailFieldSelectors returns the candidate selectors for the task email
// field. Delivery-only tasks expose the -15 suffixed field, all others -16.
func EmailFieldSelectors(html string) []string {
	if HasHeaderCell(html, labelDeliveryOnly) {
		return []string{"textarea[id$='-15']", "input[id$='-15']"}
	}
	return []string{"textarea[id$='-16']", "input[id$='-16']"}
}

// existingValueSelectors covers both fields regardless of task variant, for
// the already-filled check.
var existingValueSelectors = []string{
	"textarea[id$='-15']", "input[id$='-15']",
	"textarea[id$='-16']", "input[id$='-16']",
}
