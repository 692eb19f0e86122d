// Package markup post-processes question HTML returned by the quiz service:
// it extracts display annotations, strips regions the terminal renders
// separately and lists the form controls a learner can answer.
package markup

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// InfoSelector matches the per-question info box (number, state, mark).
const InfoSelector = ".info"

// Renderer implements the session's page post-processing contract.
type Renderer struct{}

// ReadableMark returns the human-readable mark shown in the question info box.
func (Renderer) ReadableMark(html string) string { return ReadableMark(html) }

// StripInfo removes the question info box from the markup.
func (Renderer) StripInfo(html string) string { return RemoveElement(html, InfoSelector) }

// FormDefaults returns the field values the question form would post untouched.
func (Renderer) FormDefaults(html string) map[string]string { return Defaults(Fields(html)) }

func parse(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// ReadableMark extracts the text of the grade element, e.g. "Marked out of 1.00".
func ReadableMark(html string) string {
	doc, err := parse(html)
	if err != nil {
		return ""
	}
	sel := doc.Find(InfoSelector + " .grade")
	if sel.Length() == 0 {
		sel = doc.Find(".grade")
	}
	return collapse(sel.First().Text())
}

// RemoveElement removes every element matching selector and returns the
// remaining body markup. Unparseable input is returned unchanged.
func RemoveElement(html, selector string) string {
	doc, err := parse(html)
	if err != nil {
		return html
	}
	doc.Find(selector).Remove()
	out, err := doc.Find("body").Html()
	if err != nil {
		return html
	}
	return strings.TrimSpace(out)
}

// PlainText renders markup as a single line of readable text.
func PlainText(html string) string {
	doc, err := parse(html)
	if err != nil {
		return collapse(html)
	}
	doc.Find("script, style").Remove()
	return collapse(doc.Find("body").Text())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// QuestionText returns the question prompt. Markup without a prompt region
// falls back to its plain text.
func QuestionText(html string) string {
	doc, err := parse(html)
	if err != nil {
		return collapse(html)
	}
	if q := doc.Find(".qtext"); q.Length() > 0 {
		return collapse(q.First().Text())
	}
	doc.Find("script, style, input, select, textarea, label").Remove()
	return collapse(doc.Find("body").Text())
}
