package markup

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Option is one choice of a select control.
type Option struct {
	Value string
	Label string
}

// Field is an answerable (or hidden bookkeeping) form control in question markup.
type Field struct {
	Name    string
	Type    string // input type, "select" or "textarea"
	Value   string
	Checked bool
	Label   string
	Options []Option
}

// Hidden reports whether the field is bookkeeping the learner never edits,
// such as the sequence check.
func (f Field) Hidden() bool {
	return f.Type == "hidden"
}

// Fields lists the named form controls in document order.
func Fields(html string) []Field {
	doc, err := parse(html)
	if err != nil {
		return nil
	}

	var fields []Field
	doc.Find("input, select, textarea").Each(func(_ int, s *goquery.Selection) {
		name, ok := s.Attr("name")
		if !ok || name == "" {
			return
		}
		f := Field{Name: name, Label: labelFor(doc, s)}
		switch goquery.NodeName(s) {
		case "select":
			f.Type = "select"
			s.Find("option").Each(func(_ int, o *goquery.Selection) {
				v, _ := o.Attr("value")
				f.Options = append(f.Options, Option{Value: v, Label: collapse(o.Text())})
				if _, sel := o.Attr("selected"); sel {
					f.Value = v
				}
			})
		case "textarea":
			f.Type = "textarea"
			f.Value = s.Text()
		default:
			f.Type = strings.ToLower(s.AttrOr("type", "text"))
			f.Value = s.AttrOr("value", "")
			_, f.Checked = s.Attr("checked")
		}
		fields = append(fields, f)
	})
	return fields
}

// Defaults returns the values a form would post untouched: hidden fields,
// text values and checked choices.
func Defaults(fields []Field) map[string]string {
	out := make(map[string]string)
	for _, f := range fields {
		switch f.Type {
		case "radio", "checkbox":
			if f.Checked {
				out[f.Name] = f.Value
			}
		case "submit", "button":
		default:
			out[f.Name] = f.Value
		}
	}
	return out
}

func labelFor(doc *goquery.Document, s *goquery.Selection) string {
	if id, ok := s.Attr("id"); ok && id != "" {
		if l := doc.Find(`label[for="` + id + `"]`); l.Length() > 0 {
			return collapse(l.First().Text())
		}
	}
	if l := s.Closest("label"); l.Length() > 0 {
		return collapse(l.Text())
	}
	return ""
}
