package session

import (
	"github.com/abhisek/quizplay/internal/markup"
	"github.com/abhisek/quizplay/internal/quiz"
	"github.com/abhisek/quizplay/internal/ui/components"
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindChoice
	kindCheck
)

// pageField is one answerable control on the current page. Radio inputs
// sharing a name collapse into a single choice field.
type pageField struct {
	Slot    int
	Name    string
	Label   string
	Kind    fieldKind
	Default string
	On      string // posted value of a checked checkbox
	Choices []components.Choice
}

// value returns the buffered edit for the field, or what the page was
// served with.
func (f pageField) value(answers quiz.Answers) string {
	if v, ok := answers[f.Name]; ok {
		return v
	}
	return f.Default
}

// display renders the current value for the page view.
func (f pageField) display(answers quiz.Answers) string {
	v := f.value(answers)
	switch f.Kind {
	case kindChoice:
		for _, c := range f.Choices {
			if c.Value == v {
				return c.Label
			}
		}
		return ""
	case kindCheck:
		if v == f.On {
			return "[x]"
		}
		return "[ ]"
	}
	return v
}

// buildFields lists the answerable controls of questions in page order.
func buildFields(questions []quiz.Question) []pageField {
	var out []pageField
	for _, q := range questions {
		radios := map[string]int{}
		for _, f := range markup.Fields(q.HTML) {
			switch f.Type {
			case "hidden", "submit", "button":
				continue
			case "radio":
				i, ok := radios[f.Name]
				if !ok {
					i = len(out)
					radios[f.Name] = i
					out = append(out, pageField{Slot: q.Slot, Name: f.Name, Kind: kindChoice})
				}
				out[i].Choices = append(out[i].Choices, components.Choice{Value: f.Value, Label: f.Label})
				if f.Checked {
					out[i].Default = f.Value
				}
			case "select":
				pf := pageField{Slot: q.Slot, Name: f.Name, Label: f.Label, Kind: kindChoice, Default: f.Value}
				for _, o := range f.Options {
					pf.Choices = append(pf.Choices, components.Choice{Value: o.Value, Label: o.Label})
				}
				out = append(out, pf)
			case "checkbox":
				pf := pageField{Slot: q.Slot, Name: f.Name, Label: f.Label, Kind: kindCheck, On: f.Value}
				if f.Checked {
					pf.Default = f.Value
				}
				out = append(out, pf)
			default:
				out = append(out, pageField{Slot: q.Slot, Name: f.Name, Label: f.Label, Kind: kindText, Default: f.Value})
			}
		}
	}
	return out
}
