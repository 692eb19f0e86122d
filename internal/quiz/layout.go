package quiz

import (
	"fmt"
	"strconv"
	"strings"
)

// PageDescriptor describes one page of an attempt for the table of contents.
type PageDescriptor struct {
	Index int
	Slots []int
}

// ParseLayout parses the remote comma-separated layout string ("1,2,0,3,0").
func ParseLayout(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	layout := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("parse layout %q: %w", s, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("parse layout %q: negative slot %d", s, n)
		}
		layout = append(layout, n)
	}
	return layout, nil
}

// FormatLayout is the inverse of ParseLayout.
func FormatLayout(layout []int) string {
	parts := make([]string, len(layout))
	for i, n := range layout {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// TOCFromLayout splits a layout into ordered pages. Every page break ends
// a page index, as the service numbers pages, so an empty page leaves a gap
// in the indexes rather than shifting the pages after it. A missing
// trailing page break closes the last page.
func TOCFromLayout(layout []int) []PageDescriptor {
	var (
		toc     []PageDescriptor
		current []int
		index   int
	)
	flush := func() {
		if len(current) > 0 {
			toc = append(toc, PageDescriptor{Index: index, Slots: current})
			current = nil
		}
		index++
	}
	for _, slot := range layout {
		if slot == 0 {
			flush()
			continue
		}
		current = append(current, slot)
	}
	if len(current) > 0 {
		flush()
	}
	return toc
}

// PageCount returns one past the last page index holding questions.
func PageCount(layout []int) int {
	toc := TOCFromLayout(layout)
	if len(toc) == 0 {
		return 0
	}
	return toc[len(toc)-1].Index + 1
}

// ValidPage reports whether page indexes a page of layout that holds
// questions.
func ValidPage(layout []int, page int) bool {
	for _, p := range TOCFromLayout(layout) {
		if p.Index == page {
			return true
		}
	}
	return false
}
