package moodle

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
)

// addNamedValues encodes a map in Moodle's array-of-structs notation:
// key[0][name]=a&key[0][value]=1. Names are sorted so requests are stable.
func addNamedValues(v url.Values, key string, m map[string]string) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for i, name := range names {
		v.Set(fmt.Sprintf("%s[%d][name]", key, i), name)
		v.Set(fmt.Sprintf("%s[%d][value]", key, i), m[name])
	}
}

func boolParam(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func intParam(n int) string {
	return strconv.Itoa(n)
}
