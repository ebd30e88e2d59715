package schema

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ysmood/gson"
)

// iso8601Re captures the duration components sites actually emit
// ("PT1H30M", "PT45M", "P0DT0H25M").
var iso8601Re = regexp.MustCompile(`P(?:(\d+)D)?T?(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// durationField reads an ISO 8601 duration (or a bare minute count) from
// node[key] and returns whole minutes. nil means the field is absent or
// unparseable; 0 is a valid value.
func durationField(node gson.JSON, key string) *int {
	obj, ok := node.Val().(map[string]interface{})
	if !ok {
		return nil
	}
	switch v := obj[key].(type) {
	case string:
		return parseISODuration(v)
	case float64:
		minutes := int(v)
		return &minutes
	}
	return nil
}

func parseISODuration(s string) *int {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "P") {
		return nil
	}
	m := iso8601Re.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	days, _ := strconv.Atoi(zeroIfEmpty(m[1]))
	hours, _ := strconv.Atoi(zeroIfEmpty(m[2]))
	mins, _ := strconv.Atoi(zeroIfEmpty(m[3]))
	secs, _ := strconv.Atoi(zeroIfEmpty(m[4]))

	total := days*24*60 + hours*60 + mins + secs/60
	return &total
}

func zeroIfEmpty(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

// trimFloat renders a float without a trailing ".0" ("4", "1.5").
func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
