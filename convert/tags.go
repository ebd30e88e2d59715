package convert

import "strings"

// mergeTags combines keyword and dietary-restriction lists into one tag
// set: comma-joined entries are split apart, whitespace trimmed, and
// duplicates dropped case-insensitively keeping the first-seen casing.
func mergeTags(lists ...[]string) []string {
	var out []string
	seen := make(map[string]struct{})

	for _, list := range lists {
		for _, entry := range list {
			for _, tag := range strings.Split(entry, ",") {
				tag = strings.TrimSpace(tag)
				if tag == "" {
					continue
				}
				key := strings.ToLower(tag)
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				out = append(out, tag)
			}
		}
	}
	return out
}
