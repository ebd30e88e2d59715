package schema

import (
	"strings"

	"github.com/ysmood/gson"
)

// ExtractImage is the image-only extraction path used opportunistically
// during discovery: it locates the recipe node and applies the image rule,
// skipping every other field. Returns false when the page has no usable
// recipe image.
func ExtractImage(pageHTML string) (string, bool) {
	node, ok := findRecipeNode(pageHTML)
	if !ok {
		return "", false
	}
	return imageFrom(node.Get("image"))
}

// imageFrom resolves the four accepted image encodings: a plain string, an
// array of strings, a single object with a url field, or an array of such
// objects. The first non-placeholder entry wins; entries containing the
// substring "placeholder" are rejected.
func imageFrom(node gson.JSON) (string, bool) {
	switch v := node.Val().(type) {
	case string:
		return acceptImage(v)
	case map[string]interface{}:
		if u, ok := v["url"].(string); ok {
			return acceptImage(u)
		}
	case []interface{}:
		for _, item := range node.Arr() {
			if u, ok := imageFrom(item); ok {
				return u, true
			}
		}
	}
	return "", false
}

func acceptImage(u string) (string, bool) {
	u = strings.TrimSpace(u)
	if u == "" || strings.Contains(strings.ToLower(u), "placeholder") {
		return "", false
	}
	return u, true
}
