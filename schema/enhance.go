package schema

import (
	"regexp"
	"strings"
	"unicode"
)

// stepPrefixRe matches numbered instruction prefixes like "1. ", "2) " or
// "3 - " at the start of a line.
var stepPrefixRe = regexp.MustCompile(`^\s*\d+\s*[.)\-:]\s*`)

// CleanTitle capitalizes the first letter of titles that are entirely
// lower-case; mixed-case titles are left alone (the site chose them).
func CleanTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" || title != strings.ToLower(title) {
		return title
	}
	runes := []rune(title)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// StripStepPrefix removes a numbered prefix from a single instruction line.
func StripStepPrefix(line string) string {
	return strings.TrimSpace(stepPrefixRe.ReplaceAllString(line, ""))
}

// SplitInstructionBlock splits a free-text instructions block into ordered
// steps: one per non-empty line, numbered prefixes stripped. Used when the
// source provides a single block instead of a pre-split list.
func SplitInstructionBlock(block string) []string {
	var steps []string
	for _, line := range strings.Split(block, "\n") {
		if line = StripStepPrefix(line); line != "" {
			steps = append(steps, line)
		}
	}
	return steps
}

// CleanDescription drops descriptions that are mostly the ingredient list in
// disguise — some sites fill the description field with ingredients. After
// removing every ingredient name, fewer than 20 alphanumeric characters left
// means there was no real description.
func CleanDescription(description string, ingredients []string) string {
	if description == "" || len(ingredients) == 0 {
		return description
	}

	cleaned := strings.ToLower(description)
	for _, ing := range ingredients {
		name := strings.TrimSpace(strings.SplitN(strings.ToLower(ing), "(", 2)[0])
		if name != "" {
			cleaned = strings.ReplaceAll(cleaned, name, "")
		}
	}

	var alnum int
	for _, r := range cleaned {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
		}
	}
	if alnum < 20 {
		return ""
	}
	return description
}

// CleanKeywords filters out keywords that merely repeat the title or an
// ingredient name.
func CleanKeywords(keywords, ingredients []string, title string) []string {
	if len(keywords) == 0 {
		return nil
	}

	ingredientNames := make(map[string]struct{}, len(ingredients))
	for _, ing := range ingredients {
		name := strings.TrimSpace(strings.SplitN(strings.ToLower(ing), "(", 2)[0])
		if name != "" {
			ingredientNames[name] = struct{}{}
		}
	}
	titleLower := strings.ToLower(title)

	var cleaned []string
	for _, kw := range keywords {
		kwLower := strings.ToLower(kw)
		if kwLower == titleLower {
			continue
		}
		if _, isIngredient := ingredientNames[kwLower]; isIngredient {
			continue
		}
		cleaned = append(cleaned, kw)
	}
	return cleaned
}
