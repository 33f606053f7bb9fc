package interpreter

import "strings"

// DefaultLinePrefix marks list items in prose answers
const DefaultLinePrefix = "- "

// ParseLineList extracts the lines of text that start with prefix, without the prefix.
// Blank results are dropped. An empty prefix means DefaultLinePrefix.
func ParseLineList(text, prefix string) []string {
	if prefix == "" {
		prefix = DefaultLinePrefix
	}

	items := []string{}
	for _, line := range strings.Split(StripFences(text), "\n") {
		line = strings.TrimLeft(strings.TrimRight(line, "\r"), " \t")
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		item := strings.TrimSpace(strings.TrimPrefix(line, prefix))
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
