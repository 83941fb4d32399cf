package evidence

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// RenderMarkdown renders a fragment as a Markdown section. Pure
// formatting: no aggregation happens here.
func RenderMarkdown(f *Fragment) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## %s\n\n", f.Title)
	fmt.Fprintf(&b, "%s\n\n", f.Prose)

	if !f.PeriodStart.IsZero() {
		fmt.Fprintf(&b, "**Period:** %s — %s\n\n",
			f.PeriodStart.Format(time.RFC3339),
			f.PeriodEnd.Format(time.RFC3339),
		)
	}

	if len(f.Metadata) > 0 {
		b.WriteString("| Metric | Value |\n|---|---|\n")
		for _, key := range sortedKeys(f.Metadata) {
			fmt.Fprintf(&b, "| %s | %s |\n", key, formatValue(f.Metadata[key]))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "_Generated %s for %s._\n",
		f.GeneratedAt.Format(time.RFC3339), f.ArticleID)

	return b.String()
}

// RenderMarkdownAll renders multiple fragments as one document.
func RenderMarkdownAll(title string, fragments []*Fragment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	for _, f := range fragments {
		b.WriteString(RenderMarkdown(f))
		b.WriteString("\n")
	}
	return b.String()
}

// sortedKeys returns the metadata keys in stable order.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatValue renders one metadata value for a Markdown cell.
func formatValue(v any) string {
	switch val := v.(type) {
	case map[string]int:
		if len(val) == 0 {
			return "none"
		}
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %d", k, val[k]))
		}
		return strings.Join(parts, ", ")
	case float64:
		return fmt.Sprintf("%.2f", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
