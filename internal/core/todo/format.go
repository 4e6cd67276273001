package todo

import "strings"

// FormatHeading is the first line of a formatted list.
const FormatHeading = "## Todo List"

// Format renders the list as a markdown fragment for inclusion in messages.
// A nil or empty list renders as the empty string.
func Format(l *List) string {
	if l == nil || len(l.Items) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(FormatHeading)
	b.WriteByte('\n')

	for _, item := range l.Items {
		b.WriteString("- id:")
		b.WriteString(item.ID)
		b.WriteString(" (")
		b.WriteString(string(item.Status))
		b.WriteString(") ")
		b.WriteString(item.Description)
		b.WriteByte('\n')
	}

	return b.String()
}
