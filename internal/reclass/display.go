package reclass

import (
	"fmt"
	"strings"
)

const indentWidth = 2

func indent(level int) string {
	return strings.Repeat(" ", level*indentWidth)
}

// Print renders a Result tree as the reclass text view, one line per
// leaf/struct, matching the teacher's reclass display convention: a
// header line per struct, then its fields indented one level deeper.
// Padding fields are rendered as "~" with no read.
func Print(r *Result, level int) string {
	if r == nil {
		return indent(level) + "~"
	}
	switch r.Type {
	case "struct":
		var b strings.Builder
		fmt.Fprintf(&b, "%s-- struct @ %#x --\n", indent(level), r.Address)
		lines := make([]string, 0, len(r.Fields))
		for _, nf := range r.Fields {
			lines = append(lines, printNamed(nf, level+1))
		}
		b.WriteString(strings.Join(lines, "\n"))
		return b.String()
	case "search":
		var b strings.Builder
		fmt.Fprintf(&b, "%s-- search @ %#x --\n", indent(level), r.Address)
		lines := make([]string, 0, len(r.Fields))
		for _, nf := range r.Fields {
			lines = append(lines, printNamed(nf, level+1))
		}
		b.WriteString(strings.Join(lines, "\n"))
		return b.String()
	case "padding":
		return indent(level) + "~"
	case "ptr32", "ptr64":
		child := Print(r.Child, 0)
		return fmt.Sprintf("%s(*%#x) %s", indent(level), r.Address, strings.TrimSpace(child))
	default:
		if r.Err != "" {
			return fmt.Sprintf("%s(%s) <ERR: %s>", indent(level), strings.ToUpper(r.Type), r.Err)
		}
		return fmt.Sprintf("%s(%s) %s", indent(level), strings.ToUpper(r.Type), r.Value)
	}
}

func printNamed(nf NamedResult, level int) string {
	field := strings.TrimSpace(Print(nf.Result, 0))
	return fmt.Sprintf("%s%-12s: %s", indent(level), nf.Name, field)
}
