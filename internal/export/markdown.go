package export

import "strings"

// RenderMarkdown renders doc as Markdown. The TUI preview and the md format
// share it.
func RenderMarkdown(doc Document) string {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(doc.Title)
	b.WriteString("\n\n")
	if doc.Subtitle != "" {
		b.WriteString("_")
		b.WriteString(doc.Subtitle)
		b.WriteString("_\n\n")
	}
	for _, section := range doc.Sections {
		b.WriteString("## ")
		b.WriteString(section.Heading)
		b.WriteString("\n\n")
		wrote := false
		for _, line := range section.Lines {
			if strings.TrimSpace(line) == "" {
				continue
			}
			b.WriteString("- ")
			b.WriteString(line)
			b.WriteString("\n")
			wrote = true
		}
		if !wrote {
			b.WriteString("_Not started._\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}
