// Package markdown renders item details for the terminal with glamour.
package markdown

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"

	internalstrings "github.com/CrocodileWoodGordon/todolist/internal/strings"
	"github.com/CrocodileWoodGordon/todolist/todo"
)

type renderer interface {
	Render(string) (string, error)
}

var (
	rendererMu sync.Mutex
	renderers  = map[int]renderer{}
)

// Render formats markdown text for terminal output.
func Render(width, indent int, input []byte) []byte {
	if len(input) == 0 {
		return nil
	}
	value := internalstrings.NormalizeNewlines(string(input))
	value = strings.TrimRight(value, "\n")
	if internalstrings.IsBlank(value) {
		return nil
	}
	if width < 1 {
		width = 1
	}
	if indent < 0 {
		indent = 0
	}
	renderWidth := width - indent
	if renderWidth < 1 {
		renderWidth = 1
	}

	rendered := value
	if r := markdownRenderer(renderWidth); r != nil {
		formatted, err := r.Render(value)
		if err == nil {
			rendered = formatted
		}
	}
	rendered = strings.TrimRight(rendered, "\n")
	if internalstrings.IsBlank(rendered) {
		return nil
	}
	if indent <= 0 {
		return []byte(rendered)
	}
	return []byte(indentBlock(rendered, indent))
}

// SafeRender is Render, falling back to the trimmed input if the renderer panics.
func SafeRender(width, indent int, input []byte) (out []byte) {
	defer func() {
		if recover() != nil {
			out = []byte(strings.TrimRight(internalstrings.NormalizeNewlines(string(input)), "\n"))
		}
	}()
	return Render(width, indent, input)
}

func markdownRenderer(width int) renderer {
	rendererMu.Lock()
	defer rendererMu.Unlock()
	if cached, ok := renderers[width]; ok {
		return cached
	}
	style := styles.ASCIIStyleConfig
	style.Item.BlockPrefix = "- "
	created, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	renderers[width] = created
	return created
}

func indentBlock(value string, spaces int) string {
	if spaces <= 0 {
		return value
	}
	prefix := strings.Repeat(" ", spaces)
	lines := strings.Split(value, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

// ItemDetail describes one display row as a markdown document.
func ItemDetail(entry todo.Entry) string {
	item := entry.Item
	status := "pending"
	if item.Completed {
		status = "done"
	}
	deadline := escapeInline(item.Deadline.String())
	if entry.Expired {
		deadline += " (expired)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", escapeInline(item.Name))
	fmt.Fprintf(&b, "- **Index:** %d\n", entry.Index)
	fmt.Fprintf(&b, "- **Status:** %s\n", status)
	fmt.Fprintf(&b, "- **Deadline:** %s\n", deadline)
	fmt.Fprintf(&b, "- **Priority:** %d (%s)\n", item.Priority, entry.Bucket)
	return b.String()
}

var inlineEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"#", `\#`,
	"<", `\<`,
)

func escapeInline(value string) string {
	return inlineEscaper.Replace(internalstrings.NormalizeWhitespace(value))
}
