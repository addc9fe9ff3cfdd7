package output

import (
	"fmt"
	"html"
	"os"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"

	"github.com/law-makers/rasff/pkg/models"
)

// RenderMarkdown renders the alerts of a run as a Markdown digest with a
// GitHub flavoured table. source links back to the search screen.
func RenderMarkdown(title, source string, alerts *models.Table) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "<h1>%s</h1>", html.EscapeString(title))
	fmt.Fprintf(&b, "<p>%d alerts", alerts.Len())
	if source != "" {
		fmt.Fprintf(&b, ` from <a href="%s">RASFF Window</a>`, html.EscapeString(source))
	}
	b.WriteString("</p>")

	if alerts.Len() > 0 {
		b.WriteString("<table><thead><tr>")
		for _, col := range alerts.Columns {
			b.WriteString("<th>" + html.EscapeString(col) + "</th>")
		}
		b.WriteString("</tr></thead><tbody>")
		for i := range alerts.Records {
			b.WriteString("<tr>")
			for _, cell := range alerts.Row(i) {
				b.WriteString("<td>" + cellHTML(cell) + "</td>")
			}
			b.WriteString("</tr>")
		}
		b.WriteString("</tbody></table>")
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	return converter.ConvertString(b.String())
}

// SaveMarkdown writes the digest for alerts to path
func SaveMarkdown(path, title, source string, alerts *models.Table) error {
	content, err := RenderMarkdown(title, source, alerts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content+"\n"), 0644)
}

// Multi-line cells cannot span table rows in Markdown
func cellHTML(cell string) string {
	return strings.ReplaceAll(html.EscapeString(cell), "\n", " ")
}
