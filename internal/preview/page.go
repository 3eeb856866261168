package preview

import (
	"bytes"
	"html/template"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"

	"git.home.luguber.info/inful/notebinder/internal/doctree"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 56rem; margin: 2rem auto; padding: 0 1rem; }
.problems { border-left: 4px solid #d33; padding-left: 1rem; }
.meta { color: #666; font-size: .9rem; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">generation {{.Status.Generation}}{{if .Status.HasDocument}} · {{.Status.Entries}} entries · {{.Status.Bytes}} bytes · <a href="/document.docx">download</a>{{end}}</p>
{{if .Status.Problems}}
<div class="problems">
<h2>{{len .Status.Problems}} problem(s){{if .Status.Category}} [{{.Status.Category}}]{{end}}</h2>
<ul>
{{range .Status.Problems}}<li>{{if .Source}}<code>{{.Source}}</code> {{end}}{{if .Field}}<strong>{{.Field}}</strong>: {{end}}{{.Message}}</li>
{{end}}</ul>
</div>
{{end}}
{{if .Outline}}{{.Outline}}{{else if not .Status.Problems}}<p>No document yet.</p>{{end}}
<script>
let generation = {{.Status.Generation}};
setInterval(async () => {
  try {
    const r = await fetch("/api/status");
    const s = await r.json();
    if (s.generation !== generation) location.reload();
  } catch (e) {}
}, 2000);
</script>
</body>
</html>
`))

type pageData struct {
	Title   string
	Status  StatusResponse
	Outline template.HTML
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap := s.status.snapshot()
	data := pageData{Title: s.opts.Title, Status: s.statusResponse()}
	if snap.Good != nil {
		outline, err := renderOutline(snap.Good.Tree)
		if err != nil {
			s.errorAdapter.WriteErrorResponse(w, r, err)
			return
		}
		data.Outline = outline
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// renderOutline renders the document structure as HTML by way of Markdown.
// goldmark's default renderer drops raw HTML, so entry text cannot inject markup.
func renderOutline(t *doctree.Tree) (template.HTML, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert(outlineMarkdown(t), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil //nolint:gosec // sanitized by goldmark
}

// outlineMarkdown lists sections as headings and entries as bullets.
func outlineMarkdown(t *doctree.Tree) []byte {
	var b strings.Builder
	if t == nil {
		return nil
	}
	t.Walk(func(sec *doctree.Section) {
		level := min(sec.Depth+1, 6)
		b.WriteString(strings.Repeat("#", level) + " " + escapeMarkdown(sec.Title) + "\n\n")
		for _, e := range sec.Entries {
			b.WriteString("- " + escapeMarkdown(e.Title()))
			if c := e.Component(); c != "" && c != sec.Title {
				b.WriteString(" _(" + escapeMarkdown(c) + ")_")
			}
			b.WriteString("\n")
		}
		if len(sec.Entries) > 0 {
			b.WriteString("\n")
		}
	})
	return []byte(b.String())
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`,
	"<", `\<`, ">", `\>`, "#", `\#`, "!", `\!`, "|", `\|`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
