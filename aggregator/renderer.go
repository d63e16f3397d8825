package aggregator

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"docuvert/core"

	"gopkg.in/yaml.v3"
)

// Page is one completed page inside an aggregated document.
type Page struct {
	PageNumber int      `json:"pageNumber" yaml:"pageNumber"`
	Format     string   `json:"format" yaml:"format"`
	Content    string   `json:"content" yaml:"content"`
	Images     []string `json:"images,omitempty" yaml:"images,omitempty"`
}

// Metadata is the envelope written alongside every aggregated document.
type Metadata struct {
	SessionID       string    `json:"sessionId" yaml:"sessionId"`
	Format          string    `json:"format" yaml:"format"`
	CreatedAt       time.Time `json:"createdAt" yaml:"createdAt"`
	TotalPages      int       `json:"totalPages" yaml:"totalPages"`
	TotalCharacters int       `json:"totalCharacters" yaml:"totalCharacters"`
}

// Document is the in-memory snapshot handed to a Renderer: metadata plus
// every completed page in ascending numeric order.
type Document struct {
	Metadata Metadata `json:"metadata" yaml:"metadata"`
	Pages    []Page   `json:"pages" yaml:"pages"`
}

// Renderer turns a Document into the bytes of one output format.
// Implementations must not perform I/O: the aggregator writes the rendered
// bytes itself so a render failure never clobbers prior output.
type Renderer interface {
	Render(doc *Document) ([]byte, error)
}

// defaultRenderers maps every supported format to its renderer. Adding a
// format means adding an entry here, not branching in the aggregator.
func defaultRenderers() map[core.Format]Renderer {
	return map[core.Format]Renderer{
		core.FormatMarkdown: markdownRenderer{},
		core.FormatJSON:     jsonRenderer{},
		core.FormatXML:      xmlRenderer{},
		core.FormatYAML:     yamlRenderer{},
		core.FormatHTML:     htmlRenderer{},
		core.FormatCSV:      csvRenderer{},
	}
}

// markdownRenderer emits one "## Page N" section per page, separated by
// horizontal rules. Pages whose native format is not markdown are fenced so
// their syntax does not bleed into the surrounding document.
type markdownRenderer struct{}

func (markdownRenderer) Render(doc *Document) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# Extracted Document\n\n")
	fmt.Fprintf(&b, "Total pages: %d\n", doc.Metadata.TotalPages)

	for _, page := range doc.Pages {
		b.WriteString("\n---\n\n")
		fmt.Fprintf(&b, "## Page %d\n\n", page.PageNumber)
		if page.Format == string(core.FormatMarkdown) {
			b.WriteString(page.Content)
		} else {
			fmt.Fprintf(&b, "```%s\n%s\n```", page.Format, page.Content)
		}
		b.WriteString("\n")
	}
	return []byte(b.String()), nil
}

// jsonRenderer marshals the document as a metadata envelope plus a pages
// array, page order preserved.
type jsonRenderer struct{}

func (jsonRenderer) Render(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON document: %w", err)
	}
	return data, nil
}

// xmlRenderer emits <document><metadata/><pages/></document> with each
// page's content in a CDATA section so extracted text needs no escaping.
type xmlRenderer struct{}

func (xmlRenderer) Render(doc *Document) ([]byte, error) {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString("<document>\n")
	b.WriteString("  <metadata>\n")
	fmt.Fprintf(&b, "    <sessionId>%s</sessionId>\n", doc.Metadata.SessionID)
	fmt.Fprintf(&b, "    <createdAt>%s</createdAt>\n", doc.Metadata.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "    <totalPages>%d</totalPages>\n", doc.Metadata.TotalPages)
	fmt.Fprintf(&b, "    <totalCharacters>%d</totalCharacters>\n", doc.Metadata.TotalCharacters)
	b.WriteString("  </metadata>\n")
	b.WriteString("  <pages>\n")
	for _, page := range doc.Pages {
		fmt.Fprintf(&b, "    <page number=\"%d\" format=\"%s\">%s</page>\n",
			page.PageNumber, page.Format, cdata(page.Content))
	}
	b.WriteString("  </pages>\n")
	b.WriteString("</document>\n")
	return []byte(b.String()), nil
}

// cdata wraps s in a CDATA section, splitting any "]]>" occurrences so the
// section cannot be terminated early by page content.
func cdata(s string) string {
	return "<![CDATA[" + strings.ReplaceAll(s, "]]>", "]]]]><![CDATA[>") + "]]>"
}

// yamlRenderer marshals the same envelope shape as the JSON renderer.
type yamlRenderer struct{}

func (yamlRenderer) Render(doc *Document) ([]byte, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode YAML document: %w", err)
	}
	return data, nil
}

// htmlRenderer produces a single styled page-per-div document. Content goes
// through html/template, so extracted text is escaped automatically.
type htmlRenderer struct{}

var htmlDocTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Extracted Document</title>
<style>
body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; max-width: 900px; margin: 2rem auto; padding: 0 1rem; color: #1a1a2e; }
header { border-bottom: 2px solid #e0e0e0; padding-bottom: 1rem; margin-bottom: 2rem; }
header .meta { color: #666; font-size: 0.9rem; }
.page { border: 1px solid #e0e0e0; border-radius: 8px; padding: 1.5rem; margin-bottom: 1.5rem; }
.page h2 { margin-top: 0; font-size: 1.1rem; color: #16213e; }
.page pre { white-space: pre-wrap; word-wrap: break-word; font-size: 0.95rem; }
</style>
</head>
<body>
<header>
<h1>Extracted Document</h1>
<p class="meta">Session {{.Metadata.SessionID}} &middot; {{.Metadata.TotalPages}} pages &middot; generated {{.Metadata.CreatedAt.Format "2006-01-02 15:04:05 MST"}}</p>
</header>
{{range .Pages}}<div class="page">
<h2>Page {{.PageNumber}}</h2>
<pre>{{.Content}}</pre>
</div>
{{end}}</body>
</html>
`))

func (htmlRenderer) Render(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlDocTemplate.Execute(&buf, doc); err != nil {
		return nil, fmt.Errorf("failed to render HTML document: %w", err)
	}
	return buf.Bytes(), nil
}

// csvRenderer emits a header row followed by one row per page. Quoting is
// left to encoding/csv, which handles embedded newlines and commas.
type csvRenderer struct{}

func (csvRenderer) Render(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"page_number", "format", "content"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, page := range doc.Pages {
		row := []string{strconv.Itoa(page.PageNumber), page.Format, page.Content}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row for page %d: %w", page.PageNumber, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV output: %w", err)
	}
	return buf.Bytes(), nil
}
