// Package report renders assessment reports as standalone HTML pages.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// separator is the rule line that closes the report metadata header.
var separator = strings.Repeat("=", 60)

var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlighting.NewHighlighting(
			highlighting.WithStyle("github"),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
)

var page = template.Must(template.New("report").Parse(pageTemplate))

// ToHTML converts markdown to an HTML fragment. Raw HTML in the input is
// not passed through since report bodies come from a model.
func ToHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return buf.String(), nil
}

type pageData struct {
	Title   string
	Header  string
	Content template.HTML
}

// Page renders a full HTML document for a generated report. A leading
// metadata block closed by a line of "=" is kept verbatim in a <pre>
// element and the remainder is treated as markdown.
func Page(title, text string) ([]byte, error) {
	header, body := SplitHeader(text)
	content, err := ToHTML(body)
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = "Compliance Assessment Report"
	}

	var buf bytes.Buffer
	err = page.Execute(&buf, pageData{
		Title:   title,
		Header:  header,
		Content: template.HTML(content),
	})
	if err != nil {
		return nil, fmt.Errorf("rendering page: %w", err)
	}
	return buf.Bytes(), nil
}

// SplitHeader separates the metadata header from the report body. Text
// without a separator line is returned entirely as the body.
func SplitHeader(text string) (header, body string) {
	idx := strings.Index(text, separator)
	if idx < 0 {
		return "", text
	}
	header = strings.TrimSpace(text[:idx])
	body = strings.TrimLeft(text[idx+len(separator):], "=")
	return header, strings.TrimSpace(body)
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Helvetica, Arial, sans-serif; max-width: 920px; margin: 2rem auto; padding: 0 1rem; color: #1f2937; line-height: 1.6; }
    pre.report-header { background: #f3f4f6; border-left: 4px solid #3B82F6; padding: 1rem; white-space: pre-wrap; }
    table { border-collapse: collapse; margin: 1rem 0; }
    th, td { border: 1px solid #d1d5db; padding: .4rem .8rem; text-align: left; }
    h1 { border-bottom: 1px solid #e5e7eb; padding-bottom: .3rem; }
  </style>
</head>
<body>
{{if .Header}}  <pre class="report-header">{{.Header}}</pre>
{{end}}  <article>
{{.Content}}
  </article>
</body>
</html>
`
