package report

import (
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	out, err := ToHTML("# Executive Summary\n\n| Risk | Count |\n|---|---|\n| High | 2 |\n")
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if !strings.Contains(out, `<h1 id="executive-summary">Executive Summary</h1>`) {
		t.Errorf("missing heading in %q", out)
	}
	if !strings.Contains(out, "<table>") {
		t.Errorf("GFM table not rendered: %q", out)
	}
}

func TestToHTMLDropsRawHTML(t *testing.T) {
	out, err := ToHTML("hello <script>alert(1)</script>")
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Errorf("raw HTML passed through: %q", out)
	}
}

func TestSplitHeader(t *testing.T) {
	text := "\nCOMPLIANCE ASSESSMENT REPORT\nGenerated: Acme\n" + strings.Repeat("=", 60) + "\n# Findings\nbody"
	header, body := SplitHeader(text)
	if header != "COMPLIANCE ASSESSMENT REPORT\nGenerated: Acme" {
		t.Errorf("header = %q", header)
	}
	if body != "# Findings\nbody" {
		t.Errorf("body = %q", body)
	}

	header, body = SplitHeader("# plain")
	if header != "" || body != "# plain" {
		t.Errorf("SplitHeader(plain) = %q, %q", header, body)
	}
}

func TestPage(t *testing.T) {
	text := "COMPLIANCE ASSESSMENT REPORT\nGenerated: A & B\n" + strings.Repeat("=", 60) + "\n# Conclusion\n"
	out, err := Page("", text)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	html := string(out)
	for _, want := range []string{
		"<title>Compliance Assessment Report</title>",
		`<pre class="report-header">COMPLIANCE ASSESSMENT REPORT`,
		"Generated: A &amp; B",
		`<h1 id="conclusion">Conclusion</h1>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
}
