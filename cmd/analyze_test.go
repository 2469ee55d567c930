package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/regaudit/internal/config"
	"github.com/ziadkadry99/regaudit/internal/findings"
	"github.com/ziadkadry99/regaudit/internal/session"
)

func TestNormalizeCodes(t *testing.T) {
	codes, err := normalizeCodes([]string{"gdpr", " HIPAA ", "GDPR", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"GDPR", "HIPAA"}, codes)

	_, err = normalizeCodes([]string{"SOX"})
	assert.ErrorContains(t, err, "GDPR, NIST, HIPAA, ISO27001")

	_, err = normalizeCodes([]string{" "})
	assert.Error(t, err)
}

func TestCollectPaths(t *testing.T) {
	cfg := config.DefaultConfig()

	paths, err := collectPaths(cfg, []string{filepath.Join("..", "testdata", "policies")})
	require.NoError(t, err)

	var names []string
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	assert.ElementsMatch(t, []string{"privacy-policy.md", "access-control.txt"}, names)

	_, err = collectPaths(cfg, []string{filepath.Join("..", "testdata", "missing")})
	assert.Error(t, err)
}

func TestWriteOutputs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s := session.New("cli")
	s.Company.Description = "Acme Health"
	s.SetFindings("GDPR", findings.Fallback("GDPR", ""))

	require.NoError(t, writeOutputs(dir, s, "# Report\n\nAll good."))

	md, err := os.ReadFile(filepath.Join(dir, "report.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Report\n\nAll good.", string(md))

	page, err := os.ReadFile(filepath.Join(dir, "report.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "Compliance Assessment Report - Acme Health")

	data, err := os.ReadFile(filepath.Join(dir, "findings.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"GDPR"`)
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger("json", true)
	assert.NoError(t, err)
	_, err = newLogger("", false)
	assert.NoError(t, err)
	_, err = newLogger("xml", false)
	assert.Error(t, err)
}
