package walker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func relPaths(files []FileInfo) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.RelPath)
	}
	return out
}

func TestWalk_SupportedDocumentsOnly(t *testing.T) {
	root := writeTree(t, map[string]string{
		"policy.txt":         "policy",
		"handbook/intro.md":  "# intro",
		"contracts/dpa.pdf":  "%PDF-1.4",
		"contracts/msa.DOCX": "PK",
		"scripts/run.sh":     "echo",
		"node_modules/x.md":  "skip",
		".git/HEAD.txt":      "skip",
	})

	files, err := Walk(WalkerConfig{RootDir: root})
	require.NoError(t, err)
	assert.Equal(t, []string{"contracts/dpa.pdf", "contracts/msa.DOCX", "handbook/intro.md", "policy.txt"}, relPaths(files))
	assert.Equal(t, KindDOCX, files[1].Kind)
}

func TestWalk_IncludeExclude(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.txt":        "a",
		"drafts/b.txt": "b",
		"c.md":         "c",
	})

	files, err := Walk(WalkerConfig{
		RootDir: root,
		Include: []string{"**/*.txt"},
		Exclude: []string{"drafts/**"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, relPaths(files))
}

func TestWalk_BraceIncludeMatchesDefaults(t *testing.T) {
	root := writeTree(t, map[string]string{"x/a.pdf": "p", "x/b.md": "m", "x/c.csv": "c"})

	files, err := Walk(WalkerConfig{RootDir: root, Include: []string{"**/*.{pdf,docx,txt,md}"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"x/a.pdf", "x/b.md"}, relPaths(files))
}

func TestWalk_Gitignore(t *testing.T) {
	root := writeTree(t, map[string]string{
		".gitignore":       "# comment\nprivate/\nsecret.txt\n",
		"private/keys.txt": "k",
		"secret.txt":       "s",
		"public.txt":       "p",
	})

	files, err := Walk(WalkerConfig{RootDir: root})
	require.NoError(t, err)
	assert.Equal(t, []string{"public.txt"}, relPaths(files))
}

func TestWalk_MaxFileSize(t *testing.T) {
	root := writeTree(t, map[string]string{"big.txt": "0123456789", "small.txt": "01"})

	files, err := Walk(WalkerConfig{RootDir: root, MaxFileSize: 5})
	require.NoError(t, err)
	assert.Equal(t, []string{"small.txt"}, relPaths(files))
}

func TestExpand(t *testing.T) {
	root := writeTree(t, map[string]string{"docs/a.txt": "a", "docs/b.md": "b", "notes.csv": "n"})

	paths, err := Expand([]string{filepath.Join(root, "notes.csv"), filepath.Join(root, "docs")}, WalkerConfig{})
	require.NoError(t, err)
	require.Len(t, paths, 3)
	assert.Equal(t, "notes.csv", filepath.Base(paths[0]))
	assert.Equal(t, "a.txt", filepath.Base(paths[1]))

	_, err = Expand([]string{filepath.Join(root, "missing")}, WalkerConfig{})
	assert.Error(t, err)
}

func TestDetectKind(t *testing.T) {
	assert.Equal(t, KindPDF, DetectKind("Report.PDF"))
	assert.Equal(t, KindMarkdown, DetectKind("README.md"))
	assert.Equal(t, KindText, DetectKind("a.txt"))
	assert.Equal(t, KindUnknown, DetectKind("a.csv"))
	assert.Equal(t, KindUnknown, DetectKind("noext"))
}

func TestMatchesInclude(t *testing.T) {
	assert.True(t, MatchesInclude("anything", nil))
	assert.True(t, MatchesInclude("dir/x.md", []string{"*.md"}))
	assert.False(t, MatchesInclude("dir/x.md", []string{"*.txt"}))
	assert.False(t, MatchesExclude("dir/x.md", nil))
}
