package corpus_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/minirag/pkg/corpus"
)

func TestGenerateSamples(t *testing.T) {
	tmpDir := t.TempDir()
	docsDir := filepath.Join(tmpDir, "docs")

	created, err := corpus.GenerateSamples(docsDir)
	require.NoError(t, err)
	assert.Len(t, created, 4)

	names := []string{
		"ultrablend_manual.txt",
		"safegrill_manual.txt",
		"employee_handbook.txt",
		"return_policy.txt",
	}
	for _, name := range names {
		_, err := os.Stat(filepath.Join(docsDir, name))
		assert.NoError(t, err, name)
	}
}

func TestLoad(t *testing.T) {
	docsDir := filepath.Join(t.TempDir(), "docs")
	_, err := corpus.GenerateSamples(docsDir)
	require.NoError(t, err)

	docs, err := corpus.Load(docsDir)
	require.NoError(t, err)
	require.Len(t, docs, 4)

	// Lexical order keeps passage IDs stable
	assert.Equal(t, "employee_handbook.txt", docs[0].Filename)
	assert.Equal(t, "return_policy.txt", docs[1].Filename)
	assert.Equal(t, "safegrill_manual.txt", docs[2].Filename)
	assert.Equal(t, "ultrablend_manual.txt", docs[3].Filename)

	for _, doc := range docs {
		assert.NotEmpty(t, doc.Content)
	}

	assert.Contains(t, docs[3].Content, "2-year warranty")
}

func TestLoadMissingDirectory(t *testing.T) {
	_, err := corpus.Load(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadNoTxtFiles(t *testing.T) {
	docsDir := t.TempDir()
	err := os.WriteFile(filepath.Join(docsDir, "notes.md"), []byte("# notes"), 0o644)
	require.NoError(t, err)

	_, err = corpus.Load(docsDir)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no .txt files")
}
