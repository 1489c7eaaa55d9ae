package frontmatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, fm)
	require.Equal(t, input, body)
}

func TestSplit_YAMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	fm, body, had, err := Split([]byte("---\ntitle: Intro\n---\n# Hello\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: Intro\n"), fm)
	require.Equal(t, []byte("# Hello\n"), body)
}

func TestSplit_CRLF(t *testing.T) {
	fm, body, had, err := Split([]byte("---\r\ntitle: Intro\r\n---\r\n# Hello\r\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: Intro\r\n"), fm)
	require.Equal(t, []byte("# Hello\r\n"), body)
}

func TestSplit_EmptyBlock(t *testing.T) {
	fm, body, had, err := Split([]byte("---\n---\n# Hello\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, fm)
	require.Equal(t, []byte("# Hello\n"), body)
}

func TestSplit_ClosingDelimiterAtEOF(t *testing.T) {
	fm, body, had, err := Split([]byte("---\ntitle: Only\n---"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: Only\n"), fm)
	require.Empty(t, body)
}

func TestSplit_BOMIsIgnored(t *testing.T) {
	fm, _, had, err := Split(append([]byte{0xEF, 0xBB, 0xBF}, []byte("---\ntitle: x\n---\nbody")...))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: x\n"), fm)
}

func TestSplit_MissingClosingDelimiter_ReturnsError(t *testing.T) {
	_, _, had, err := Split([]byte("---\ntitle: x\n# Hello\n"))
	require.Error(t, err)
	require.False(t, had)
	require.True(t, errors.Is(err, ErrMissingClosingDelimiter))
}

func TestSplit_HorizontalRuleLaterInBodyIsNotFrontmatter(t *testing.T) {
	input := []byte("# Hello\n\n---\n\nmore\n")
	_, body, had, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Equal(t, input, body)
}

func TestParse_ExtractsKnownAndUnknownKeys(t *testing.T) {
	doc, err := Parse([]byte("---\ntitle: Search Engine\ndescription: Inverted index\ndate: 2024-05-01\ntags: [go, search]\n---\nBody text\n"))
	require.NoError(t, err)

	assert.Equal(t, "Search Engine", doc.Metadata.Title("fallback"))
	assert.Equal(t, "Inverted index", doc.Metadata.Description())
	date, ok := doc.Metadata.Date()
	require.True(t, ok)
	assert.Equal(t, "2024-05-01", date)
	assert.Contains(t, doc.Metadata, "tags")
	assert.Equal(t, []byte("Body text\n"), doc.Body)
	assert.NotEmpty(t, doc.Raw)
}

func TestParse_QuotedDateAndNumericTitle(t *testing.T) {
	doc, err := Parse([]byte("---\ntitle: 2048\ndate: \"May 2024\"\n---\n"))
	require.NoError(t, err)

	assert.Equal(t, "2048", doc.Metadata.Title("x"))
	date, ok := doc.Metadata.Date()
	require.True(t, ok)
	assert.Equal(t, "May 2024", date)
}

func TestParse_NoFrontmatterDefaultsAtCallSite(t *testing.T) {
	doc, err := Parse([]byte("# Just a body\n"))
	require.NoError(t, err)

	assert.Empty(t, doc.Metadata)
	assert.Equal(t, "setup", doc.Metadata.Title("setup"))
	assert.Equal(t, "", doc.Metadata.Description())
	_, ok := doc.Metadata.Date()
	assert.False(t, ok)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("---\ntitle: [broken\n---\nbody\n"))
	require.Error(t, err)
}

func TestMetadata_EmptyTitleFallsBack(t *testing.T) {
	m := Metadata{"title": "   ", "draft": map[string]any{"x": 1}}
	assert.Equal(t, "intro", m.Title("intro"))
	_, ok := m.String("draft")
	assert.False(t, ok)
}
