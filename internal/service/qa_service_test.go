package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orgopivy/internal/answerer"
	"orgopivy/internal/chunker"
	"orgopivy/internal/domain"
	"orgopivy/internal/index/memory"
	"orgopivy/internal/scorer"
)

type mapSource map[string]string

func (m mapSource) ReadText(storedName string) (string, error) {
	return m[storedName], nil
}

func newTestService(source TextSource) *QAService {
	return NewQAService(
		source,
		memory.NewStore(),
		chunker.NewWindowChunker(900, 120),
		scorer.NewTermScorer(),
		answerer.NewExtractiveAnswerer(),
		5,
		0.2,
	)
}

func mustIngest(t *testing.T, svc *QAService, name, text string) {
	t.Helper()
	_, err := svc.IngestDocument(domain.Document{StoredName: name, Text: text})
	require.NoError(t, err)
}

func Test_Ingest_ReadsFromSource(t *testing.T) {
	svc := newTestService(mapSource{"notes.txt": "glucose is a simple sugar"})

	n, err := svc.Ingest("notes.txt")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	results, err := svc.Search("glucose", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "notes.txt", results[0].StoredName)
	assert.Equal(t, 0, results[0].ChunkID)
}

func Test_Search_RanksAndFilters(t *testing.T) {
	svc := newTestService(nil)
	mustIngest(t, svc, "a.txt", "glucose glucose glucose")
	mustIngest(t, svc, "b.txt", "glucose appears once")
	mustIngest(t, svc, "c.txt", "nothing relevant at all")

	results, err := svc.Search("glucose", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a.txt", results[0].StoredName)
	assert.Equal(t, 3, results[0].Score)
	assert.Equal(t, "b.txt", results[1].StoredName)
	assert.Equal(t, 1, results[1].Score)
}

func Test_Search_TiesKeepStoredNameOrder(t *testing.T) {
	svc := newTestService(nil)
	mustIngest(t, svc, "z.txt", "glucose notes")
	mustIngest(t, svc, "a.txt", "glucose notes")

	results, err := svc.Search("glucose", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a.txt", results[0].StoredName)
	assert.Equal(t, "z.txt", results[1].StoredName)
}

func Test_Search_EmptyQueryAndTruncation(t *testing.T) {
	svc := newTestService(nil)
	mustIngest(t, svc, "a.txt", "glucose one")
	mustIngest(t, svc, "b.txt", "glucose two")
	mustIngest(t, svc, "c.txt", "glucose three")

	results, err := svc.Search("   ", 5)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = svc.Search("glucose", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	// topK <= 0 falls back to the default limit.
	results, err = svc.Search("glucose", 0)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func Test_Ask_EmptyQuestion(t *testing.T) {
	svc := newTestService(nil)

	answer, err := svc.Ask("  ", 5)
	require.NoError(t, err)
	assert.Equal(t, "", answer.Text)
	assert.Empty(t, answer.Contexts)
}

func Test_Ask_QuantitativeOverride(t *testing.T) {
	svc := newTestService(nil)

	// Quantitative question with nothing ingested gets the guidance message.
	answer, err := svc.Ask("how many moles are in 5 g of NaCl", 5)
	require.NoError(t, err)
	assert.Equal(t, QuantitativeGuidance, answer.Text)
	assert.Empty(t, answer.Contexts)

	// A factual question with nothing ingested still goes to the answerer.
	answer, err = svc.Ask("what is glucose", 5)
	require.NoError(t, err)
	assert.Equal(t, answerer.NoAnswerFallback, answer.Text)
}

func Test_Ask_QuantitativeWithStrongResults(t *testing.T) {
	svc := newTestService(nil)
	mustIngest(t, svc, "notes.txt",
		"One mole of any substance contains exactly the Avogadro number of particles.")

	answer, err := svc.Ask("how many particles are in a mole", 5)
	require.NoError(t, err)
	// The override only fires when retrieval came up empty or weak.
	assert.NotEqual(t, QuantitativeGuidance, answer.Text)
	assert.Contains(t, answer.Text, "Avogadro")
}

func Test_Ask_AnswerAndContexts(t *testing.T) {
	svc := newTestService(nil)
	mustIngest(t, svc, "bio.txt",
		"Glucose is a simple sugar used by cells.\nIt stores chemical energy in its bonds.")

	answer, err := svc.Ask("what is glucose", 5)
	require.NoError(t, err)
	assert.Contains(t, answer.Text, "Glucose is a simple sugar")
	require.NotEmpty(t, answer.Contexts)

	ctx := answer.Contexts[0]
	assert.Equal(t, "bio.txt", ctx.StoredName)
	assert.NotContains(t, ctx.Snippet, "\n", "snippets are flattened to one line")
	assert.LessOrEqual(t, len(ctx.Snippet), 220)
}

func Test_Ask_SnippetTruncation(t *testing.T) {
	svc := newTestService(nil)
	mustIngest(t, svc, "long.txt", "glucose "+strings.Repeat("filler words here ", 30))

	answer, err := svc.Ask("what is glucose", 5)
	require.NoError(t, err)
	require.NotEmpty(t, answer.Contexts)
	assert.Len(t, answer.Contexts[0].Snippet, 220)
}
