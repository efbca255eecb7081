package service

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"orgopivy/internal/domain"
	"orgopivy/internal/index"
)

// DefaultTopK is the result limit used when the caller passes none.
const DefaultTopK = 5

// QuantitativeGuidance is returned instead of an extractive answer when a
// question looks like a calculation and retrieval found nothing useful.
const QuantitativeGuidance = "This looks like a calculation question. OrgoPivy answers from ingested notes. Add a chemistry formulas notes file and ingest it, or build a calculator endpoint for these."

// Context snippets are flattened to one line and capped at this length.
const snippetLength = 220

// TextSource resolves a stored filename to its raw text.
type TextSource interface {
	ReadText(storedName string) (string, error)
}

// QAService wires the chunker, scorer and answerer to the upload and index
// stores. The core components are pure; all state lives in the stores, so
// one service instance can serve concurrent requests.
type QAService struct {
	source                TextSource
	idx                   index.Store
	chunker               domain.Chunker
	scorer                domain.Scorer
	answerer              domain.Answerer
	maxSentences          int
	quantitativeThreshold float64
}

func NewQAService(source TextSource, idx index.Store, chunker domain.Chunker, scorer domain.Scorer, answerer domain.Answerer, maxSentences int, quantitativeThreshold float64) *QAService {
	if maxSentences <= 0 {
		maxSentences = 5
	}
	if quantitativeThreshold <= 0 {
		quantitativeThreshold = 0.2
	}
	return &QAService{
		source:                source,
		idx:                   idx,
		chunker:               chunker,
		scorer:                scorer,
		answerer:              answerer,
		maxSentences:          maxSentences,
		quantitativeThreshold: quantitativeThreshold,
	}
}

// Ingest chunks a stored upload and persists its chunk sequence, replacing
// any previous entry for the same stored name.
func (s *QAService) Ingest(storedName string) (int, error) {
	text, err := s.source.ReadText(storedName)
	if err != nil {
		return 0, err
	}
	return s.IngestDocument(domain.Document{StoredName: storedName, Text: text})
}

// IngestDocument indexes an already-loaded document.
func (s *QAService) IngestDocument(doc domain.Document) (int, error) {
	chunks, err := s.chunker.Chunk(doc)
	if err != nil {
		return 0, fmt.Errorf("chunk %s: %w", doc.StoredName, err)
	}
	if err := s.idx.Put(domain.IndexedDocument{StoredName: doc.StoredName, Chunks: chunks}); err != nil {
		return 0, fmt.Errorf("index %s: %w", doc.StoredName, err)
	}
	return len(chunks), nil
}

// Search scores every stored chunk against the query, keeps strictly
// positive scores, ranks them descending and truncates to topK. Ties keep
// encounter order: documents in stored-name order, chunks in id order.
func (s *QAService) Search(query string, topK int) ([]domain.ScoredChunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	docs, err := s.idx.All()
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	var results []domain.ScoredChunk
	for _, doc := range docs {
		for _, ch := range doc.Chunks {
			if score := s.scorer.Score(query, ch.Text); score > 0 {
				results = append(results, domain.ScoredChunk{
					StoredName: doc.StoredName,
					ChunkID:    ch.ID,
					Score:      score,
					Text:       ch.Text,
				})
			}
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Ask runs retrieval for the question and synthesizes an answer. Calculation
// style questions with no (or too weak) retrieval hits get a fixed guidance
// message instead, bypassing the answerer.
func (s *QAService) Ask(question string, topK int) (domain.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return domain.Answer{Text: "", Contexts: []domain.AnswerContext{}}, nil
	}
	results, err := s.Search(question, topK)
	if err != nil {
		return domain.Answer{}, err
	}

	topScore := 0.0
	if len(results) > 0 {
		topScore = float64(results[0].Score)
	}
	if s.scorer.LooksQuantitative(question) && (len(results) == 0 || topScore < s.quantitativeThreshold) {
		return domain.Answer{Text: QuantitativeGuidance, Contexts: []domain.AnswerContext{}}, nil
	}

	answer := s.answerer.Synthesize(question, results, s.maxSentences)

	contexts := make([]domain.AnswerContext, 0, len(results))
	for _, r := range results {
		snippet := strings.ReplaceAll(strings.TrimSpace(r.Text), "\n", " ")
		if utf8.RuneCountInString(snippet) > snippetLength {
			snippet = string([]rune(snippet)[:snippetLength])
		}
		contexts = append(contexts, domain.AnswerContext{
			StoredName: r.StoredName,
			ChunkID:    r.ChunkID,
			Score:      r.Score,
			Snippet:    snippet,
		})
	}
	return domain.Answer{Text: answer, Contexts: contexts}, nil
}
