package index

import "orgopivy/internal/domain"

// Store persists the chunk sequences produced at ingest time and replays
// them for the retrieval loop. Chunk ids must survive round-trips unchanged.
type Store interface {
	Put(doc domain.IndexedDocument) error
	All() ([]domain.IndexedDocument, error)
	Delete(storedName string) error
}
