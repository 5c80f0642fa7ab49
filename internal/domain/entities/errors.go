package entities

import "errors"

// Sentinel errors shared across the system. Callers match with errors.Is;
// adapters wrap them with context via fmt.Errorf and %w.
var (
	// ErrSourceNotFound reports a missing ingestion target.
	ErrSourceNotFound = errors.New("source document not found")

	// ErrUnsupportedFormat reports a file extension no extractor handles.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrExtraction reports a failed text extraction (e.g. malformed PDF).
	// Per-document: batch ingestion continues past it.
	ErrExtraction = errors.New("text extraction failed")

	// ErrIndexCorrupt reports persisted vector and metadata counts that
	// disagree. Recovered by resetting the index, never fatal at startup.
	ErrIndexCorrupt = errors.New("vector index corrupt")

	// ErrDimensionMismatch reports an embedding whose dimension does not
	// match the index.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrPersistence reports a failed durable write; in-memory state must
	// not be presented as durable when this occurs.
	ErrPersistence = errors.New("index persistence failed")
)
