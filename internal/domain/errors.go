package domain

import "errors"

// Typed failures surfaced by the extraction, summarization, embedding, and
// ingestion layers. Callers dispatch on these with errors.Is; wrapped causes
// carry the provider detail.
var (
	// ErrUnsupportedFormat is returned for file extensions the text
	// extractor does not handle.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrCorruptFile is returned when a document container cannot be opened.
	ErrCorruptFile = errors.New("corrupt file")

	// ErrInvalidEncoding is returned when a text file is not valid UTF-8.
	ErrInvalidEncoding = errors.New("invalid text encoding")

	// ErrUnsupportedMediaType is returned for media types outside the four
	// supported kinds.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrUnsupportedImageFormat is returned when image bytes have no
	// recognizable image MIME type.
	ErrUnsupportedImageFormat = errors.New("unsupported image format")

	// ErrInputTooLarge is returned when input exceeds the generation token
	// limit. Input is never silently truncated past this point.
	ErrInputTooLarge = errors.New("input too large")

	// ErrFetchFailed is returned when fetching article content yields a
	// non-2xx status or a transport failure.
	ErrFetchFailed = errors.New("failed to fetch content")

	// ErrTranscriptUnavailable is returned when a video has no transcript.
	ErrTranscriptUnavailable = errors.New("transcript unavailable")

	// ErrInvalidVideoURL is returned when no video id can be parsed from a
	// video URL.
	ErrInvalidVideoURL = errors.New("invalid video url")

	// ErrEmbeddingUnavailable is returned when the embedding provider fails.
	// There is no fallback vector; affected records stay non-searchable.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrBatchTooLarge rejects a bulk ingest before any item is processed.
	ErrBatchTooLarge = errors.New("batch too large")

	// ErrNotFound is returned when a resource id does not exist.
	ErrNotFound = errors.New("resource not found")
)
