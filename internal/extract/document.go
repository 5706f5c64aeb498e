package extract

// Document is the boundary to an underlying parsing engine. Implementations
// own whatever file handles the engine needs; callers must Close the document
// on every exit path.
type Document interface {
	// PageCount returns the total number of pages, or an error when the
	// document structure cannot be read at all.
	PageCount() (int, error)

	// PageText returns the extractable text of the zero-indexed page.
	// Blank, image-only, or damaged pages yield "" rather than an error.
	// Behaviour is undefined for indices outside [0, PageCount()).
	PageText(pageIndex int) string

	// Metadata returns the document-level key/value metadata, which may be
	// nil or empty.
	Metadata() map[string]string

	Close() error
}
