package pdf

// Request carries the parsed pdf_extract arguments.
type Request struct {
	// FilePath is the absolute path to the PDF.
	FilePath string `json:"file_path"`

	// Pages is the page selector ("all", "3", "1-5,7,9-11").
	Pages string `json:"pages"`

	// IncludeMetadata folds the document info dictionary into the result.
	IncludeMetadata bool `json:"include_metadata"`

	// Output selects the result rendering: "json" or "text".
	Output string `json:"output"`

	// PageBreaks inserts per-page banners into text output.
	PageBreaks bool `json:"page_breaks"`
}
