// Package extract turns a page selector plus an open document into per-page
// text records and a single concatenated text blob.
package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/docworks/mcp-docworks/internal/pagerange"
)

// Options controls what Extract folds into the result beyond page text.
type Options struct {
	// IncludeMetadata attaches the document's metadata mapping to the
	// result when the document exposes any.
	IncludeMetadata bool
}

// Page is one extracted page. Page numbers are 1-indexed for display; Text is
// always present (empty for pages with no extractable text).
type Page struct {
	Page      int    `json:"page"`
	Text      string `json:"text"`
	CharCount int    `json:"char_count"`
}

// Result is the document-level extraction output. Metadata is omitted, not
// empty, when the document exposes none or metadata was not requested.
type Result struct {
	TotalPages     int               `json:"total_pages"`
	ExtractedPages int               `json:"extracted_pages"`
	TotalChars     int               `json:"total_chars"`
	Pages          []Page            `json:"pages"`
	FullText       string            `json:"full_text"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// Extract resolves selector against doc's page count, pulls text from each
// resolved page in ascending order, and assembles the result. A page that
// yields no text still produces a record; only an unreadable document or an
// unparsable selector fails the call.
func Extract(doc Document, selector string, opts Options) (*Result, error) {
	totalPages, err := doc.PageCount()
	if err != nil {
		return nil, &UnreadableError{Err: err}
	}

	pages, err := pagerange.Resolve(selector, totalPages)
	if err != nil {
		return nil, err
	}

	records := make([]Page, 0, len(pages))
	texts := make([]string, 0, len(pages))
	for _, idx := range pages {
		text := doc.PageText(idx)
		records = append(records, Page{
			Page:      idx + 1,
			Text:      text,
			CharCount: utf8.RuneCountInString(text),
		})
		texts = append(texts, text)
	}

	// Joined in resolution order, never by re-reading the document, so the
	// concatenation matches the resolved page order for any selector.
	fullText := strings.Join(texts, "\n")

	result := &Result{
		TotalPages:     totalPages,
		ExtractedPages: len(records),
		TotalChars:     utf8.RuneCountInString(fullText),
		Pages:          records,
		FullText:       fullText,
	}

	if opts.IncludeMetadata {
		if meta := doc.Metadata(); len(meta) > 0 {
			result.Metadata = meta
		}
	}

	return result, nil
}

// Flatten renders the result as plain text. With pageBreaks set, each page is
// preceded by a banner naming its 1-indexed page number; otherwise the joined
// full text is returned as-is.
func Flatten(res *Result, pageBreaks bool) string {
	if !pageBreaks {
		return res.FullText
	}

	rule := strings.Repeat("=", 60)
	var sb strings.Builder
	for _, p := range res.Pages {
		fmt.Fprintf(&sb, "\n%s\nPage %d\n%s\n\n", rule, p.Page, rule)
		sb.WriteString(p.Text)
		sb.WriteByte('\n')
	}
	return sb.String()
}
