// Package pdfdoc implements extract.Document on top of pdfcpu.
package pdfdoc

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/docworks/mcp-docworks/internal/extract"
)

const (
	// DefaultMaxFileSize caps how large a PDF the engine will open (200MB).
	DefaultMaxFileSize = int64(200 * 1024 * 1024)

	// MaxFileSizeEnvVar overrides DefaultMaxFileSize, in bytes.
	MaxFileSizeEnvVar = "PDF_MAX_FILE_SIZE"
)

// Document is an open PDF. It holds the underlying file until Close.
type Document struct {
	path string
	file *os.File
	ctx  *model.Context
}

var _ extract.Document = (*Document)(nil)

// Open reads and validates the PDF at path. Missing files, oversized files,
// and documents pdfcpu cannot parse all surface as *extract.UnreadableError.
func Open(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &extract.UnreadableError{Path: path, Err: err}
	}
	if max := MaxFileSize(); info.Size() > max {
		return nil, &extract.UnreadableError{
			Path: path,
			Err:  fmt.Errorf("file size %d exceeds limit of %d bytes (set %s to adjust)", info.Size(), max, MaxFileSizeEnvVar),
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &extract.UnreadableError{Path: path, Err: err}
	}

	ctx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		_ = f.Close()
		return nil, &extract.UnreadableError{Path: path, Err: err}
	}

	return &Document{path: path, file: f, ctx: ctx}, nil
}

// Path returns the file path the document was opened from.
func (d *Document) Path() string {
	return d.path
}

func (d *Document) PageCount() (int, error) {
	if d.ctx == nil {
		return 0, fmt.Errorf("document is closed")
	}
	return d.ctx.PageCount, nil
}

// PageText extracts the text of the zero-indexed page from its content
// stream. Pages without text operators, and pages whose content cannot be
// decoded, yield "".
func (d *Document) PageText(pageIndex int) string {
	if d.ctx == nil {
		return ""
	}
	r, err := pdfcpu.ExtractPageContent(d.ctx, pageIndex+1)
	if err != nil || r == nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return decodeContentStream(data)
}

// Metadata returns the document information dictionary (Title, Author,
// Subject, Producer, dates...) as strings. Returns nil when the document
// carries no info dict.
func (d *Document) Metadata() map[string]string {
	if d.ctx == nil || d.ctx.XRefTable == nil || d.ctx.XRefTable.Info == nil {
		return nil
	}
	xt := d.ctx.XRefTable

	dict, err := xt.DereferenceDict(*xt.Info)
	if err != nil || len(dict) == 0 {
		return nil
	}

	meta := make(map[string]string, len(dict))
	for key, obj := range dict {
		if val, ok := infoValue(xt, obj); ok && val != "" {
			meta[key] = val
		}
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}

func (d *Document) Close() error {
	d.ctx = nil
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

// infoValue coerces an info-dict entry to a string.
func infoValue(xt *model.XRefTable, obj types.Object) (string, bool) {
	o, err := xt.Dereference(obj)
	if err != nil {
		return "", false
	}
	switch v := o.(type) {
	case types.StringLiteral:
		s, err := types.StringLiteralToString(v)
		if err != nil {
			return "", false
		}
		return s, true
	case types.HexLiteral:
		s, err := types.HexLiteralToString(v)
		if err != nil {
			return "", false
		}
		return s, true
	case types.Name:
		return v.Value(), true
	case types.Integer:
		return strconv.Itoa(v.Value()), true
	case types.Boolean:
		return strconv.FormatBool(v.Value()), true
	}
	return "", false
}

// MaxFileSize returns the configured PDF size limit in bytes.
func MaxFileSize() int64 {
	if s := os.Getenv(MaxFileSizeEnvVar); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return DefaultMaxFileSize
}
