package excel

// Request carries the parsed excel_read arguments.
type Request struct {
	// FilePath is the absolute path to the workbook.
	FilePath string `json:"file_path"`

	// Sheet is the worksheet to read; empty means the active sheet.
	Sheet string `json:"sheet"`

	// Range restricts the read to an A1-notation cell range ("A1:D10").
	// Empty reads the whole used range.
	Range string `json:"range"`

	// HasHeader treats the first row as column headers.
	HasHeader bool `json:"has_header"`

	// Output selects the result rendering: "json" or "csv".
	Output string `json:"output"`
}

// Response is the structured read result. Data holds either row records
// (with headers) or positional string rows.
type Response struct {
	File    string   `json:"file"`
	Sheet   string   `json:"sheet"`
	Rows    int      `json:"rows"`
	Columns int      `json:"columns"`
	Headers []string `json:"headers,omitempty"`
	Data    []any    `json:"data"`
}
