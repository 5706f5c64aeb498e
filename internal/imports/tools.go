// Package imports pulls in every tool package for its registration side
// effect. main imports this package blank.
package imports

import (
	_ "github.com/docworks/mcp-docworks/internal/tools/excel"
	_ "github.com/docworks/mcp-docworks/internal/tools/pdf"
)
