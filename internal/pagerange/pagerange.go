// Package pagerange resolves page-selection strings like "1-5,7,9-11" or
// "all" into concrete zero-indexed page sets bounded by a document's page
// count.
package pagerange

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// AllPages is the selector keyword matching every page (case-insensitive).
const AllPages = "all"

// InvalidSelectorError reports a selector token that is neither the "all"
// keyword, a bare page number, nor a two-number dash range.
type InvalidSelectorError struct {
	Token string
}

func (e *InvalidSelectorError) Error() string {
	return fmt.Sprintf("invalid page selector token: %q", e.Token)
}

// Resolve parses a page selector against the document's total page count and
// returns the matching zero-indexed pages, sorted ascending with duplicates
// removed. Page numbers in the selector are 1-indexed; ranges are inclusive.
//
// References to pages beyond totalPages are silently dropped rather than
// rejected, and a reversed range ("5-3") simply contributes nothing. Only a
// token that cannot be parsed at all is an error.
func Resolve(selector string, totalPages int) ([]int, error) {
	if strings.EqualFold(strings.TrimSpace(selector), AllPages) {
		pages := make([]int, totalPages)
		for i := range pages {
			pages[i] = i
		}
		return pages, nil
	}

	seen := make(map[int]struct{})
	for _, token := range strings.Split(selector, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		if strings.Contains(token, "-") {
			parts := strings.SplitN(token, "-", 3)
			if len(parts) != 2 {
				return nil, &InvalidSelectorError{Token: token}
			}
			start, err := parsePageNumber(parts[0])
			if err != nil {
				return nil, &InvalidSelectorError{Token: token}
			}
			end, err := parsePageNumber(parts[1])
			if err != nil {
				return nil, &InvalidSelectorError{Token: token}
			}
			// 1-indexed inclusive range -> zero-indexed half-open [start-1, end).
			for i := start - 1; i < end; i++ {
				seen[i] = struct{}{}
			}
			continue
		}

		n, err := parsePageNumber(token)
		if err != nil {
			return nil, &InvalidSelectorError{Token: token}
		}
		seen[n-1] = struct{}{}
	}

	pages := make([]int, 0, len(seen))
	for i := range seen {
		if i >= 0 && i < totalPages {
			pages = append(pages, i)
		}
	}
	sort.Ints(pages)
	return pages, nil
}

// parsePageNumber parses a base-10 page number with no sign and no
// surrounding garbage. ParseUint rather than Atoi so "+3" and "-3" are
// rejected outright.
func parsePageNumber(s string) (int, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 31)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
