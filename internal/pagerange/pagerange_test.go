package pagerange_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docworks/mcp-docworks/internal/pagerange"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		selector   string
		totalPages int
		expected   []int
	}{
		{
			name:       "all pages",
			selector:   "all",
			totalPages: 4,
			expected:   []int{0, 1, 2, 3},
		},
		{
			name:       "all keyword is case-insensitive",
			selector:   "ALL",
			totalPages: 2,
			expected:   []int{0, 1},
		},
		{
			name:       "all on empty document",
			selector:   "all",
			totalPages: 0,
			expected:   []int{},
		},
		{
			name:       "single page",
			selector:   "3",
			totalPages: 5,
			expected:   []int{2},
		},
		{
			name:       "simple range",
			selector:   "2-4",
			totalPages: 10,
			expected:   []int{1, 2, 3},
		},
		{
			name:       "overlap and reorder dedupes and sorts",
			selector:   "5,1-3,2",
			totalPages: 10,
			expected:   []int{0, 1, 2, 4},
		},
		{
			name:       "reversed range contributes nothing",
			selector:   "3-1",
			totalPages: 10,
			expected:   []int{},
		},
		{
			name:       "range clipped to document length",
			selector:   "1-100",
			totalPages: 5,
			expected:   []int{0, 1, 2, 3, 4},
		},
		{
			name:       "single page beyond document dropped",
			selector:   "9",
			totalPages: 5,
			expected:   []int{},
		},
		{
			name:       "whitespace around tokens",
			selector:   " 1 , 3 - 4 ",
			totalPages: 10,
			expected:   []int{0, 2, 3},
		},
		{
			name:       "trailing comma ignored",
			selector:   "1,2,",
			totalPages: 5,
			expected:   []int{0, 1},
		},
		{
			name:       "page zero falls outside the document",
			selector:   "0,2",
			totalPages: 5,
			expected:   []int{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pagerange.Resolve(tt.selector, tt.totalPages)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolveInvalidSelectors(t *testing.T) {
	tests := []struct {
		name     string
		selector string
		token    string
	}{
		{name: "non-numeric token", selector: "x", token: "x"},
		{name: "non-numeric token in list", selector: "1,two,3", token: "two"},
		{name: "too many dashes", selector: "1-2-3", token: "1-2-3"},
		{name: "open-ended range", selector: "4-", token: "4-"},
		{name: "missing range start", selector: "-4", token: "-4"},
		{name: "signed page number", selector: "+2", token: "+2"},
		{name: "decimal page number", selector: "1.5", token: "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pagerange.Resolve(tt.selector, 10)
			require.Error(t, err)
			assert.Nil(t, got)

			var selErr *pagerange.InvalidSelectorError
			require.True(t, errors.As(err, &selErr))
			assert.Equal(t, tt.token, selErr.Token)
		})
	}
}

func TestResolveOutputInvariants(t *testing.T) {
	// Same index set regardless of token order.
	a, err := pagerange.Resolve("1-3,7", 10)
	require.NoError(t, err)
	b, err := pagerange.Resolve("7,3,1-2", 10)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	for i := 1; i < len(a); i++ {
		assert.Greater(t, a[i], a[i-1], "indices must be strictly ascending")
	}
	for _, p := range a {
		assert.GreaterOrEqual(t, p, 0)
		assert.Less(t, p, 10)
	}
}
