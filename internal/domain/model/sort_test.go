package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSortSpec(t *testing.T) {
	tests := []struct {
		name    string
		by      string
		order   string
		want    SortSpec
		wantErr bool
	}{
		{name: "defaults", by: "", order: "", want: DefaultSort()},
		{name: "name asc", by: "name", order: "asc", want: SortSpec{Field: SortByName, Order: SortAsc}},
		{name: "date desc", by: "date", order: "desc", want: SortSpec{Field: SortByDate, Order: SortDesc}},
		{name: "field only", by: "name", order: "", want: SortSpec{Field: SortByName, Order: SortDesc}},
		{name: "invalid field", by: "size", order: "asc", wantErr: true},
		{name: "invalid order", by: "name", order: "sideways", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := ParseSortSpec(tt.by, tt.order)

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, spec)
		})
	}
}
