package calendar_date

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryFromRow(t *testing.T) {
	t.Run("should duplicate description into title", func(t *testing.T) {
		row := Row{Data: "2025-06-07", Descricao: "Dia X", Tipo: "holiday", Niches: []string{"a"}}

		entry := EntryFromRow(row)

		assert.Equal(t, Entry{
			Date:        "2025-06-07",
			Title:       "Dia X",
			Description: "Dia X",
			Category:    CategoryHoliday,
		}, entry)
	})

	t.Run("should fall back to optional for unknown category", func(t *testing.T) {
		entry := EntryFromRow(Row{Data: "2025-01-01", Descricao: "Ano Novo", Tipo: "feriadao"})

		assert.Equal(t, CategoryOptional, entry.Category)
	})
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		code    string
		want    Category
		wantErr bool
	}{
		{code: "commemorative", want: CategoryCommemorative},
		{code: "holiday", want: CategoryHoliday},
		{code: "optional", want: CategoryOptional},
		{code: " Holiday ", want: CategoryHoliday},
		{code: "", wantErr: true},
		{code: "birthday", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := ParseCategory(tt.code)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownCategory)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
