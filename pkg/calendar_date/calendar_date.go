package calendar_date

import (
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

type Category string

const (
	CategoryCommemorative Category = "commemorative"
	CategoryHoliday       Category = "holiday"
	CategoryOptional      Category = "optional"
)

var ErrUnknownCategory = errors.New("unknown calendar date category")

func ParseCategory(code string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(code))); c {
	case CategoryCommemorative, CategoryHoliday, CategoryOptional:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, code)
	}
}

// Entry is a calendar date ready to be displayed.
type Entry struct {
	Date        string   `json:"date"`
	Title       string   `json:"title"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
}

// Row is a calendar date as stored by the backend.
type Row struct {
	Id        int64    `json:"id"`
	Data      string   `json:"data"`
	Descricao string   `json:"descrição"`
	Tipo      string   `json:"tipo"`
	Niches    []string `json:"niches"`
}

// EntryFromRow maps a backend row to an Entry. The description text doubles
// as the title. Unknown category codes fall back to CategoryOptional.
func EntryFromRow(row Row) Entry {
	category, err := ParseCategory(row.Tipo)
	if err != nil {
		log.Warnf("calendar date %d (%s): %v, using %s", row.Id, row.Data, err, CategoryOptional)
		category = CategoryOptional
	}
	return Entry{
		Date:        row.Data,
		Title:       row.Descricao,
		Category:    category,
		Description: row.Descricao,
	}
}
