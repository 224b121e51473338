package calendar_view

import (
	"fmt"
	"time"

	"github.com/nichecal/nichecal/pkg/calendar_date"
	"github.com/nichecal/nichecal/pkg/notify"
	"golang.org/x/text/language"
)

type State string

const (
	StateLoading   State = "loading"
	StateError     State = "error"
	StateEmpty     State = "empty"
	StatePopulated State = "populated"
)

const (
	Heading      = "Seu Calendário Personalizado"
	ErrorMessage = "Erro ao carregar o calendário. Tente novamente."
	EmptyMessage = "Nenhuma data encontrada para os nichos selecionados."
)

// SelectState picks the display state; loading wins over error, error over empty.
func SelectState(isLoading bool, err error, entries []calendar_date.Entry) State {
	switch {
	case isLoading:
		return StateLoading
	case err != nil:
		return StateError
	case len(entries) == 0:
		return StateEmpty
	default:
		return StatePopulated
	}
}

type Badge struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Class string `json:"-"`
}

func BadgeFor(category calendar_date.Category) Badge {
	switch category {
	case calendar_date.CategoryCommemorative:
		return Badge{Label: "Comemorativa", Color: "blue", Class: "bg-blue-100 text-blue-800"}
	case calendar_date.CategoryHoliday:
		return Badge{Label: "Feriado", Color: "red", Class: "bg-red-100 text-red-800"}
	default:
		return Badge{Label: "Opcional", Color: "green", Class: "bg-green-100 text-green-800"}
	}
}

type Card struct {
	Date          string                 `json:"date"`
	LocalizedDate string                 `json:"localizedDate"`
	Title         string                 `json:"title"`
	Category      calendar_date.Category `json:"category"`
	Badge         Badge                  `json:"badge"`
	Description   string                 `json:"description"`
}

// Page is everything a renderer needs to draw the calendar.
type Page struct {
	State   State                 `json:"state"`
	Lang    string                `json:"lang"`
	Heading string                `json:"heading"`
	Message string                `json:"message,omitempty"`
	Niches  []string              `json:"niches"`
	Cards   []Card                `json:"entries"`
	Toasts  []notify.Notification `json:"toasts,omitempty"`
}

func NewPage(state State, niches []string, entries []calendar_date.Entry, locale Locale) Page {
	page := Page{
		State:   state,
		Lang:    locale.Tag.String(),
		Heading: Heading,
		Niches:  niches,
		Cards:   []Card{},
	}
	switch state {
	case StateError:
		page.Message = ErrorMessage
	case StateEmpty:
		page.Message = EmptyMessage
	case StatePopulated:
		for _, e := range entries {
			page.Cards = append(page.Cards, Card{
				Date:          e.Date,
				LocalizedDate: locale.FormatDate(e.Date),
				Title:         e.Title,
				Category:      e.Category,
				Badge:         BadgeFor(e.Category),
				Description:   e.Description,
			})
		}
	}
	return page
}

var dateLayouts = map[language.Tag]string{
	language.BrazilianPortuguese: "02/01/2006",
	language.AmericanEnglish:     "01/02/2006",
	language.BritishEnglish:      "02/01/2006",
	language.German:              "02.01.2006",
}

type Locale struct {
	Tag    language.Tag
	layout string
}

// FormatDate renders an ISO date (optionally with a time part) in the locale's
// short date format. Values that do not parse are returned as they are.
func (l Locale) FormatDate(value string) string {
	for _, layout := range []string{time.DateOnly, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(l.layout)
		}
	}
	return value
}

// Locales negotiates the date locale from an Accept-Language header.
type Locales struct {
	supported []language.Tag
	matcher   language.Matcher
}

func NewLocales(defaultLocale string) (*Locales, error) {
	def, err := language.Parse(defaultLocale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", defaultLocale, err)
	}
	base := language.NewMatcher([]language.Tag{
		language.BrazilianPortuguese, language.AmericanEnglish, language.BritishEnglish, language.German,
	})
	_, idx, confidence := base.Match(def)
	if confidence == language.No {
		return nil, fmt.Errorf("unsupported locale %q", defaultLocale)
	}

	// The matcher falls back to its first tag, so the default goes first.
	supported := []language.Tag{language.BrazilianPortuguese, language.AmericanEnglish, language.BritishEnglish, language.German}
	supported[0], supported[idx] = supported[idx], supported[0]
	return &Locales{supported: supported, matcher: language.NewMatcher(supported)}, nil
}

func (l *Locales) Match(acceptLanguage string) Locale {
	_, idx := language.MatchStrings(l.matcher, acceptLanguage)
	tag := l.supported[idx]
	return Locale{Tag: tag, layout: dateLayouts[tag]}
}
