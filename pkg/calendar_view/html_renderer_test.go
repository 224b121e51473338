package calendar_view

import (
	"bytes"
	"testing"

	"github.com/nichecal/nichecal/pkg/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderPage(t *testing.T, page Page) string {
	var buf bytes.Buffer
	require.NoError(t, NewHtmlRenderer().RenderPage(&buf, page))
	return buf.String()
}

func TestHtmlRendererImpl_RenderPage(t *testing.T) {
	locales, err := NewLocales("pt-BR")
	require.NoError(t, err)
	locale := locales.Match("")

	t.Run("loading shows only a spinner and refreshes", func(t *testing.T) {
		html := renderPage(t, NewPage(StateLoading, []string{"a"}, nil, locale))

		assert.Contains(t, html, `data-state="loading"`)
		assert.Contains(t, html, `http-equiv="refresh"`)
		assert.NotContains(t, html, ErrorMessage)
		assert.NotContains(t, html, EmptyMessage)
	})

	t.Run("error shows message and toast", func(t *testing.T) {
		page := NewPage(StateError, []string{"a"}, nil, locale)
		page.Toasts = []notify.Notification{notify.FetchFailed(`["a"]`)}

		html := renderPage(t, page)

		assert.Contains(t, html, `data-state="error"`)
		assert.Contains(t, html, ErrorMessage)
		assert.Contains(t, html, "Erro ao carregar datas")
		assert.Contains(t, html, "toast-destructive")
		assert.NotContains(t, html, `http-equiv="refresh"`)
	})

	t.Run("empty shows empty message", func(t *testing.T) {
		html := renderPage(t, NewPage(StateEmpty, []string{"finance"}, nil, locale))

		assert.Contains(t, html, `data-state="empty"`)
		assert.Contains(t, html, EmptyMessage)
		assert.NotContains(t, html, ErrorMessage)
	})

	t.Run("populated shows one card per entry", func(t *testing.T) {
		html := renderPage(t, NewPage(StatePopulated, []string{"a"}, entries, locale))

		assert.Contains(t, html, Heading)
		assert.Equal(t, 2, bytes.Count([]byte(html), []byte(`<article class="card">`)))
		assert.Contains(t, html, "07/06/2025")
		assert.Contains(t, html, "badge-red")
		assert.Contains(t, html, "Feriado")
		assert.Contains(t, html, "badge-blue")
		assert.Contains(t, html, "Comemorativa")
	})

	t.Run("escapes entry text", func(t *testing.T) {
		page := NewPage(StatePopulated, []string{"a"}, entries, locale)
		page.Cards[0].Title = "<script>alert(1)</script>"

		html := renderPage(t, page)

		assert.NotContains(t, html, "<script>alert(1)</script>")
		assert.Contains(t, html, "&lt;script&gt;")
	})
}
