package scanner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	pkgerrors "github.com/ozolsandis/peoplebook-backend/internal/pkg/errors"
)

const bioParagraph = "Viņa ir pianiste, kura koncertējusi daudzās Eiropas zālēs un ieguvusi " +
	"starptautisku atzinību par saviem Šopēna un Vītola skaņdarbu atskaņojumiem dažādos konkursos."

func TestExtractContentCleansDocument(t *testing.T) {
	raw := `<html><head>
<style>p { color: red; }</style>
<script>trackVisitor();</script>
</head><body>
<p style="color:blue" data-track="abc">` + bioParagraph + `</p>
<p>Foto: Jānis Bērziņš</p>
<p><a href="https://example.lv/koncerti" onclick="evil()" title="koncerti">Koncertu saraksts</a></p>
</body></html>`

	content, err := ExtractContent([]byte(raw))
	require.NoError(t, err)

	require.NotContains(t, content.HTML, "<style")
	require.NotContains(t, content.HTML, "<script")
	require.NotContains(t, content.HTML, "style=")
	require.NotContains(t, content.HTML, "data-track")
	require.NotContains(t, content.HTML, "onclick")
	require.Contains(t, content.HTML, `href="https://example.lv/koncerti"`)
	require.Contains(t, content.HTML, `title="koncerti"`)

	require.NotContains(t, content.Text, "trackVisitor")
	require.NotContains(t, content.Text, "color: red")
	require.Contains(t, content.Text, "pianiste")
	require.Equal(t, len(strings.Fields(content.Text)), content.WordCount)
}

func TestExtractContentPhotoCredits(t *testing.T) {
	raw := `<html><body>
<p>` + bioParagraph + `</p>
<p>Foto: Jānis Bērziņš</p>
<p>` + bioParagraph + `</p>
<p>No personīgā arhīva</p>
<p>Attēls: LNSO</p>
</body></html>`

	content, err := ExtractContent([]byte(raw))
	require.NoError(t, err)

	require.Len(t, content.PhotoCredits, 3)
	require.Equal(t, "Foto: Jānis Bērziņš", content.PhotoCredits[0].Text)
	require.Equal(t, 0, content.PhotoCredits[0].Order)
	require.Equal(t, "No personīgā arhīva", content.PhotoCredits[1].Text)
	require.Equal(t, 1, content.PhotoCredits[1].Order)
	require.Equal(t, "Attēls: LNSO", content.PhotoCredits[2].Text)
	require.Equal(t, 2, content.PhotoCredits[2].Order)

	// Credit paragraphs leave the body entirely.
	require.NotContains(t, content.HTML, "Foto:")
	require.NotContains(t, content.Text, "Attēls: LNSO")
}

func TestExtractContentShortMentionCredit(t *testing.T) {
	raw := `<html><body>
<p>` + bioParagraph + `</p>
<p>No ģimenes arhīva materiāliem</p>
</body></html>`

	content, err := ExtractContent([]byte(raw))
	require.NoError(t, err)
	require.Len(t, content.PhotoCredits, 1)
	require.Equal(t, "No ģimenes arhīva materiāliem", content.PhotoCredits[0].Text)
}

func TestExtractContentHeadingPromotion(t *testing.T) {
	raw := `<html><body>
<p>` + recurringQuestion + `</p>
<p>` + bioParagraph + `</p>
<p>Stāsta kolēģi un draugi</p>
<p>1.</p>
<p>` + bioParagraph + `</p>
<p>2.</p>
<p>Stāsta ģimene</p>
</body></html>`

	content, err := ExtractContent([]byte(raw))
	require.NoError(t, err)

	require.Contains(t, content.HTML, "<h2>"+recurringQuestion+"</h2>")
	require.Contains(t, content.HTML, "<h3>Stāsta kolēģi un draugi</h3>")
	require.Contains(t, content.HTML, "<h4>1.</h4>")
	require.Contains(t, content.HTML, "<h4>2.</h4>")

	// The narrator rule fires once; the second occurrence stays a paragraph.
	require.Contains(t, content.HTML, "<p>Stāsta ģimene</p>")
}

func TestExtractContentNoValidContent(t *testing.T) {
	for _, raw := range []string{"", "   ", "<html><body></body></html>"} {
		_, err := ExtractContent([]byte(raw))
		require.ErrorIs(t, err, pkgerrors.ErrNoValidContent)
	}
}
