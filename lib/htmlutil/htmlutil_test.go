package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	require.NoError(t, err)
	return doc
}

func TestCleanText(t *testing.T) {
	doc := parse(t, "<div><span> 1 234 </span>\n\t<b>applicants</b></div>")
	require.Equal(t, "1 234 applicants", CleanText(doc.Find("div")))
	require.Equal(t, "", CleanText(doc.Find("table")))
}

func TestWithClass(t *testing.T) {
	doc := parse(t, `<table>
		<tr class="trPosBen odd"><td>1</td></tr>
		<tr class="trPosBenefit"><td>2</td></tr>
		<tr class="x trPosBen"><td>3</td></tr>
	</table>`)

	sel := WithClass(doc.Find("*"), "trPosBen")
	require.Equal(t, 2, sel.Length())
	require.Equal(t, "3", CleanText(sel.Last()))
}

func TestClassContains(t *testing.T) {
	doc := parse(t, `<table class="Rating-Table"></table>`)
	require.True(t, ClassContains(doc.Find("table").Get(0), "rating"))
	require.False(t, ClassContains(doc.Find("table").Get(0), "list"))
}
