package htmldoc

import (
	"testing"

	"go-keyword-radar/internal/dom"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><body>
<div id="outer"><section><strong class="a">  Go Developer </strong></section></div>
<li id="ember12" data-occludable-job-id="777"></li>
</body></html>`

func TestQueryAndWalk(t *testing.T) {
	doc := MustParse(page)

	strong, err := doc.Query("strong")
	require.NoError(t, err)
	require.NotNil(t, strong)

	assert.Equal(t, "strong", strong.Tag())
	assert.Equal(t, "Go Developer", dom.TrimmedText(strong))
	assert.True(t, strong.HasClass("a"))

	outer := dom.Ancestor(strong, 2)
	require.NotNil(t, outer)
	assert.Equal(t, "outer", outer.ID())
	assert.Equal(t, "div", outer.Tag())

	// strong > section > div > body > html, then nothing
	assert.NotNil(t, dom.Ancestor(strong, 4))
	assert.Nil(t, dom.Ancestor(strong, 5))
	assert.Nil(t, dom.Ancestor(strong, 9))
}

func TestQueryMissing(t *testing.T) {
	doc := MustParse(page)
	el, err := doc.Query("h1")
	assert.NoError(t, err)
	assert.Nil(t, el)

	all, err := doc.QueryAll("h1")
	assert.NoError(t, err)
	assert.Empty(t, all)
}

func TestClassesAndAttributes(t *testing.T) {
	doc := MustParse(page)
	li, _ := doc.Query("li")

	v, ok := li.Attr("data-occludable-job-id")
	assert.True(t, ok)
	assert.Equal(t, "777", v)

	require.NoError(t, li.AddClass("x", "y"))
	require.NoError(t, li.RemoveClass("x"))
	assert.False(t, li.HasClass("x"))
	assert.True(t, li.HasClass("y"))

	require.NoError(t, li.SetAttr("data-keyword-styled", "true"))
	v, ok = li.Attr("data-keyword-styled")
	assert.True(t, ok)
	assert.Equal(t, "true", v)
}

func TestMutate(t *testing.T) {
	doc := MustParse(page)
	doc.Mutate(func(d *goquery.Document) {
		d.Find("body").AppendHtml(`<h1>New</h1>`)
	})
	h1, _ := doc.Query("h1")
	require.NotNil(t, h1)
	assert.Equal(t, "New", h1.Text())
	assert.Contains(t, doc.HTML(), "<h1>New</h1>")
}

func TestSnapshotScopeIsTheDocument(t *testing.T) {
	doc := MustParse(page)

	scoped, release := dom.Scope(doc)
	assert.Same(t, doc, scoped)

	el, err := scoped.Query("strong")
	require.NoError(t, err)
	dom.Keep(el)
	release()
	assert.Equal(t, "Go Developer", dom.TrimmedText(el))
}
