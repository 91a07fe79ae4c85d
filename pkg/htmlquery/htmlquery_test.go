package htmlquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html><head>
<title> Sample post </title>
<meta property="og:video" content="https://cdn.example/v.mp4">
<meta property="og:image" content="  ">
<meta name="twitter:image" content="https://cdn.example/thumb.jpg">
<script type="application/ld+json">{"@type":"VideoObject","contentUrl":"https://cdn.example/ld.mp4"}</script>
<script type="application/ld+json">[{"@type":"Person"},{"@graph":[{"@type":"ImageObject"}]}]</script>
<script type="application/ld+json">{ broken </script>
<script src="/static/app.js"></script>
<script>window._sharedData = {"a":1};</script>
<script type="application/json" id="state">{"b":2}</script>
</head>
<body><div data-store='{"src":"https://cdn.example/m.mp4"}'></div><div data-store=""></div></body></html>`

func TestMeta(t *testing.T) {
	doc, err := Parse(samplePage)
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example/v.mp4", doc.Meta("og:video"))
	assert.Equal(t, "https://cdn.example/thumb.jpg", doc.Meta("og:image", "twitter:image"))
	assert.Equal(t, "", doc.Meta("og:description"))
	assert.Equal(t, "Sample post", doc.Title())
}

func TestJSONLD(t *testing.T) {
	doc, err := Parse(samplePage)
	require.NoError(t, err)

	objects := doc.JSONLD()
	require.Len(t, objects, 4)
	assert.Equal(t, "VideoObject", objects[0]["@type"])
	assert.Equal(t, "Person", objects[1]["@type"])
	assert.Equal(t, "ImageObject", objects[3]["@type"])
}

func TestScriptsAndAttrs(t *testing.T) {
	doc, err := Parse(samplePage)
	require.NoError(t, err)

	scripts := doc.Scripts()
	var ids []string
	for _, s := range scripts {
		ids = append(ids, s.ID)
	}
	assert.Len(t, scripts, 5)
	assert.Contains(t, ids, "state")

	assert.Equal(t, []string{`{"src":"https://cdn.example/m.mp4"}`}, doc.Attrs("[data-store]", "data-store"))
	assert.Equal(t, "", doc.Attr("video", "src"))
	assert.Contains(t, doc.Raw(), "_sharedData")
}

func TestUnquote(t *testing.T) {
	assert.Equal(t, "https://cdn/v.mp4?a=1&b=2", Unquote(`https:\/\/cdn\/v.mp4?a=1&b=2`))
	assert.Equal(t, "plain", Unquote("plain"))
	// invalid escapes fall back to the common replacements
	assert.Equal(t, "https://cdn/x?a&b\\q", Unquote(`https:\/\/cdn\/x?a&b\q`))
}
