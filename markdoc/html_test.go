package markdoc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, r Renderable) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, RenderHTML(&sb, r))
	return sb.String()
}

func TestRenderHTML_String(t *testing.T) {
	got := render(t, Renderable{Kind: RenderableString, Text: "hi"})
	assert.Equal(t, "hi", got)
}

func TestRenderHTML_StringEscapes(t *testing.T) {
	got := render(t, Renderable{Kind: RenderableString, Text: `<b>&"'`})
	assert.NotContains(t, got, "<b>")
	assert.Contains(t, got, "&lt;b&gt;")
}

func TestRenderHTML_Null(t *testing.T) {
	got := render(t, Renderable{Kind: RenderableNull})
	assert.Equal(t, "", got)
}

func TestRenderHTML_Fragment(t *testing.T) {
	got := render(t, Renderable{Kind: RenderableFragment, Children: []Renderable{
		{Kind: RenderableString, Text: "a"},
		{Kind: RenderableString, Text: "b"},
	}})
	assert.Equal(t, "ab", got)
}

func TestRenderHTML_TagWithChildren(t *testing.T) {
	got := render(t, Renderable{Kind: RenderableTag, Name: "p", Children: []Renderable{
		{Kind: RenderableString, Text: "hi"},
	}})
	assert.Equal(t, "<p>hi</p>", got)
}

func TestRenderHTML_VoidElementHasNoClosingTag(t *testing.T) {
	got := render(t, Renderable{Kind: RenderableTag, Name: "hr"})
	assert.Equal(t, "<hr>", got)
}

func TestRenderHTML_VoidElementIgnoresChildren(t *testing.T) {
	got := render(t, Renderable{Kind: RenderableTag, Name: "br", Children: []Renderable{
		{Kind: RenderableString, Text: "should not appear"},
	}})
	assert.Equal(t, "<br>", got)
}

func TestRenderHTML_AttributesSortedAndEscaped(t *testing.T) {
	got := render(t, Renderable{Kind: RenderableTag, Name: "a", Attributes: Attributes{
		"zeta":  StringValue("1"),
		"alpha": StringValue(`"quoted"`),
	}})
	assert.Equal(t, `<a alpha="&#34;quoted&#34;" zeta="1"></a>`, got)
}

// The full pipeline's literal end-to-end HTML for spec §8 scenario 6.
func TestFullPipeline_GoldenHTML(t *testing.T) {
	src := "# t\n\n---\n\np\n\n* a\n* b\n\n{% foo bar=\"x\" %}p {% $foo.bar %}{% /foo %}"
	doc := Parse([]byte(src))

	cfg := DefaultConfig()
	cfg.Tags["foo"] = Schema{
		Render: "foo",
		Attributes: map[string]AttributeSpec{
			"bar": attr(RenderTrue, "", false),
		},
	}
	cfg.Variables = &Variables{Values: Attributes{
		"foo": HashValue(map[string]Value{"bar": StringValue("v")}),
	}}

	ResolveNode(doc, cfg)
	renderable := TransformNode(doc, cfg)

	var sb strings.Builder
	require.NoError(t, RenderHTML(&sb, renderable))

	want := `<h1>t</h1><hr><p>p</p><ul><li>a</li><li>b</li></ul><foo bar="x"><p>p v</p></foo>`
	assert.Equal(t, want, sb.String())
}
