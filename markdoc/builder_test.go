package markdoc

import "testing"

func firstChild(n *Node) *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

func TestParse_RootIsAlwaysDocument(t *testing.T) {
	for _, src := range []string{"", "# h", "plain text", "{% /nope %}"} {
		doc := Parse([]byte(src))
		if doc.Kind != Document {
			t.Errorf("Parse(%q).Kind = %v, want Document", src, doc.Kind)
		}
	}
}

// Scenario 1 (spec §8): Document[ Heading{level:1}[ Inline[ Text{content:"Heading"} ] ] ].
func TestParse_BasicHeading(t *testing.T) {
	doc := Parse([]byte("# Heading"))
	h := firstChild(doc)
	if h == nil || h.Kind != Heading {
		t.Fatalf("doc children = %+v", doc.Children)
	}
	if int(h.Attributes["level"].Number) != 1 {
		t.Errorf("level = %+v", h.Attributes["level"])
	}
	inline := firstChild(h)
	if inline == nil || inline.Kind != Inline {
		t.Fatalf("heading children = %+v", h.Children)
	}
	text := firstChild(inline)
	if text == nil || text.Kind != Text || text.Attributes["content"].String != "Heading" {
		t.Fatalf("inline children = %+v", inline.Children)
	}
}

// Scenario 2 (spec §8): heading's attributes contain both level:1 and
// foo:true; text child "Heading ".
func TestParse_HeadingWithAnnotation(t *testing.T) {
	doc := Parse([]byte(`# Heading {% foo=true %}`))
	h := firstChild(doc)
	if h == nil || h.Kind != Heading {
		t.Fatalf("doc children = %+v", doc.Children)
	}
	if int(h.Attributes["level"].Number) != 1 {
		t.Errorf("level = %+v", h.Attributes["level"])
	}
	if !h.Attributes["foo"].Boolean {
		t.Errorf("foo = %+v, want true (merged onto the Heading, not the Inline wrapper)", h.Attributes["foo"])
	}
	inline := firstChild(h)
	text := firstChild(inline)
	if text.Attributes["content"].String != "Heading " {
		t.Errorf("content = %q, want %q", text.Attributes["content"].String, "Heading ")
	}
}

// Scenario 3 (spec §8): Fence node with foo:2, language:"javascript",
// content:"This is a test\n".
func TestParse_FencedCodeWithInlineAnnotation(t *testing.T) {
	doc := Parse([]byte("```javascript {% foo=2 %}\nThis is a test\n```"))
	fence := firstChild(doc)
	if fence == nil || fence.Kind != Fence {
		t.Fatalf("doc children = %+v", doc.Children)
	}
	if fence.Attributes["language"].String != "javascript" {
		t.Errorf("language = %q", fence.Attributes["language"].String)
	}
	if int(fence.Attributes["foo"].Number) != 2 {
		t.Errorf("foo = %+v", fence.Attributes["foo"])
	}
	if fence.Attributes["content"].String != "This is a test\n" {
		t.Errorf("content = %q", fence.Attributes["content"].String)
	}
}

// Scenario 4 (spec §8): a Tag(inline) node with tag:"missing" and a
// single missing-opening error.
func TestParse_UnmatchedClose(t *testing.T) {
	doc := Parse([]byte(`{% /missing %}`))
	n := firstChild(doc)
	if n == nil || n.Kind != TagKind || n.Tag != "missing" {
		t.Fatalf("doc children = %+v", doc.Children)
	}
	if len(n.Errors) != 1 || n.Errors[0].ID != "missing-opening" {
		t.Fatalf("errors = %+v", n.Errors)
	}
}

func TestParse_MatchedOpenClose(t *testing.T) {
	doc := Parse([]byte(`{% foo %}{% /foo %}`))
	n := firstChild(doc)
	if n == nil || n.Kind != TagKind || n.Tag != "foo" {
		t.Fatalf("doc children = %+v", doc.Children)
	}
	if len(n.Errors) != 0 {
		t.Errorf("errors = %+v, want none", n.Errors)
	}
}

func TestParse_Frontmatter(t *testing.T) {
	doc := Parse([]byte("---\ntitle: x\n---\nbody"))
	if doc.Attributes["frontmatter"].String != "title: x" {
		t.Errorf("frontmatter = %q", doc.Attributes["frontmatter"].String)
	}
	p := firstChild(doc)
	if p == nil || p.Kind != Paragraph {
		t.Fatalf("doc children = %+v", doc.Children)
	}
}

func TestParse_HasInlineInvariant(t *testing.T) {
	doc := Parse([]byte("# h\n\npara text\n"))
	var walk func(*Node)
	walk = func(n *Node) {
		if n.Kind.HasInline() {
			for i, c := range n.Children {
				if i == 0 {
					if c.Kind != Inline {
						t.Errorf("node %v's first child = %v, want Inline", n.Kind, c.Kind)
					}
				} else if c.isInline() {
					t.Errorf("node %v has an inline-kind child after position 0: %v", n.Kind, c.Kind)
				}
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(doc)
}

func TestParse_TableNormalization(t *testing.T) {
	doc := Parse([]byte("| a | b |\n| - | - |\n| 1 | 2 |\n"))
	table := firstChild(doc)
	if table == nil || table.Kind != Table {
		t.Fatalf("doc children = %+v", doc.Children)
	}
	if len(table.Children) != 2 {
		t.Fatalf("table children = %+v", table.Children)
	}
	head, body := table.Children[0], table.Children[1]
	if head.Kind != TableHead || body.Kind != TableBody {
		t.Fatalf("head=%v body=%v", head.Kind, body.Kind)
	}
	headerCell := firstChild(firstChild(head))
	if headerCell == nil || headerCell.Kind != TableHeadCell {
		t.Fatalf("header row children = %+v", firstChild(head).Children)
	}
	bodyCell := firstChild(firstChild(body))
	if bodyCell == nil || bodyCell.Kind != TableCell {
		t.Fatalf("body row children = %+v", firstChild(body).Children)
	}
}

func TestParse_AdjacentTextCoalesced(t *testing.T) {
	doc := Parse([]byte("a\\*b"))
	p := firstChild(doc)
	inline := firstChild(p)
	if len(inline.Children) != 1 {
		t.Fatalf("expected coalesced single text child, got %+v", inline.Children)
	}
	if inline.Children[0].Attributes["content"].String != "a*b" {
		t.Errorf("content = %q", inline.Children[0].Attributes["content"].String)
	}
}

// Scenario 6's nested shape (spec §8): a block-level Open tag whose
// inline body paragraph is closed by an inline-positioned Close event.
func TestParse_TagSpanningInlineContent(t *testing.T) {
	doc := Parse([]byte(`{% foo bar="x" %}p {% $v %}{% /foo %}`))
	tag := firstChild(doc)
	if tag == nil || tag.Kind != TagKind || tag.Tag != "foo" {
		t.Fatalf("doc children = %+v", doc.Children)
	}
	if tag.Attributes["bar"].String != "x" {
		t.Errorf("bar = %+v", tag.Attributes["bar"])
	}
	if len(tag.Errors) != 0 {
		t.Errorf("errors = %+v, want none (Close should match the block-level Open)", tag.Errors)
	}
	p := firstChild(tag)
	if p == nil || p.Kind != Paragraph {
		t.Fatalf("tag children = %+v", tag.Children)
	}
}
