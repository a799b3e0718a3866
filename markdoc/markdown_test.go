package markdoc

import "testing"

func eventKinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

func TestTokenize_Heading(t *testing.T) {
	events := Tokenize([]byte("# Heading"))
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3: %+v", len(events), events)
	}
	if events[0].Kind != EvStart || events[0].Tag.Kind != BTHeading || events[0].Tag.Level != 1 {
		t.Errorf("events[0] = %+v", events[0])
	}
	if events[1].Kind != EvText || events[1].Text != "Heading" {
		t.Errorf("events[1] = %+v", events[1])
	}
	if events[2].Kind != EvEnd || events[2].Tag.Kind != BTHeading {
		t.Errorf("events[2] = %+v", events[2])
	}
}

func TestTokenize_ThematicBreak(t *testing.T) {
	events := Tokenize([]byte("---"))
	if len(events) != 1 || events[0].Kind != EvRule {
		t.Fatalf("events = %+v", events)
	}
}

func TestTokenize_BlockPositionedMarkdocTag(t *testing.T) {
	events := Tokenize([]byte(`{% foo bar="x" %}`))
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1: %+v", len(events), events)
	}
	if events[0].Kind != EvMarkdocTag || events[0].Inline {
		t.Errorf("events[0] = %+v, want block-positioned MarkdocTag", events[0])
	}
}

func TestTokenize_InlinePositionedMarkdocTag(t *testing.T) {
	events := Tokenize([]byte(`p {% $foo.bar %}`))
	var sawInline bool
	for _, e := range events {
		if e.Kind == EvMarkdocTag {
			sawInline = e.Inline
		}
	}
	if !sawInline {
		t.Error("a tag following paragraph text should be inline")
	}
}

func TestTokenize_FencedCodeSpansWholeBlock(t *testing.T) {
	src := "```javascript\nlet x = 1;\n```"
	events := Tokenize([]byte(src))
	if len(events) != 2 || events[0].Kind != EvStart || events[0].Tag.Kind != BTCodeBlock {
		t.Fatalf("events = %+v", events)
	}
	if events[0].Start != 0 || events[0].End != len(src) {
		t.Errorf("fence range = [%d,%d), want [0,%d)", events[0].Start, events[0].End, len(src))
	}
}

func TestTokenize_List(t *testing.T) {
	events := Tokenize([]byte("* a\n* b\n"))
	kinds := eventKinds(events)
	want := []EventKind{EvStart, EvStart, EvText, EvEnd, EvStart, EvText, EvEnd, EvEnd}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %+v, want %+v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("kinds[%d] = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestTokenize_Table(t *testing.T) {
	src := "| a | b |\n| - | - |\n| 1 | 2 |\n"
	events := Tokenize([]byte(src))
	var sawHead, sawBody, sawHeaderCell bool
	for _, e := range events {
		if e.Kind == EvStart && e.Tag.Kind == BTTableHead {
			sawHead = true
		}
		if e.Kind == EvStart && e.Tag.Kind == BTTableCell && e.Tag.IsHeaderCell {
			sawHeaderCell = true
		}
		if e.Kind == EvStart && e.Tag.Kind == BTTableRow {
			sawBody = true
		}
	}
	if !sawHead || !sawBody || !sawHeaderCell {
		t.Errorf("missing expected table structure in %+v", events)
	}
}

func TestInline_EmphasisStrongCode(t *testing.T) {
	events := Tokenize([]byte("a *b* **c** `d`"))
	var sawEmphasis, sawStrong, sawCode bool
	for _, e := range events {
		if e.Kind == EvStart && e.Tag.Kind == BTEmphasis {
			sawEmphasis = true
		}
		if e.Kind == EvStart && e.Tag.Kind == BTStrong {
			sawStrong = true
		}
		if e.Kind == EvCode && e.Text == "d" {
			sawCode = true
		}
	}
	if !sawEmphasis || !sawStrong || !sawCode {
		t.Errorf("missing expected inline structure in %+v", events)
	}
}

func TestInline_Link(t *testing.T) {
	events := Tokenize([]byte(`[text](http://example.com "title")`))
	var href, title string
	for _, e := range events {
		if e.Kind == EvStart && e.Tag.Kind == BTLink {
			href = e.Tag.Href
			title = e.Tag.Title
		}
	}
	if href != "http://example.com" || title != "title" {
		t.Errorf("href=%q title=%q", href, title)
	}
}
