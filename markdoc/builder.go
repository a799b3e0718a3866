package markdoc

import (
	"fmt"
	"strings"
)

// Parse is the AstBuilder's entry point (spec §4.3): tokenize input with
// MarkdownAdapter, build the tree, and return the Document root.
func Parse(input []byte) *Node {
	rest, frontmatter, offset := ExtractFrontmatter(input)

	doc := newNode(Document, 0, len(input))
	if frontmatter != "" {
		doc.setAttr("frontmatter", StringValue(frontmatter))
	}

	b := &builder{input: rest, offset: offset, stack: []*Node{doc}}
	b.process(Tokenize(rest), true)
	return doc
}

// ExtractFrontmatter splits a "---\n...\n---\n" prefixed block from
// input, returning the remaining body, the trimmed frontmatter text
// (empty if none), and the byte offset that must be added to every
// event range produced by tokenizing the returned body so ranges refer
// back to the original input (spec §4.3, §8).
func ExtractFrontmatter(input []byte) (rest []byte, frontmatter string, offset int) {
	s := string(input)
	if !strings.HasPrefix(s, "---") {
		return input, "", 0
	}
	afterFirst := s[3:]
	idx := strings.Index(afterFirst, "\n---")
	if idx < 0 {
		return input, "", 0
	}
	fm := afterFirst[:idx]
	// Skip a leading newline right after the opening "---".
	fm = strings.TrimPrefix(fm, "\n")

	tail := afterFirst[idx+4:]
	// The closing delimiter line may be followed by a newline which
	// belongs to the delimiter, not the body.
	tail = strings.TrimPrefix(tail, "\n")

	restStr := tail
	off := len(s) - len(restStr)
	return []byte(restStr), strings.TrimSpace(fm), off
}

type builder struct {
	input  []byte // frontmatter-stripped body; event ranges index into this
	offset int
	stack  []*Node
}

func (b *builder) top() *Node { return b.stack[len(b.stack)-1] }

func (b *builder) push(n *Node) {
	b.top().addChild(n)
	b.stack = append(b.stack, n)
}

func (b *builder) pop() *Node {
	n := b.top()
	b.stack = b.stack[:len(b.stack)-1]
	return n
}

func (b *builder) promoteInline(addInlines bool, start, end int) {
	if !addInlines {
		return
	}
	if top := b.top(); top.Kind != Inline && !top.isInline() {
		b.push(newNode(Inline, start, end))
	}
}

func (b *builder) popInlineIfActive() {
	if b.top().Kind == Inline {
		b.pop()
	}
}

func (b *builder) mkRange(start, end int) (int, int) {
	return start + b.offset, end + b.offset
}

// process dispatches a flat event stream against the builder's current
// ancestor stack. addInlines is false for the fenced-body template
// sub-parser's stream (spec §4.3.1), which never synthesizes Inline
// wrappers.
func (b *builder) process(events []Event, addInlines bool) {
	insideThead := false
	_ = insideThead // kept for documentation; see BTTableCell/IsHeaderCell below.

	for _, ev := range events {
		start, end := b.mkRange(ev.Start, ev.End)

		switch ev.Kind {
		case EvStart:
			b.handleStart(ev, start, end, addInlines)

		case EvEnd:
			b.handleEnd(ev, start, end)

		case EvText:
			b.promoteInline(addInlines, start, start)
			b.appendText(ev.Text, start, end)

		case EvCode:
			b.promoteInline(addInlines, start, start)
			n := newNode(Code, start, end)
			n.setAttr("content", StringValue(ev.Text))
			b.top().addChild(n)

		case EvSoftBreak:
			b.promoteInline(addInlines, start, start)
			b.top().addChild(newNode(SoftBreak, start, end))

		case EvHardBreak:
			b.promoteInline(addInlines, start, start)
			b.top().addChild(newNode(HardBreak, start, end))

		case EvRule:
			b.popInlineIfActive()
			b.top().addChild(newNode(Rule, start, end))

		case EvMarkdocTag:
			b.handleMarkdocTag(ev, start, end, addInlines)
		}
	}
}

// appendText attaches a Text child, coalescing into the previous
// sibling's content when it is itself a text-kind node — except a lone
// " " separator, which is never coalesced (spec §4.3).
func (b *builder) appendText(text string, start, end int) {
	parent := b.top()
	if n := len(parent.Children); n > 0 {
		prev := parent.Children[n-1]
		if prev.Kind == Text && text != " " {
			if prevContent, ok := prev.Attributes["content"]; ok && prevContent.Kind == KindString && prevContent.String != " " {
				prev.setAttr("content", StringValue(prevContent.String+text))
				prev.End = end
				return
			}
		}
	}
	n := newNode(Text, start, end)
	n.setAttr("content", StringValue(text))
	parent.addChild(n)
}

func (b *builder) handleStart(ev Event, start, end int, addInlines bool) {
	if ev.Tag.Kind == BTCodeBlock {
		b.handleFence(ev, start, end)
		return
	}

	nk, attrs, isInline := blockStartInfo(ev.Tag)
	if isInline {
		b.promoteInline(addInlines, start, start)
	} else {
		b.popInlineIfActive()
	}
	n := newNode(nk, start, end)
	n.extendAttrs(attrs)
	b.push(n)
}

func (b *builder) handleEnd(ev Event, start, end int) {
	switch ev.Tag.Kind {
	case BTCodeBlock:
		return // Fence was fully constructed (non-pushed) at Start.

	case BTTableHead:
		b.pop() // TableHead
		body := newNode(TableBody, start, end)
		b.top().addChild(body)
		b.stack = append(b.stack, body)
		return

	case BTTable:
		if b.top().Kind == TableBody {
			b.pop()
		}
		b.pop()
		return
	}

	// A block End first closes the Inline wrapper holding its inline run;
	// inline container ends (Emphasis, Link, ...) pop only themselves.
	_, _, isInline := blockStartInfo(ev.Tag)
	if !isInline {
		b.popInlineIfActive()
	}
	b.pop()
}

// blockStartInfo maps a BlockTag to the NodeKind/attributes a generic
// Start event produces, and whether that kind is inline (spec §4.4/§3).
func blockStartInfo(t BlockTag) (NodeKind, Attributes, bool) {
	switch t.Kind {
	case BTParagraph:
		return Paragraph, nil, false
	case BTHeading:
		return Heading, Attributes{"level": NumberValue(float64(t.Level))}, false
	case BTBlockQuote:
		return Blockquote, nil, false
	case BTList:
		if t.Ordered {
			return ListKind, Attributes{"ordered": BooleanValue(true), "number": NumberValue(float64(t.ListNumber))}, false
		}
		return ListKind, Attributes{"ordered": BooleanValue(false)}, false
	case BTItem:
		return Item, nil, false
	case BTTable:
		return Table, nil, false
	case BTTableHead:
		return TableHead, nil, false
	case BTTableRow:
		return TableRow, nil, false
	case BTTableCell:
		if t.IsHeaderCell {
			return TableHeadCell, nil, false
		}
		return TableCell, nil, false
	case BTEmphasis:
		return Emphasis, nil, true
	case BTStrong:
		return Strong, nil, true
	case BTStrikethrough:
		return Strike, nil, true
	case BTLink:
		attrs := Attributes{"href": StringValue(t.Href)}
		if t.Title != "" {
			attrs["title"] = StringValue(t.Title)
		}
		return Link, attrs, true
	case BTImage:
		attrs := Attributes{"src": StringValue(t.Src)}
		if t.Title != "" {
			attrs["title"] = StringValue(t.Title)
		}
		return Image, attrs, true
	}
	return Nop, nil, false
}

// handleFence implements spec §4.3's fenced-code-block handling: the
// entire block's raw slice is re-examined directly, rather than relying
// on child Text/Code events (the adapter emits none for a fenced block).
func (b *builder) handleFence(ev Event, start, end int) {
	b.popInlineIfActive()

	raw := b.input[ev.Start:ev.End]
	firstNL := indexByte(raw, '\n')
	lastNL := lastIndexByte(raw, '\n')

	n := newNode(Fence, start, end)

	var infoLine []byte
	if firstNL >= 0 {
		infoLine = raw[:firstNL]
	} else {
		infoLine = raw
	}
	infoLine = trimFenceMarker(infoLine)

	language, annotationAttrs := parseFenceInfo(infoLine)
	if language != "" {
		n.setAttr("language", StringValue(language))
	}
	n.extendAttrs(annotationAttrs)

	var content string
	if firstNL >= 0 && lastNL > firstNL {
		content = string(raw[firstNL+1 : lastNL+1])
	} else if firstNL >= 0 {
		content = string(raw[firstNL+1:])
	}
	n.setAttr("content", StringValue(content))

	b.top().addChild(n)

	// Template sub-parser: re-scan the fenced body for embedded tags as
	// its own flat event stream, fed back in with add_inlines=false.
	if content != "" {
		subEvents := scanTemplate(content, ev.Start+firstNL+1)
		b.stack = append(b.stack, n)
		b.process(subEvents, false)
		b.stack = b.stack[:len(b.stack)-1]
	}
}

func trimFenceMarker(b []byte) []byte {
	s := strings.TrimLeft(string(b), " \t")
	i := 0
	for i < len(s) && (s[i] == '`' || s[i] == '~') {
		i++
	}
	return []byte(strings.TrimSpace(s[i:]))
}

// parseFenceInfo splits a fence info string into its language word and
// any {% ... %} annotation's attributes (spec §4.3).
func parseFenceInfo(info []byte) (language string, attrs Attributes) {
	s := string(info)
	if idx := strings.Index(s, "{%"); idx >= 0 {
		tagLen := ScanMarkdocTagEnd([]byte(s[idx:]))
		if tagLen > 0 {
			tag := ParseTag([]byte(s[idx : idx+tagLen]))
			if tag.Kind == TagAnnotation {
				attrs = tag.Attributes
			}
			s = strings.TrimSpace(s[:idx])
		}
	}
	fields := strings.Fields(s)
	if len(fields) > 0 {
		language = fields[0]
	}
	return language, attrs
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}

func lastIndexByte(b []byte, c byte) int {
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] == c {
			return i
		}
	}
	return -1
}

// scanTemplate implements the fenced-body template sub-parser (spec
// §4.3.1): split text on {% ... %} markers into a flat (Text, range) /
// (MarkdocTag, range) stream. Per the spec's open question, the tag's
// inline flag is unconditionally true (the behavior the original
// implementation actually exhibits).
func scanTemplate(content string, baseOffset int) []Event {
	b := []byte(content)
	var events []Event
	pos := 0
	textStart := 0
	for pos < len(b) {
		if b[pos] == '{' && pos+1 < len(b) && b[pos+1] == '%' {
			if tagLen := ScanMarkdocTagEnd(b[pos:]); tagLen > 0 {
				if pos > textStart {
					events = append(events, Event{Kind: EvText, Text: string(b[textStart:pos]), Start: textStart + baseOffset, End: pos + baseOffset})
				}
				events = append(events, Event{Kind: EvMarkdocTag, Text: string(b[pos : pos+tagLen]), Inline: true, Start: pos + baseOffset, End: pos + tagLen + baseOffset})
				pos += tagLen
				textStart = pos
				continue
			}
		}
		pos++
	}
	if textStart < len(b) {
		events = append(events, Event{Kind: EvText, Text: string(b[textStart:]), Start: textStart + baseOffset, End: len(b) + baseOffset})
	}
	return events
}

func (b *builder) handleMarkdocTag(ev Event, start, end int, addInlines bool) {
	tag := ParseTag([]byte(ev.Text))

	switch tag.Kind {
	case TagOpen:
		if ev.Inline {
			b.promoteInline(addInlines, start, start)
		} else {
			b.popInlineIfActive()
		}
		n := newNode(TagKind, start, end)
		n.Tag = tag.Name
		n.TagInline = ev.Inline
		n.extendAttrs(tag.Attributes)
		b.push(n)

	case TagStandalone:
		if ev.Inline {
			b.promoteInline(addInlines, start, start)
		} else {
			b.popInlineIfActive()
		}
		n := newNode(TagKind, start, end)
		n.Tag = tag.Name
		n.TagInline = ev.Inline
		n.extendAttrs(tag.Attributes)
		b.top().addChild(n)

	case TagClose:
		// A close always terminates whatever inline run precedes it,
		// regardless of its own inline flag, so it can match a Tag
		// pushed at block level (spec §8 scenario 6). It likewise closes
		// any other block container still open above that Tag (e.g. a
		// paragraph the tag's body opened but never explicitly closed).
		b.popInlineIfActive()
		for b.top().Kind != TagKind && len(b.stack) > 1 {
			b.pop()
		}
		top := b.top()
		if top.Kind == TagKind && top.Tag == tag.Name {
			b.pop()
		} else {
			n := newNode(TagKind, start, end)
			n.Tag = tag.Name
			n.TagInline = ev.Inline
			n.addError(Error{
				ID: "missing-opening", Level: Critical,
				Message: fmt.Sprintf("Tag '%s' is missing opening", tag.Name),
				Start:   start, End: end,
			})
			b.top().addChild(n)
		}

	case TagAnnotation:
		b.mergeAnnotation(tag.Attributes)

	case TagValueForm:
		b.promoteInline(addInlines, start, start)
		n := newNode(Text, start, end)
		n.setAttr("content", tag.Value)
		b.top().addChild(n)

	case TagError:
		b.popInlineIfActive()
		n := newNode(ErrorKind, start, end)
		n.addError(Error{ID: "syntax-error", Level: Critical, Message: tag.Err.Error(), Start: start, End: end})
		b.top().addChild(n)
	}
}

// mergeAnnotation merges attrs into the innermost currently open
// container: the node an annotation textually follows. When that node
// is the synthetic Inline wrapper, the merge targets the wrapper's
// parent instead (spec §5, "supplemented features": confirmed against
// original_source/src/parse.rs — an annotation following inline content
// inside a block always attaches to the block, not the Inline wrapper).
func (b *builder) mergeAnnotation(attrs Attributes) {
	top := b.top()
	if top.Kind == Inline && len(b.stack) >= 2 {
		b.stack[len(b.stack)-2].extendAttrs(attrs)
		return
	}
	top.extendAttrs(attrs)
}
