package markdoc

import "strings"

// scanFence consumes a fenced code block starting at lineStart (the
// opening fence line) and returns the offset just past the block and the
// fence's info string. The Start event's range spans the whole block
// (open fence through close fence, or EOF) so the builder can re-slice
// the raw input itself per spec §4.3.
func (s *scanner) scanFence(lineStart, indent, bodyStart, limit int) (blockEnd int, info string) {
	openLine := s.body[lineStart+indent : minInt(s.lineEndFrom(lineStart), limit)]
	fenceChar := openLine[0]
	fenceLen := 0
	for fenceLen < len(openLine) && openLine[fenceLen] == fenceChar {
		fenceLen++
	}
	info = strings.TrimSpace(string(openLine[fenceLen:]))

	pos := bodyStart
	for pos < limit {
		ls, le, next := s.lineBounds(pos)
		if le > limit {
			le = limit
		}
		line := s.body[ls:le]
		trimmedIndent := leadingSpaces(line)
		candidate := line[trimmedIndent:]
		n := 0
		for n < len(candidate) && candidate[n] == fenceChar {
			n++
		}
		if n >= fenceLen && len(strings.TrimSpace(string(candidate[n:]))) == 0 {
			return next, info
		}
		pos = next
	}
	return limit, info
}

func (s *scanner) lineEndFrom(pos int) int {
	_, end, _ := s.lineBounds(pos)
	return end
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// scanBlockquote consumes consecutive '>'-prefixed lines (lazy
// continuation across blank lines is not supported, matching the
// AstBuilder's "full-document parsing only" scope) and recursively
// block-scans the content with one '>' level stripped, so nested '>'
// quoting is handled by the same code on the sub-scanner.
func (s *scanner) scanBlockquote(lineStart, limit int) int {
	var content []byte
	var origin []int
	pos := lineStart

	for pos < limit {
		ls, le, next := s.lineBounds(pos)
		if le > limit {
			le = limit
		}
		line := s.body[ls:le]
		indent := leadingSpaces(line)
		trimmed := line[indent:]
		if len(trimmed) == 0 || trimmed[0] != '>' {
			break
		}
		contentStart := ls + indent + 1
		if contentStart < le && s.body[contentStart] == ' ' {
			contentStart++
		}
		for i := contentStart; i < le; i++ {
			content = append(content, s.body[i])
			origin = append(origin, i)
		}
		content = append(content, '\n')
		origin = append(origin, le) // newline maps to end-of-line position
		pos = next
		if le < next && isBlankLine(s.body[ls:le]) {
			// a blank quoted line ("> ") still continues the quote
		}
	}

	s.emit(Event{Kind: EvStart, Tag: BlockTag{Kind: BTBlockQuote}, Start: lineStart, End: pos})
	sub := &scanner{body: content}
	sub.blocks(len(content))
	for _, e := range sub.events {
		e.Start = remapOffset(origin, e.Start)
		e.End = remapOffset(origin, e.End)
		s.emit(e)
	}
	s.emit(Event{Kind: EvEnd, Tag: BlockTag{Kind: BTBlockQuote}, Start: lineStart, End: pos})
	return pos
}

func remapOffset(origin []int, off int) int {
	if len(origin) == 0 {
		return off
	}
	if off < len(origin) {
		return origin[off]
	}
	return origin[len(origin)-1] + 1
}

// scanList consumes a run of sibling list items sharing the same marker
// family (bullet vs ordered) and emits List/Item events. Each item's
// content is the rest of its marker line, scanned as a single inline run
// (covers the common "* a\n* b" shape); items do not span several lines,
// and an indented continuation line ends the list.
func (s *scanner) scanList(lineStart, limit int) int {
	ls, le, next := s.lineBounds(lineStart)
	if le > limit {
		le = limit
	}
	firstLine := s.body[ls:le]
	indent := leadingSpaces(firstLine)
	trimmed := firstLine[indent:]
	ordered, markerWidth, startNumber := listMarkerInfo(trimmed)

	s.emit(Event{Kind: EvStart, Tag: BlockTag{Kind: BTList, Ordered: ordered, ListNumber: startNumber}, Start: lineStart, End: limit})

	pos := lineStart
	for pos < limit {
		ls, le, next = s.lineBounds(pos)
		if le > limit {
			le = limit
		}
		line := s.body[ls:le]
		if isBlankLine(line) {
			// A single blank line between tight items is tolerated; two
			// in a row (or EOF) ends the list.
			peekNext := next
			if peekNext >= limit {
				pos = next
				break
			}
			nls, nle, _ := s.lineBounds(peekNext)
			if nle > limit {
				nle = limit
			}
			if isBlankLine(s.body[nls:nle]) {
				pos = next
				break
			}
			pos = next
			continue
		}
		ind := leadingSpaces(line)
		tr := line[ind:]
		itemOrdered, itemWidth, _ := listMarkerInfo(tr)
		if len(tr) == 0 || itemOrdered != ordered || itemWidth == 0 {
			break
		}
		itemContentStart := ls + ind + itemWidth
		itemEnd := s.lineEndFrom(itemContentStart)
		s.emit(Event{Kind: EvStart, Tag: BlockTag{Kind: BTItem}, Start: ls, End: itemEnd})
		s.inline(itemContentStart, itemEnd)
		s.emit(Event{Kind: EvEnd, Tag: BlockTag{Kind: BTItem}, Start: ls, End: itemEnd})
		pos = next
	}

	s.emit(Event{Kind: EvEnd, Tag: BlockTag{Kind: BTList, Ordered: ordered, ListNumber: startNumber}, Start: lineStart, End: pos})
	return pos
}

// listMarkerInfo reports whether b begins with a list marker, its kind,
// the marker's width (including the following space), and - for ordered
// markers - the start number.
func listMarkerInfo(b []byte) (ordered bool, width int, number int) {
	if len(b) == 0 {
		return false, 0, 0
	}
	if b[0] == '-' || b[0] == '*' || b[0] == '+' {
		if len(b) == 1 || b[1] == ' ' {
			w := 1
			for w < len(b) && b[w] == ' ' {
				w++
			}
			return false, w, 0
		}
		return false, 0, 0
	}
	i := 0
	for i < len(b) && b[i] >= '0' && b[i] <= '9' && i < 9 {
		i++
	}
	if i == 0 || i >= len(b) || (b[i] != '.' && b[i] != ')') {
		return false, 0, 0
	}
	if i+1 < len(b) && b[i+1] != ' ' {
		return false, 0, 0
	}
	n := 0
	for _, c := range b[:i] {
		n = n*10 + int(c-'0')
	}
	w := i + 1
	for w < len(b) && b[w] == ' ' {
		w++
	}
	return true, w, n
}

// scanTable consumes a GFM pipe table: header row, delimiter row, and
// body rows.
func (s *scanner) scanTable(headerStart, headerEnd, delimStart, limit int) int {
	s.emit(Event{Kind: EvStart, Tag: BlockTag{Kind: BTTable}, Start: headerStart, End: limit})
	s.emit(Event{Kind: EvStart, Tag: BlockTag{Kind: BTTableHead}, Start: headerStart, End: headerEnd})
	s.emit(Event{Kind: EvStart, Tag: BlockTag{Kind: BTTableRow}, Start: headerStart, End: headerEnd})
	for _, cell := range splitTableRow(s.body[headerStart:headerEnd], headerStart) {
		s.emit(Event{Kind: EvStart, Tag: BlockTag{Kind: BTTableCell, IsHeaderCell: true}, Start: cell.start, End: cell.end})
		s.inline(cell.start, cell.end)
		s.emit(Event{Kind: EvEnd, Tag: BlockTag{Kind: BTTableCell, IsHeaderCell: true}, Start: cell.start, End: cell.end})
	}
	s.emit(Event{Kind: EvEnd, Tag: BlockTag{Kind: BTTableRow}, Start: headerStart, End: headerEnd})
	s.emit(Event{Kind: EvEnd, Tag: BlockTag{Kind: BTTableHead}, Start: headerStart, End: headerEnd})

	_, delimEnd, pos := s.lineBounds(delimStart)
	_ = delimEnd
	bodyRowsStart := pos
	bodyRowsEnd := pos

	for pos < limit {
		ls, le, next := s.lineBounds(pos)
		if le > limit {
			le = limit
		}
		line := s.body[ls:le]
		if isBlankLine(line) || !strings.Contains(string(line), "|") {
			break
		}
		bodyRowsEnd = next
		pos = next
	}

	// Body rows are emitted as plain TableRow/TableCell events; the
	// AstBuilder synthesizes the TableBody container itself when it sees
	// End(TableHead) (spec §4.3).
	rp := bodyRowsStart
	for rp < bodyRowsEnd {
		ls, le, next := s.lineBounds(rp)
		if le > bodyRowsEnd {
			le = bodyRowsEnd
		}
		s.emit(Event{Kind: EvStart, Tag: BlockTag{Kind: BTTableRow}, Start: ls, End: le})
		for _, cell := range splitTableRow(s.body[ls:le], ls) {
			s.emit(Event{Kind: EvStart, Tag: BlockTag{Kind: BTTableCell}, Start: cell.start, End: cell.end})
			s.inline(cell.start, cell.end)
			s.emit(Event{Kind: EvEnd, Tag: BlockTag{Kind: BTTableCell}, Start: cell.start, End: cell.end})
		}
		s.emit(Event{Kind: EvEnd, Tag: BlockTag{Kind: BTTableRow}, Start: ls, End: le})
		rp = next
	}

	s.emit(Event{Kind: EvEnd, Tag: BlockTag{Kind: BTTable}, Start: headerStart, End: bodyRowsEnd})
	return bodyRowsEnd
}

type tableCell struct{ start, end int }

// splitTableRow splits one physical pipe-table row into cell byte
// ranges, offset by base (the absolute start of line within s.body),
// ignoring a leading/trailing "|" and escaped "\|".
func splitTableRow(line []byte, base int) []tableCell {
	start := 0
	end := len(line)
	for start < end && line[start] == ' ' {
		start++
	}
	for end > start && line[end-1] == ' ' {
		end--
	}
	if start < end && line[start] == '|' {
		start++
	}
	if end > start && line[end-1] == '|' {
		end--
	}

	var cells []tableCell
	cellStart := start
	i := start
	for i < end {
		if line[i] == '\\' && i+1 < end {
			i += 2
			continue
		}
		if line[i] == '|' {
			cells = append(cells, trimCellSpace(line, cellStart, i, base))
			cellStart = i + 1
		}
		i++
	}
	cells = append(cells, trimCellSpace(line, cellStart, end, base))
	return cells
}

// trimCellSpace trims surrounding spaces from a cell range and converts
// it from line-relative indices to absolute offsets within s.body.
func trimCellSpace(line []byte, start, end, base int) tableCell {
	for start < end && line[start] == ' ' {
		start++
	}
	for end > start && line[end-1] == ' ' {
		end--
	}
	return tableCell{start: start + base, end: end + base}
}

// scanParagraph consumes consecutive non-blank lines that don't start a
// different block type, joining them with soft breaks, and returns the
// offset just past the paragraph.
func (s *scanner) scanParagraph(lineStart, limit int) int {
	start := lineStart
	pos := lineStart
	var lastLineEnd int
	var prevLineHard bool

	s.emit(Event{Kind: EvStart, Tag: BlockTag{Kind: BTParagraph}, Start: start, End: limit})

	first := true
	for pos < limit {
		ls, le, next := s.lineBounds(pos)
		if le > limit {
			le = limit
		}
		line := s.body[ls:le]
		if isBlankLine(line) {
			pos = next
			break
		}
		indent := leadingSpaces(line)
		trimmed := line[indent:]
		if !first && paragraphInterrupts(trimmed) {
			break
		}
		if !first {
			if prevLineHard {
				s.emit(Event{Kind: EvHardBreak, Start: lastLineEnd, End: ls})
			} else {
				s.emit(Event{Kind: EvSoftBreak, Start: lastLineEnd, End: ls})
			}
		}
		contentEnd := le
		if strings.HasSuffix(string(line), "\\") {
			prevLineHard = true
			contentEnd = le - 1
		} else if strings.HasSuffix(string(line), "  ") {
			prevLineHard = true
			contentEnd = len(strings.TrimRight(string(line), " ")) + ls
		} else {
			prevLineHard = false
		}
		s.inline(ls, contentEnd)
		lastLineEnd = le
		first = false
		pos = next
	}

	s.emit(Event{Kind: EvEnd, Tag: BlockTag{Kind: BTParagraph}, Start: start, End: pos})
	return pos
}

// paragraphInterrupts reports whether a continuation line should instead
// start a new block (ending the current paragraph via "lazy
// continuation" rules).
func paragraphInterrupts(trimmed []byte) bool {
	return isATXHeading(trimmed) || isThematicBreak(trimmed) || isFenceStart(trimmed) ||
		isBlockquoteStart(trimmed) || isListItemStart(trimmed) || strings.HasPrefix(string(trimmed), "{%")
}
