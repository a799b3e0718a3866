package markdoc

import "strings"

// inline scans body[start:end) — always a single physical line or table
// cell, never spanning a newline — emitting Text/Code/Emphasis/Strong/
// Strikethrough/Link/Image/MarkdocTag events for its content.
func (s *scanner) inline(start, end int) {
	pos := start
	textStart := start

	flushText := func(upTo int) {
		if upTo > textStart {
			s.emit(Event{Kind: EvText, Text: string(s.body[textStart:upTo]), Start: textStart, End: upTo})
		}
	}

	for pos < end {
		c := s.body[pos]
		switch {
		case c == '{' && pos+1 < end && s.body[pos+1] == '%':
			if tagLen := ScanMarkdocTagEnd(s.body[pos:end]); tagLen > 0 {
				flushText(pos)
				s.emitMarkdocTag(pos, pos+tagLen, true)
				pos += tagLen
				textStart = pos
				continue
			}
			pos++

		case c == '`':
			n := runLength(s.body, pos, end, '`')
			closeAt := findRun(s.body, pos+n, end, '`', n)
			if closeAt >= 0 {
				flushText(pos)
				content := strings.TrimSpace(string(s.body[pos+n : closeAt]))
				s.emit(Event{Kind: EvCode, Text: content, Start: pos, End: closeAt + n})
				pos = closeAt + n
				textStart = pos
				continue
			}
			pos++

		case c == '!' && pos+1 < end && s.body[pos+1] == '[':
			if img, newPos, ok := parseImage(s.body, pos, end); ok {
				flushText(pos)
				s.emit(Event{Kind: EvStart, Tag: BlockTag{Kind: BTImage, Href: img.href, Src: img.href, Title: img.title}, Start: pos, End: newPos})
				s.emit(Event{Kind: EvEnd, Tag: BlockTag{Kind: BTImage, Href: img.href, Src: img.href, Title: img.title}, Start: pos, End: newPos})
				pos = newPos
				textStart = pos
				continue
			}
			pos++

		case c == '[':
			if link, textRange, newPos, ok := parseLink(s.body, pos, end); ok {
				flushText(pos)
				s.emit(Event{Kind: EvStart, Tag: BlockTag{Kind: BTLink, Href: link.href, Title: link.title}, Start: pos, End: newPos})
				s.inline(textRange[0], textRange[1])
				s.emit(Event{Kind: EvEnd, Tag: BlockTag{Kind: BTLink, Href: link.href, Title: link.title}, Start: pos, End: newPos})
				pos = newPos
				textStart = pos
				continue
			}
			pos++

		case c == '~' && pos+1 < end && s.body[pos+1] == '~':
			if closeAt := strings.Index(string(s.body[pos+2:end]), "~~"); closeAt >= 0 {
				flushText(pos)
				inner := pos + 2
				innerEnd := pos + 2 + closeAt
				s.emit(Event{Kind: EvStart, Tag: BlockTag{Kind: BTStrikethrough}, Start: pos, End: innerEnd + 2})
				s.inline(inner, innerEnd)
				s.emit(Event{Kind: EvEnd, Tag: BlockTag{Kind: BTStrikethrough}, Start: pos, End: innerEnd + 2})
				pos = innerEnd + 2
				textStart = pos
				continue
			}
			pos++

		case c == '*' || c == '_':
			n := runLength(s.body, pos, end, c)
			if n >= 2 {
				closeAt := findRun(s.body, pos+2, end, c, 2)
				if closeAt >= 0 {
					flushText(pos)
					s.emit(Event{Kind: EvStart, Tag: BlockTag{Kind: BTStrong}, Start: pos, End: closeAt + 2})
					s.inline(pos+2, closeAt)
					s.emit(Event{Kind: EvEnd, Tag: BlockTag{Kind: BTStrong}, Start: pos, End: closeAt + 2})
					pos = closeAt + 2
					textStart = pos
					continue
				}
			}
			closeAt := findRun(s.body, pos+1, end, c, 1)
			if closeAt >= 0 {
				flushText(pos)
				s.emit(Event{Kind: EvStart, Tag: BlockTag{Kind: BTEmphasis}, Start: pos, End: closeAt + 1})
				s.inline(pos+1, closeAt)
				s.emit(Event{Kind: EvEnd, Tag: BlockTag{Kind: BTEmphasis}, Start: pos, End: closeAt + 1})
				pos = closeAt + 1
				textStart = pos
				continue
			}
			pos++

		case c == '\\' && pos+1 < end:
			// Backslash escape of ASCII punctuation: drop the backslash by
			// splitting the text run; the builder coalesces the pieces.
			if strings.IndexByte("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", s.body[pos+1]) >= 0 {
				flushText(pos)
				textStart = pos + 1
			}
			pos += 2

		default:
			pos++
		}
	}
	flushText(end)
}

func runLength(b []byte, pos, end int, c byte) int {
	n := 0
	for pos+n < end && b[pos+n] == c {
		n++
	}
	return n
}

// findRun returns the index of the next run of exactly-or-more count
// copies of c starting at or after pos, or -1.
func findRun(b []byte, pos, end int, c byte, count int) int {
	for i := pos; i < end; i++ {
		if b[i] != c {
			continue
		}
		n := runLength(b, i, end, c)
		if n >= count {
			return i
		}
	}
	return -1
}

type linkDest struct{ href, title string }

// parseLink parses "[text](href "title")" starting at pos (b[pos]=='[').
// Returns the destination, the byte range of the link text, the offset
// just past the closing ')', and whether the parse succeeded.
func parseLink(b []byte, pos, end int) (linkDest, [2]int, int, bool) {
	closeBracket := matchingBracket(b, pos, end, '[', ']')
	if closeBracket < 0 || closeBracket+1 >= end || b[closeBracket+1] != '(' {
		return linkDest{}, [2]int{}, 0, false
	}
	parenEnd := strings.IndexByte(string(b[closeBracket+2:end]), ')')
	if parenEnd < 0 {
		return linkDest{}, [2]int{}, 0, false
	}
	parenEnd += closeBracket + 2
	dest := parseDestAndTitle(b[closeBracket+2 : parenEnd])
	return dest, [2]int{pos + 1, closeBracket}, parenEnd + 1, true
}

// parseImage parses "![alt](src "title")" starting at pos (b[pos]=='!').
func parseImage(b []byte, pos, end int) (linkDest, int, bool) {
	link, _, newPos, ok := parseLink(b, pos+1, end)
	return link, newPos, ok
}

func matchingBracket(b []byte, pos, end int, open, close byte) int {
	depth := 0
	for i := pos; i < end; i++ {
		switch b[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func parseDestAndTitle(b []byte) linkDest {
	s := strings.TrimSpace(string(b))
	if s == "" {
		return linkDest{}
	}
	if s[0] == '"' {
		return linkDest{title: strings.Trim(s, `"`)}
	}
	i := 0
	for i < len(s) && s[i] != ' ' {
		i++
	}
	href := s[:i]
	rest := strings.TrimSpace(s[i:])
	title := strings.Trim(rest, `"`)
	return linkDest{href: href, title: title}
}
