package markdoc

import (
	"fmt"
	"io"

	"golang.org/x/net/html"
)

// voidElements is the standard HTML void-element set (spec §4.7); a Tag
// with one of these names never gets a closing tag or children.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// RenderHTML writes r to w (spec §4.7). Text and attribute values are
// escaped via golang.org/x/net/html.EscapeString (SPEC_FULL §3: the
// domain-stack resolution of spec.md's open question on escaping, the
// same "delegate to a real library" move the teacher makes with
// encoding/xml.EscapeText in element.go/decoder.go).
func RenderHTML(w io.Writer, r Renderable) error {
	switch r.Kind {
	case RenderableString:
		_, err := io.WriteString(w, html.EscapeString(r.Text))
		return err

	case RenderableFragment:
		for _, c := range r.Children {
			if err := RenderHTML(w, c); err != nil {
				return err
			}
		}
		return nil

	case RenderableTag:
		if err := writeOpenTag(w, r); err != nil {
			return err
		}
		if voidElements[r.Name] {
			return nil
		}
		for _, c := range r.Children {
			if err := RenderHTML(w, c); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "</%s>", r.Name)
		return err

	case RenderableNull:
		return nil
	}
	return nil
}

func writeOpenTag(w io.Writer, r Renderable) error {
	if _, err := fmt.Fprintf(w, "<%s", r.Name); err != nil {
		return err
	}
	for _, k := range r.Attributes.SortedKeys() {
		v := r.Attributes[k]
		if _, err := fmt.Fprintf(w, " %s=%q", k, html.EscapeString(v.Display())); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, ">")
	return err
}
