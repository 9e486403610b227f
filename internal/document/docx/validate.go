package docx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// MarkupError reports document.xml that Word would refuse to open.
type MarkupError struct {
	Offset int64
	Reason string
}

func (e *MarkupError) Error() string {
	return fmt.Sprintf("docx: invalid document.xml at byte %d: %s", e.Offset, e.Reason)
}

type frame struct {
	name      xml.Name
	lastChild string
	hasText   bool
}

// checkMarkup walks the generated body once. Paragraphs may only nest through
// a table cell, run properties must precede run text, and every cell must
// end with a paragraph.
func checkMarkup(documentXML string) error {
	dec := xml.NewDecoder(strings.NewReader(documentXML))
	var open []*frame
	fail := func(format string, args ...any) error {
		return &MarkupError{Offset: dec.InputOffset(), Reason: fmt.Sprintf(format, args...)}
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &MarkupError{Offset: dec.InputOffset(), Reason: err.Error()}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !declared(t.Name.Space) {
				return fail("undeclared namespace %q", t.Name.Space)
			}
			var parent *frame
			if n := len(open); n > 0 {
				parent = open[n-1]
				parent.lastChild = t.Name.Local
			}
			switch {
			case wml(t.Name, "p") && insideParagraph(open):
				return fail("nested <w:p>")
			case wml(t.Name, "t") && parent != nil && wml(parent.name, "r"):
				parent.hasText = true
			case wml(t.Name, "rPr") && parent != nil && parent.hasText:
				return fail("<w:rPr> after <w:t> in a run")
			}
			open = append(open, &frame{name: t.Name})

		case xml.EndElement:
			if len(open) == 0 {
				continue
			}
			closing := open[len(open)-1]
			open = open[:len(open)-1]
			if wml(closing.name, "tc") && closing.lastChild != "p" {
				return fail("table cell does not end with <w:p>")
			}
		}
	}
}

// insideParagraph reports an open <w:p> not separated from the top of the
// stack by a table cell.
func insideParagraph(open []*frame) bool {
	for i := len(open) - 1; i >= 0; i-- {
		switch {
		case wml(open[i].name, "tc"):
			return false
		case wml(open[i].name, "p"):
			return true
		}
	}
	return false
}

func wml(name xml.Name, local string) bool {
	return name.Space == wmlNamespace && name.Local == local
}

func declared(space string) bool {
	switch space {
	case "", wmlNamespace, relNamespace, wpNamespace, aNamespace, picNamespace:
		return true
	}
	return false
}
