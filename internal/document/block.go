package document

// Align controls horizontal placement of a paragraph or heading.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Block is one element of a document body. The set of implementations is closed:
// Heading, Paragraph, Table, Image and KeyValueRow.
type Block interface {
	isBlock()
}

// Heading is a bold title line. Level 1 is the document title.
type Heading struct {
	Text  string
	Level int
	Align Align
}

// Run is a span of text sharing one inline style.
type Run struct {
	Text      string
	Bold      bool
	Italic    bool
	Underline bool
	// Size is the font size in points; zero means the serializer default.
	Size float64
}

// Paragraph is a sequence of runs. Line breaks inside run text are preserved.
type Paragraph struct {
	Runs  []Run
	Align Align
}

// Cell holds nested blocks. Tables do not nest.
type Cell struct {
	Blocks []Block
}

// Table is a grid of cells.
type Table struct {
	// Widths are relative column weights; empty means equal columns.
	Widths []float64
	Rows   [][]Cell
	// Header renders the first row bold and repeats it on page breaks.
	Header   bool
	Bordered bool
}

// Image places the signature captured for Slot at a fixed size.
// Width and Height are CSS pixels (1/96 in).
type Image struct {
	Slot   string
	Width  float64
	Height float64
}

// KeyValueRow is a label/value pair. The PDF serializer draws a rule under the value.
type KeyValueRow struct {
	Key   string
	Value string
}

func (Heading) isBlock()     {}
func (Paragraph) isBlock()   {}
func (Table) isBlock()       {}
func (Image) isBlock()       {}
func (KeyValueRow) isBlock() {}

// Text builds a plain single-run paragraph.
func Text(s string) Paragraph {
	return Paragraph{Runs: []Run{{Text: s}}}
}

// Bold builds a bold single-run paragraph.
func Bold(s string) Paragraph {
	return Paragraph{Runs: []Run{{Text: s, Bold: true}}}
}

// Labeled builds "Label: value" with a bold label.
func Labeled(label, value string) Paragraph {
	return Paragraph{Runs: []Run{{Text: label + ": ", Bold: true}, {Text: value}}}
}

// Blank is an empty spacer paragraph.
func Blank() Paragraph {
	return Paragraph{}
}

// TextCell wraps plain text in a cell.
func TextCell(s string) Cell {
	return Cell{Blocks: []Block{Text(s)}}
}

// BoldCell wraps bold text in a cell.
func BoldCell(s string) Cell {
	return Cell{Blocks: []Block{Bold(s)}}
}

// Cells converts strings into plain text cells.
func Cells(values ...string) []Cell {
	out := make([]Cell, 0, len(values))
	for _, v := range values {
		out = append(out, TextCell(v))
	}
	return out
}

// PlainText returns the concatenated text of the paragraph.
func (p Paragraph) PlainText() string {
	var n int
	for _, r := range p.Runs {
		n += len(r.Text)
	}
	buf := make([]byte, 0, n)
	for _, r := range p.Runs {
		buf = append(buf, r.Text...)
	}
	return string(buf)
}
