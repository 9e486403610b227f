package forms

import (
	"fmt"
	"strconv"
	"strings"

	"docforms-backend/internal/document"
)

// builder carries one validated field set through a layout function.
type builder struct {
	def  *Definition
	fs   FieldSet
	ref  string
	opts Options
}

func (b *builder) v(name string) string {
	return b.fs.Get(name)
}

// choice returns the option label of a choice field.
func (b *builder) choice(name string) string {
	f, ok := b.def.Field(name)
	if !ok {
		return b.v(name)
	}
	return f.OptionLabel(b.v(name))
}

func (b *builder) label(name string) string {
	if f, ok := b.def.Field(name); ok {
		return f.Label
	}
	return name
}

// money formats a numeric field as a rand amount.
func (b *builder) money(name string) string {
	return rands(document.MoneyFromFloat(b.fs.Number(name)))
}

func rands(m document.Money) string {
	return "R " + m.String()
}

// title is the centered document title followed by the company line.
func (b *builder) title(text string) []document.Block {
	return []document.Block{
		document.Heading{Text: text, Level: 1, Align: document.AlignCenter},
		document.Paragraph{Align: document.AlignCenter, Runs: []document.Run{{Text: b.opts.Company, Bold: true}}},
		document.Blank(),
	}
}

func section(text string) document.Heading {
	return document.Heading{Text: text, Level: 2}
}

// grid lays out label/value pairs of the named fields in a borderless table.
func (b *builder) grid(names ...string) document.Table {
	pairs := make([][2]string, 0, len(names))
	for _, name := range names {
		f, ok := b.def.Field(name)
		value := b.v(name)
		if ok && f.Kind == KindChoice {
			value = f.OptionLabel(value)
		}
		pairs = append(pairs, [2]string{b.label(name), value})
	}
	return pairGrid(pairs...)
}

func pairGrid(pairs ...[2]string) document.Table {
	rows := make([][]document.Cell, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []document.Cell{document.BoldCell(p[0] + ":"), document.TextCell(p[1])})
	}
	return document.Table{Widths: []float64{1, 2}, Rows: rows}
}

// paragraphs splits multi-line text into one paragraph per line.
func paragraphs(text string) []document.Block {
	if strings.TrimSpace(text) == "" {
		return []document.Block{document.Blank()}
	}
	var out []document.Block
	for _, line := range strings.Split(text, "\n") {
		out = append(out, document.Text(line))
	}
	return out
}

// signature renders a slot name, the image placeholder and an optional date line.
func (b *builder) signature(key, dateField string) []document.Block {
	var slot SignatureDef
	for _, s := range b.def.Signatures {
		if s.Key == key {
			slot = s
			break
		}
	}
	blocks := []document.Block{
		document.Bold(slot.Name + ":"),
		document.Image{Slot: slot.Key, Width: slot.Width, Height: slot.Height},
	}
	if dateField != "" {
		blocks = append(blocks, document.Labeled("Date", b.v(dateField)))
	}
	return append(blocks, document.Blank())
}

// checkboxes renders every option of a choice field as "[X] Label" or "[ ] Label".
func (b *builder) checkboxes(name, otherValue, otherField string) []document.Block {
	f, _ := b.def.Field(name)
	selected := b.v(name)
	out := make([]document.Block, 0, len(f.Options))
	for _, o := range f.Options {
		mark := "[ ]"
		if o.Value == selected {
			mark = "[X]"
		}
		text := mark + " " + o.Label
		if o.Value == otherValue && selected == otherValue && otherField != "" {
			text += ": " + b.v(otherField)
		}
		out = append(out, document.Text(text))
	}
	return out
}

// rowsTable renders a repeating table, padded with blank rows up to MinRows.
// A column named "no" is numbered automatically.
func (b *builder) rowsTable(name string) document.Table {
	t, _ := b.def.Table(name)
	widths := make([]float64, 0, len(t.Columns))
	header := make([]string, 0, len(t.Columns))
	for _, col := range t.Columns {
		widths = append(widths, col.Weight)
		header = append(header, col.Label)
	}
	rows := [][]document.Cell{document.Cells(header...)}
	data := b.fs.Rows(name)
	count := max(len(data), t.MinRows)
	for i := 0; i < count; i++ {
		var row map[string]string
		if i < len(data) {
			row = data[i]
		}
		cells := make([]string, 0, len(t.Columns))
		for _, col := range t.Columns {
			v := row[col.Name]
			switch {
			case col.Name == "no" && row != nil:
				v = fmt.Sprintf("%d", i+1)
			case col.Kind == KindChoice && v != "":
				v = optionLabel(col.Options, v)
			}
			cells = append(cells, v)
		}
		rows = append(rows, document.Cells(cells...))
	}
	return document.Table{Widths: widths, Rows: rows, Header: true, Bordered: true}
}

func optionLabel(options []Option, value string) string {
	for _, o := range options {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

// lineItemsTable is the bordered item grid of invoices and purchase orders.
func (b *builder) lineItemsTable() document.Table {
	rows := [][]document.Cell{document.Cells("Item", "Description", "Qty", "Unit Price", "Line Total")}
	for i, item := range b.fs.LineItems {
		rows = append(rows, document.Cells(
			fmt.Sprintf("%d", i+1),
			item.Description,
			formatQuantity(item.Quantity),
			rands(document.MoneyFromFloat(item.UnitPrice)),
			rands(item.Total()),
		))
	}
	return document.Table{Widths: []float64{0.7, 4, 1, 1.8, 1.8}, Rows: rows, Header: true, Bordered: true}
}

// totalsTable is a borderless, right-aligned summary; the last row is bold.
func totalsTable(labels [3]string, t document.Totals) document.Table {
	values := [3]string{rands(t.Subtotal), rands(t.Tax), rands(t.Total)}
	rows := make([][]document.Cell, 0, 3)
	for i := range labels {
		bold := i == 2
		rows = append(rows, []document.Cell{
			{Blocks: []document.Block{document.Paragraph{Align: document.AlignRight, Runs: []document.Run{{Text: labels[i], Bold: true}}}}},
			{Blocks: []document.Block{document.Paragraph{Align: document.AlignRight, Runs: []document.Run{{Text: values[i], Bold: bold}}}}},
		})
	}
	return document.Table{Widths: []float64{3, 1.3}, Rows: rows}
}

// formatQuantity prints q exactly as entered, without trailing zeros, so the
// shown quantity is the one the line total was computed from.
func formatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
