package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"strings"
	"unicode/utf8"

	"github.com/signintech/gopdf"

	"docforms-backend/internal/document"
)

// Page geometry in points. Margins and the label column follow the paper memo
// layout: labels at 15 mm, values at 40 mm, 7 mm between label rows.
const (
	pageWidth    = 595.28
	pageHeight   = 841.89
	margin       = 42.52
	contentWidth = pageWidth - 2*margin
	labelColumn  = 70.87
	rowSpacing   = 19.84

	bodySize    = 11.0
	lineFactor  = 1.35
	cellPadding = 4.0
	pxToPt      = 0.75

	unsignedHeight = 26.0
)

var ruleGrey = [3]uint8{180, 180, 180}

type style struct {
	family string
	size   float64
}

type segment struct {
	text  string
	style style
	x     float64
}

type line struct {
	segments []segment
	width    float64
	height   float64
}

type layout struct {
	doc    *gopdf.GoPdf
	images map[string]document.SignatureImage
	y      float64
}

func newLayout(doc *gopdf.GoPdf, images map[string]document.SignatureImage) *layout {
	return &layout{doc: doc, images: images}
}

func (l *layout) run(blocks []document.Block) error {
	l.newPage()
	for _, b := range blocks {
		if err := l.block(b); err != nil {
			return err
		}
	}
	return nil
}

func (l *layout) newPage() {
	l.doc.AddPage()
	l.y = margin
}

// ensure starts a new page when h points do not fit below the cursor.
func (l *layout) ensure(h float64) {
	if l.y+h > pageHeight-margin && l.y > margin {
		l.newPage()
	}
}

func (l *layout) block(b document.Block) error {
	switch v := b.(type) {
	case document.Heading:
		return l.heading(v)
	case document.Paragraph:
		return l.paragraph(v, margin, contentWidth)
	case document.KeyValueRow:
		return l.keyValue(v)
	case document.Table:
		return l.table(v)
	case document.Image:
		return l.image(v)
	}
	return nil
}

func (l *layout) heading(h document.Heading) error {
	size := 11.5
	gap := 4.0
	switch {
	case h.Level <= 1:
		size, gap = 16, 10
	case h.Level == 2:
		size, gap = 13, 6
	}
	p := document.Paragraph{Align: h.Align, Runs: []document.Run{{Text: h.Text, Bold: true, Size: size}}}
	if err := l.paragraph(p, margin, contentWidth); err != nil {
		return err
	}
	l.y += gap
	return nil
}

func (l *layout) paragraph(p document.Paragraph, x, width float64) error {
	if len(p.Runs) == 0 || strings.TrimSpace(p.PlainText()) == "" && !strings.Contains(p.PlainText(), "\n") {
		l.y += bodySize * lineFactor / 2
		return nil
	}
	lines, err := l.wrap(p.Runs, width)
	if err != nil {
		return err
	}
	for _, ln := range lines {
		l.ensure(ln.height)
		if err := l.drawLine(ln, x+alignOffset(p.Align, width, ln.width), l.y); err != nil {
			return err
		}
		l.y += ln.height
	}
	l.y += 3
	return nil
}

func (l *layout) keyValue(kv document.KeyValueRow) error {
	valueX := margin + labelColumn
	valueWidth := contentWidth - labelColumn

	label, err := l.wrap([]document.Run{{Text: kv.Key + ":", Bold: true}}, labelColumn-4)
	if err != nil {
		return err
	}
	value, err := l.wrap([]document.Run{{Text: kv.Value}}, valueWidth)
	if err != nil {
		return err
	}

	lh := bodySize * lineFactor
	rows := max(len(label), len(value), 1)
	l.ensure(float64(rows) * lh)

	top := l.y
	for i, ln := range label {
		if err := l.drawLine(ln, margin, top+float64(i)*lh); err != nil {
			return err
		}
	}
	for i, ln := range value {
		if err := l.drawLine(ln, valueX, top+float64(i)*lh); err != nil {
			return err
		}
	}

	ruleY := top + float64(rows)*lh + 1
	l.doc.SetStrokeColor(ruleGrey[0], ruleGrey[1], ruleGrey[2])
	l.doc.SetLineWidth(0.5)
	l.doc.Line(valueX, ruleY, pageWidth-margin, ruleY)
	l.doc.SetStrokeColor(0, 0, 0)

	l.y = top + max(float64(rows)*lh+4, rowSpacing)
	return nil
}

func (l *layout) table(t document.Table) error {
	cols := 0
	for _, row := range t.Rows {
		cols = max(cols, len(row))
	}
	cols = max(cols, len(t.Widths))
	if cols == 0 {
		return nil
	}
	widths := columnWidths(t.Widths, cols)

	type laidRow struct {
		cells  [][]cellItem
		height float64
	}
	layoutRow := func(row []document.Cell, bold bool) (laidRow, error) {
		out := laidRow{cells: make([][]cellItem, cols)}
		for c := 0; c < cols; c++ {
			if c >= len(row) {
				continue
			}
			items, h, err := l.layoutCell(row[c], widths[c]-2*cellPadding, bold)
			if err != nil {
				return laidRow{}, err
			}
			out.cells[c] = items
			out.height = max(out.height, h)
		}
		out.height = max(out.height, bodySize*lineFactor) + 2*cellPadding
		return out, nil
	}

	var header *laidRow
	for i, row := range t.Rows {
		isHeader := t.Header && i == 0
		laid, err := layoutRow(row, isHeader)
		if err != nil {
			return err
		}
		if isHeader {
			header = &laid
		}
		if l.y+laid.height > pageHeight-margin && l.y > margin {
			l.newPage()
			if header != nil && !isHeader {
				if err := l.drawRow(header.cells, widths, header.height, t.Bordered); err != nil {
					return err
				}
			}
		}
		if err := l.drawRow(laid.cells, widths, laid.height, t.Bordered); err != nil {
			return err
		}
	}
	l.y += 6
	return nil
}

func (l *layout) drawRow(cells [][]cellItem, widths []float64, height float64, bordered bool) error {
	x := margin
	for c, items := range cells {
		inner := widths[c] - 2*cellPadding
		y := l.y + cellPadding
		for _, item := range items {
			if err := l.drawCellItem(item, x+cellPadding, y, inner); err != nil {
				return err
			}
			y += item.height
		}
		x += widths[c]
	}
	if bordered {
		l.doc.SetStrokeColor(0, 0, 0)
		l.doc.SetLineWidth(0.5)
		l.doc.Line(margin, l.y, margin+contentWidth, l.y)
		l.doc.Line(margin, l.y+height, margin+contentWidth, l.y+height)
		x = margin
		l.doc.Line(x, l.y, x, l.y+height)
		for _, w := range widths {
			x += w
			l.doc.Line(x, l.y, x, l.y+height)
		}
	}
	l.y += height
	return nil
}

// cellItem is one block of a table cell: wrapped text or a signature image.
type cellItem struct {
	lines  []line
	align  document.Align
	image  *document.Image
	w, h   float64
	height float64
}

// layoutCell measures a cell's blocks at width. Signature images keep their
// aspect ratio and shrink to fit the column.
func (l *layout) layoutCell(cell document.Cell, width float64, bold bool) ([]cellItem, float64, error) {
	var items []cellItem
	var total float64
	addText := func(runs []document.Run, align document.Align) error {
		lines, err := l.wrap(runs, width)
		if err != nil {
			return err
		}
		item := cellItem{lines: lines, align: align}
		for _, ln := range lines {
			item.height += ln.height
		}
		items = append(items, item)
		total += item.height
		return nil
	}

	for _, b := range cell.Blocks {
		var err error
		switch v := b.(type) {
		case document.Paragraph:
			runs := make([]document.Run, len(v.Runs))
			for i, r := range v.Runs {
				r.Bold = r.Bold || bold
				runs[i] = r
			}
			err = addText(runs, v.Align)
		case document.Heading:
			err = addText([]document.Run{{Text: v.Text, Bold: true}}, v.Align)
		case document.KeyValueRow:
			err = addText([]document.Run{{Text: v.Key + ": ", Bold: true}, {Text: v.Value, Bold: bold}}, document.AlignLeft)
		case document.Image:
			img := v
			w, h := img.Width*pxToPt, img.Height*pxToPt
			if w > width && w > 0 {
				h *= width / w
				w = width
			}
			if sig, ok := l.images[img.Slot]; !ok || sig.IsEmpty() {
				h = unsignedHeight
			}
			items = append(items, cellItem{image: &img, w: w, h: h, height: h + 2})
			total += h + 2
		}
		if err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}

func (l *layout) drawCellItem(item cellItem, x, y, width float64) error {
	if item.image != nil {
		return l.placeImage(*item.image, x, y, item.w, item.h)
	}
	for _, ln := range item.lines {
		if err := l.drawLine(ln, x+alignOffset(item.align, width, ln.width), y); err != nil {
			return err
		}
		y += ln.height
	}
	return nil
}

func (l *layout) image(img document.Image) error {
	w := img.Width * pxToPt
	h := img.Height * pxToPt
	if sig, ok := l.images[img.Slot]; !ok || sig.IsEmpty() {
		l.ensure(unsignedHeight)
		if err := l.placeImage(img, margin, l.y, w, unsignedHeight); err != nil {
			return err
		}
		l.y += unsignedHeight
		return nil
	}
	l.ensure(h)
	if err := l.placeImage(img, margin, l.y, w, h); err != nil {
		return err
	}
	l.y += h + 4
	return nil
}

// placeImage draws the slot's signature in the w×h box at x, y, or a
// signing line when the slot is unsigned.
func (l *layout) placeImage(img document.Image, x, y, w, h float64) error {
	sig, ok := l.images[img.Slot]
	if !ok || sig.IsEmpty() {
		l.doc.SetStrokeColor(0, 0, 0)
		l.doc.SetLineWidth(0.5)
		l.doc.Line(x, y+h-6, x+w, y+h-6)
		return nil
	}

	decoded, err := sig.Decode()
	if err != nil {
		return &document.MalformedImageError{Slot: img.Slot, Err: err}
	}
	// JPEG has no alpha channel, so transparent ink backgrounds go on white first.
	flat := image.NewRGBA(decoded.Bounds())
	draw.Draw(flat, flat.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), decoded, decoded.Bounds().Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: 90}); err != nil {
		return &document.MalformedImageError{Slot: img.Slot, Err: err}
	}
	holder, err := gopdf.ImageHolderByBytes(buf.Bytes())
	if err != nil {
		return &document.MalformedImageError{Slot: img.Slot, Err: err}
	}
	if err := l.doc.ImageByHolder(holder, x, y, &gopdf.Rect{W: w, H: h}); err != nil {
		return fmt.Errorf("place signature %s: %w", img.Slot, err)
	}
	return nil
}

func (l *layout) drawLine(ln line, x, y float64) error {
	for _, seg := range ln.segments {
		if err := l.doc.SetFont(seg.style.family, "", seg.style.size); err != nil {
			return err
		}
		l.doc.SetXY(x+seg.x, y)
		if err := l.doc.Cell(nil, seg.text); err != nil {
			return err
		}
	}
	return nil
}

type token struct {
	text   string
	style  style
	space  bool
	breaks int
}

// wrap splits runs into lines no wider than width, measuring with the real fonts.
func (l *layout) wrap(runs []document.Run, width float64) ([]line, error) {
	tokens := tokenize(runs)
	var lines []line
	cur := line{}
	flush := func() {
		if cur.height == 0 {
			cur.height = bodySize * lineFactor
		}
		lines = append(lines, cur)
		cur = line{}
	}

	for _, tok := range tokens {
		if tok.breaks > 0 && (len(cur.segments) > 0 || len(lines) > 0) {
			flush()
			for i := 1; i < tok.breaks; i++ {
				flush()
			}
		}
		if tok.text == "" {
			continue
		}
		w, err := l.measure(tok.text, tok.style)
		if err != nil {
			return nil, err
		}
		var sw float64
		if tok.space && len(cur.segments) > 0 {
			if sw, err = l.measure(" ", tok.style); err != nil {
				return nil, err
			}
		}
		if len(cur.segments) > 0 && cur.width+sw+w > width {
			flush()
			sw = 0
		}
		if w > width {
			chunks, err := l.split(tok.text, tok.style, width)
			if err != nil {
				return nil, err
			}
			for i, chunk := range chunks {
				if i > 0 {
					flush()
				}
				cw, err := l.measure(chunk, tok.style)
				if err != nil {
					return nil, err
				}
				cur.add(segment{text: chunk, style: tok.style, x: cur.width}, cw)
			}
			continue
		}
		cur.add(segment{text: tok.text, style: tok.style, x: cur.width + sw}, sw+w)
	}
	if len(cur.segments) > 0 {
		flush()
	}
	return lines, nil
}

func (ln *line) add(seg segment, advance float64) {
	ln.segments = append(ln.segments, seg)
	ln.width += advance
	ln.height = max(ln.height, seg.style.size*lineFactor)
}

func (l *layout) measure(text string, st style) (float64, error) {
	if err := l.doc.SetFont(st.family, "", st.size); err != nil {
		return 0, err
	}
	return l.doc.MeasureTextWidth(text)
}

// split breaks a single overlong word at rune boundaries.
func (l *layout) split(word string, st style, width float64) ([]string, error) {
	var out []string
	start := 0
	for start < len(word) {
		end := start
		for end < len(word) {
			_, size := utf8.DecodeRuneInString(word[end:])
			w, err := l.measure(word[start:end+size], st)
			if err != nil {
				return nil, err
			}
			if w > width && end > start {
				break
			}
			end += size
		}
		out = append(out, word[start:end])
		start = end
	}
	return out, nil
}

func tokenize(runs []document.Run) []token {
	var tokens []token
	space := false
	breaks := 0
	for _, r := range runs {
		st := runStyle(r)
		parts := strings.Split(strings.ReplaceAll(r.Text, "\r\n", "\n"), "\n")
		for pi, part := range parts {
			if pi > 0 {
				breaks++
				space = false
			}
			i := 0
			for i < len(part) {
				if part[i] == ' ' || part[i] == '\t' {
					space = true
					i++
					continue
				}
				j := i
				for j < len(part) && part[j] != ' ' && part[j] != '\t' {
					j++
				}
				tokens = append(tokens, token{text: part[i:j], style: st, space: space, breaks: breaks})
				space = false
				breaks = 0
				i = j
			}
		}
	}
	if breaks > 0 {
		tokens = append(tokens, token{breaks: breaks})
	}
	return tokens
}

func runStyle(r document.Run) style {
	st := style{family: fontRegular, size: bodySize}
	switch {
	case r.Bold:
		st.family = fontBold
	case r.Italic:
		st.family = fontItalic
	}
	if r.Size > 0 {
		st.size = r.Size
	}
	return st
}

func alignOffset(a document.Align, width, used float64) float64 {
	switch a {
	case document.AlignCenter:
		return max(0, (width-used)/2)
	case document.AlignRight:
		return max(0, width-used)
	default:
		return 0
	}
}

func columnWidths(weights []float64, cols int) []float64 {
	out := make([]float64, cols)
	var total float64
	for i := 0; i < cols; i++ {
		total += weightAt(weights, i)
	}
	for i := 0; i < cols; i++ {
		out[i] = contentWidth * weightAt(weights, i) / total
	}
	return out
}

func weightAt(weights []float64, i int) float64 {
	if i < len(weights) && weights[i] > 0 {
		return weights[i]
	}
	return 1
}
