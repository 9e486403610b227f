package docx

import (
	"encoding/xml"
	"fmt"
	"strings"

	"docforms-backend/internal/document"
)

const (
	// A4 with one-inch margins, in twentieths of a point.
	pageWidthTwips   = 11906
	pageHeightTwips  = 16838
	pageMarginTwips  = 1440
	contentWidthTwip = pageWidthTwips - 2*pageMarginTwips

	emuPerPixel = 9525
)

type bodyWriter struct {
	b     strings.Builder
	media *mediaSet
}

func newBodyWriter(media *mediaSet) *bodyWriter {
	return &bodyWriter{media: media}
}

func (w *bodyWriter) document() string {
	var out strings.Builder
	out.WriteString(xmlHeader)
	fmt.Fprintf(&out, `<w:document xmlns:w="%s" xmlns:r="%s" xmlns:wp="%s" xmlns:a="%s" xmlns:pic="%s">`,
		wmlNamespace, relNamespace, wpNamespace, aNamespace, picNamespace)
	out.WriteString("<w:body>")
	out.WriteString(w.b.String())
	fmt.Fprintf(&out, `<w:sectPr><w:pgSz w:w="%d" w:h="%d"/>`, pageWidthTwips, pageHeightTwips)
	fmt.Fprintf(&out, `<w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d" w:header="708" w:footer="708" w:gutter="0"/>`,
		pageMarginTwips, pageMarginTwips, pageMarginTwips, pageMarginTwips)
	out.WriteString("</w:sectPr></w:body></w:document>")
	return out.String()
}

func (w *bodyWriter) writeBlocks(blocks []document.Block, bold bool) {
	for _, block := range blocks {
		switch v := block.(type) {
		case document.Heading:
			w.writeHeading(v)
		case document.Paragraph:
			w.writeParagraph(v, bold)
		case document.KeyValueRow:
			w.writeKeyValue(v)
		case document.Table:
			w.writeTable(v)
		case document.Image:
			w.writeImage(v)
		}
	}
}

func (w *bodyWriter) writeHeading(h document.Heading) {
	style := headingStyle(h.Level)
	styleID := "Heading1"
	if h.Level <= 1 {
		styleID = "Title"
	} else if h.Level > 2 {
		styleID = "Heading2"
	}
	w.b.WriteString("<w:p><w:pPr>")
	fmt.Fprintf(&w.b, `<w:pStyle w:val="%s"/>`, styleID)
	w.writeJustification(h.Align)
	w.b.WriteString("</w:pPr>")
	w.writeRun(h.Text, style, false)
	w.b.WriteString("</w:p>")
}

func (w *bodyWriter) writeParagraph(p document.Paragraph, bold bool) {
	w.b.WriteString("<w:p>")
	if p.Align != document.AlignLeft {
		w.b.WriteString("<w:pPr>")
		w.writeJustification(p.Align)
		w.b.WriteString("</w:pPr>")
	}
	for _, r := range p.Runs {
		style := RunStyle{Bold: r.Bold || bold, Italic: r.Italic}
		if r.Size > 0 {
			style.Size = int(r.Size * 2)
		}
		w.writeRun(r.Text, style, r.Underline)
	}
	w.b.WriteString("</w:p>")
}

func (w *bodyWriter) writeKeyValue(kv document.KeyValueRow) {
	w.b.WriteString("<w:p><w:pPr><w:pBdr>")
	fmt.Fprintf(&w.b, `<w:bottom w:val="single" w:sz="4" w:space="1" w:color="%s"/>`, RuleColor)
	w.b.WriteString("</w:pBdr></w:pPr>")
	w.writeRun(kv.Key+": ", StyleMap["key"], false)
	w.writeRun(kv.Value, RunStyle{}, false)
	w.b.WriteString("</w:p>")
}

func (w *bodyWriter) writeTable(t document.Table) {
	cols := columnCount(t)
	if cols == 0 {
		return
	}
	widths := columnWidths(t.Widths, cols)

	w.b.WriteString("<w:tbl><w:tblPr>")
	w.b.WriteString(`<w:tblW w:w="5000" w:type="pct"/>`)
	w.b.WriteString("<w:tblBorders>")
	for _, edge := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
		if t.Bordered {
			fmt.Fprintf(&w.b, `<w:%s w:val="single" w:sz="4" w:space="0" w:color="000000"/>`, edge)
		} else {
			fmt.Fprintf(&w.b, `<w:%s w:val="nil"/>`, edge)
		}
	}
	w.b.WriteString("</w:tblBorders>")
	w.b.WriteString(`<w:tblLayout w:type="fixed"/>`)
	w.b.WriteString("</w:tblPr><w:tblGrid>")
	for _, width := range widths {
		fmt.Fprintf(&w.b, `<w:gridCol w:w="%d"/>`, width)
	}
	w.b.WriteString("</w:tblGrid>")

	for i, row := range t.Rows {
		header := t.Header && i == 0
		w.b.WriteString("<w:tr>")
		if header {
			w.b.WriteString("<w:trPr><w:tblHeader/></w:trPr>")
		}
		for c := 0; c < cols; c++ {
			fmt.Fprintf(&w.b, `<w:tc><w:tcPr><w:tcW w:w="%d" w:type="dxa"/></w:tcPr>`, widths[c])
			var blocks []document.Block
			if c < len(row) {
				blocks = row[c].Blocks
			}
			w.writeCellBlocks(blocks, header)
			w.b.WriteString("</w:tc>")
		}
		w.b.WriteString("</w:tr>")
	}
	w.b.WriteString("</w:tbl>")
	// Word requires a paragraph between a table and whatever follows it.
	w.b.WriteString("<w:p/>")
}

func (w *bodyWriter) writeCellBlocks(blocks []document.Block, bold bool) {
	if len(blocks) == 0 {
		w.b.WriteString("<w:p/>")
		return
	}
	w.writeBlocks(blocks, bold)
	if _, ok := blocks[len(blocks)-1].(document.Table); ok {
		w.b.WriteString("<w:p/>")
	}
}

func (w *bodyWriter) writeImage(img document.Image) {
	item, ok := w.media.bySlot[img.Slot]
	if !ok {
		// Unsigned optional slot: leave a signing line.
		w.b.WriteString("<w:p>")
		w.writeRun("______________________________", RunStyle{}, false)
		w.b.WriteString("</w:p>")
		return
	}
	cx := int64(img.Width * emuPerPixel)
	cy := int64(img.Height * emuPerPixel)
	name := fmt.Sprintf("Signature %d", item.docPr)

	w.b.WriteString("<w:p><w:r><w:drawing>")
	w.b.WriteString(`<wp:inline distT="0" distB="0" distL="0" distR="0">`)
	fmt.Fprintf(&w.b, `<wp:extent cx="%d" cy="%d"/>`, cx, cy)
	fmt.Fprintf(&w.b, `<wp:docPr id="%d" name="%s"/>`, item.docPr, name)
	w.b.WriteString(`<wp:cNvGraphicFramePr><a:graphicFrameLocks noChangeAspect="1"/></wp:cNvGraphicFramePr>`)
	w.b.WriteString(`<a:graphic><a:graphicData uri="` + picNamespace + `"><pic:pic>`)
	fmt.Fprintf(&w.b, `<pic:nvPicPr><pic:cNvPr id="%d" name="%s"/><pic:cNvPicPr/></pic:nvPicPr>`, item.docPr, item.target[len("media/"):])
	fmt.Fprintf(&w.b, `<pic:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`, item.relID)
	fmt.Fprintf(&w.b, `<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm>`, cx, cy)
	w.b.WriteString(`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`)
	w.b.WriteString("</pic:pic></a:graphicData></a:graphic></wp:inline>")
	w.b.WriteString("</w:drawing></w:r></w:p>")
}

func (w *bodyWriter) writeJustification(a document.Align) {
	switch a {
	case document.AlignCenter:
		w.b.WriteString(`<w:jc w:val="center"/>`)
	case document.AlignRight:
		w.b.WriteString(`<w:jc w:val="right"/>`)
	}
}

// writeRun emits one or more runs; embedded newlines become <w:br/>.
func (w *bodyWriter) writeRun(text string, style RunStyle, underline bool) {
	w.b.WriteString("<w:r>")
	props := runProps(style, underline)
	if props != "" {
		w.b.WriteString("<w:rPr>" + props + "</w:rPr>")
	}
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, line := range lines {
		if i > 0 {
			w.b.WriteString("<w:br/>")
		}
		w.b.WriteString(`<w:t xml:space="preserve">`)
		w.b.WriteString(escapeText(line))
		w.b.WriteString("</w:t>")
	}
	w.b.WriteString("</w:r>")
}

func runProps(style RunStyle, underline bool) string {
	var b strings.Builder
	if style.Bold {
		b.WriteString("<w:b/><w:bCs/>")
	}
	if style.Italic {
		b.WriteString("<w:i/><w:iCs/>")
	}
	if style.Color != "" {
		fmt.Fprintf(&b, `<w:color w:val="%s"/>`, style.Color)
	}
	if style.Size > 0 {
		fmt.Fprintf(&b, `<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, style.Size, style.Size)
	}
	if underline {
		b.WriteString(`<w:u w:val="single"/>`)
	}
	return b.String()
}

func columnCount(t document.Table) int {
	n := len(t.Widths)
	for _, row := range t.Rows {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}

func columnWidths(weights []float64, cols int) []int {
	out := make([]int, cols)
	var total float64
	for i := 0; i < cols; i++ {
		total += weightAt(weights, i)
	}
	assigned := 0
	for i := 0; i < cols; i++ {
		if i == cols-1 {
			out[i] = contentWidthTwip - assigned
			break
		}
		out[i] = int(float64(contentWidthTwip) * weightAt(weights, i) / total)
		assigned += out[i]
	}
	return out
}

func weightAt(weights []float64, i int) float64 {
	if i < len(weights) && weights[i] > 0 {
		return weights[i]
	}
	return 1
}

func escapeText(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
