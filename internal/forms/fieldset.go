package forms

import (
	"strconv"
	"strings"
	"unicode"

	"docforms-backend/internal/document"
)

// FieldSet is the submitted state of one form: scalar values keyed by field
// name, the line items of invoice-like documents and the rows of repeating tables.
type FieldSet struct {
	Values    map[string]string              `json:"fields"`
	LineItems []document.LineItem            `json:"lineItems,omitempty"`
	Tables    map[string][]map[string]string `json:"tables,omitempty"`
}

// Get returns the trimmed value of a field.
func (fs FieldSet) Get(name string) string {
	return strings.TrimSpace(fs.Values[name])
}

// Number parses a numeric field; empty or invalid values read as zero.
func (fs FieldSet) Number(name string) float64 {
	v, err := parseNumber(fs.Get(name))
	if err != nil {
		return 0
	}
	return v
}

// Rows returns the rows of a table.
func (fs FieldSet) Rows(table string) []map[string]string {
	return fs.Tables[table]
}

// Clone returns a deep copy so a snapshot cannot be changed by its producer.
func (fs FieldSet) Clone() FieldSet {
	out := FieldSet{Values: make(map[string]string, len(fs.Values))}
	for k, v := range fs.Values {
		out.Values[k] = v
	}
	if len(fs.LineItems) > 0 {
		out.LineItems = append([]document.LineItem(nil), fs.LineItems...)
	}
	if len(fs.Tables) > 0 {
		out.Tables = make(map[string][]map[string]string, len(fs.Tables))
		for name, rows := range fs.Tables {
			copied := make([]map[string]string, 0, len(rows))
			for _, row := range rows {
				r := make(map[string]string, len(row))
				for k, v := range row {
					r[k] = v
				}
				copied = append(copied, r)
			}
			out.Tables[name] = copied
		}
	}
	return out
}

// sanitizeText normalises a field to plain text: line endings become \n,
// invalid UTF-8 is dropped and control characters other than \n and \t are
// removed. Markup-like text is kept verbatim; the serializers escape it.
func sanitizeText(raw string) string {
	v := strings.ReplaceAll(raw, "\r\n", "\n")
	v = strings.ToValidUTF8(v, "")
	v = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || !unicode.IsControl(r) {
			return r
		}
		return -1
	}, v)
	return strings.TrimSpace(v)
}

func parseNumber(v string) (float64, error) {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "R")
	v = strings.ReplaceAll(strings.TrimSpace(v), " ", "")
	v = strings.ReplaceAll(v, ",", "")
	return strconv.ParseFloat(v, 64)
}
