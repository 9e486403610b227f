package forms

import (
	"strings"

	"docforms-backend/internal/document"
)

// Kind is the value kind of a form field.
type Kind string

const (
	KindText      Kind = "text"
	KindMultiline Kind = "multiline"
	KindDate      Kind = "date"
	KindNumber    Kind = "number"
	KindChoice    Kind = "choice"
)

func (k Kind) valid() bool {
	switch k {
	case KindText, KindMultiline, KindDate, KindNumber, KindChoice:
		return true
	}
	return false
}

// Option is one entry of a choice field.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Field describes a single input of a document form.
type Field struct {
	Name      string   `json:"name" yaml:"name"`
	Label     string   `json:"label" yaml:"label"`
	Kind      Kind     `json:"kind" yaml:"kind"`
	Required  bool     `json:"required,omitempty" yaml:"required"`
	Options   []Option `json:"options,omitempty" yaml:"options"`
	Default   string   `json:"default,omitempty" yaml:"default"`
	MaxLength int      `json:"maxLength,omitempty" yaml:"maxLength"`
	// RequiredWhen makes the field required when another field holds the given value.
	RequiredWhen *Condition `json:"requiredWhen,omitempty" yaml:"requiredWhen"`
}

// Condition matches a field value.
type Condition struct {
	Field string `json:"field" yaml:"field"`
	Value string `json:"value" yaml:"value"`
}

// OptionLabel returns the label for value, or value itself when unknown.
func (f Field) OptionLabel(value string) string {
	for _, o := range f.Options {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

// Column is one column of a repeating table.
type Column struct {
	Name    string   `json:"name" yaml:"name"`
	Label   string   `json:"label" yaml:"label"`
	Weight  float64  `json:"weight,omitempty" yaml:"weight"`
	Kind    Kind     `json:"kind,omitempty" yaml:"kind"`
	Options []Option `json:"options,omitempty" yaml:"options"`
}

// TableDef describes a repeating grid of rows, such as log sheet entries.
type TableDef struct {
	Name    string   `json:"name" yaml:"name"`
	Label   string   `json:"label" yaml:"label"`
	Columns []Column `json:"columns" yaml:"columns"`
	MinRows int      `json:"minRows,omitempty" yaml:"minRows"`
	MaxRows int      `json:"maxRows,omitempty" yaml:"maxRows"`
}

// SignatureDef declares a signature slot of the document.
type SignatureDef struct {
	Key      string  `json:"key" yaml:"key"`
	Name     string  `json:"name" yaml:"name"`
	Required bool    `json:"required" yaml:"required"`
	Width    float64 `json:"width" yaml:"width"`
	Height   float64 `json:"height" yaml:"height"`
}

// ReferenceDef configures the generated reference number of a document type.
type ReferenceDef struct {
	Prefix  string `json:"prefix" yaml:"prefix"`
	Monthly bool   `json:"monthly,omitempty" yaml:"monthly"`
}

// Definition is the declarative schema of one document type.
type Definition struct {
	Type        string          `json:"type" yaml:"type"`
	Title       string          `json:"title" yaml:"title"`
	Description string          `json:"description,omitempty" yaml:"description"`
	Format      document.Format `json:"format" yaml:"format"`
	FileName    string          `json:"fileName" yaml:"fileName"`
	Reference   *ReferenceDef   `json:"reference,omitempty" yaml:"reference"`
	Fields      []Field         `json:"fields" yaml:"fields"`
	Tables      []TableDef      `json:"tables,omitempty" yaml:"tables"`
	LineItems   bool            `json:"lineItems,omitempty" yaml:"lineItems"`
	Signatures  []SignatureDef  `json:"signatures,omitempty" yaml:"signatures"`
}

// Field returns the named field definition.
func (d *Definition) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Table returns the named table definition.
func (d *Definition) Table(name string) (TableDef, bool) {
	for _, t := range d.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return TableDef{}, false
}

// FileNameFor substitutes the reference number into the file name pattern.
func (d *Definition) FileNameFor(ref string) string {
	return strings.ReplaceAll(d.FileName, "{ref}", ref)
}

// SignatureSlots converts the signature declarations for the assembler.
func (d *Definition) SignatureSlots() []document.SignatureSlot {
	slots := make([]document.SignatureSlot, 0, len(d.Signatures))
	for _, s := range d.Signatures {
		slots = append(slots, document.SignatureSlot{
			Key:      s.Key,
			Name:     s.Name,
			Required: s.Required,
			Width:    s.Width,
			Height:   s.Height,
		})
	}
	return slots
}

// RequiresReference reports whether exports of this type carry a reference number.
func (d *Definition) RequiresReference() bool {
	return d.Reference != nil && d.Reference.Prefix != ""
}
