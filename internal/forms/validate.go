package forms

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"docforms-backend/internal/document"
)

const dateLayout = "2006-01-02"

var validate = validator.New()

// Issue is one field-level validation failure.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every problem found in a submitted field set.
type ValidationError struct {
	Type   string
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Field+": "+issue.Message)
	}
	return fmt.Sprintf("invalid %s form: %s", e.Type, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func (e *ValidationError) add(field, format string, args ...any) {
	e.Issues = append(e.Issues, Issue{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Normalize returns a sanitized copy of fs holding only the fields, tables
// and columns the definition declares, with defaults applied and blank rows dropped.
func (d *Definition) Normalize(fs FieldSet) FieldSet {
	out := FieldSet{Values: make(map[string]string, len(d.Fields))}
	for _, f := range d.Fields {
		v := sanitizeText(fs.Values[f.Name])
		if f.Kind != KindMultiline {
			v = strings.Join(strings.Fields(v), " ")
		}
		if v == "" {
			v = f.Default
		}
		if v != "" {
			out.Values[f.Name] = v
		}
	}

	if d.LineItems {
		for _, item := range fs.LineItems {
			item.Description = sanitizeText(item.Description)
			if item.Description == "" && item.Quantity == 0 && item.UnitPrice == 0 {
				continue
			}
			out.LineItems = append(out.LineItems, item)
		}
	}

	for _, t := range d.Tables {
		var rows []map[string]string
		for _, row := range fs.Tables[t.Name] {
			clean := make(map[string]string, len(t.Columns))
			for _, col := range t.Columns {
				if v := sanitizeText(row[col.Name]); v != "" {
					clean[col.Name] = v
				}
			}
			if len(clean) > 0 {
				rows = append(rows, clean)
			}
		}
		if len(rows) > 0 {
			if out.Tables == nil {
				out.Tables = make(map[string][]map[string]string)
			}
			out.Tables[t.Name] = rows
		}
	}
	return out
}

// Validate checks a normalized field set against the definition.
// The returned error is a *ValidationError.
func (d *Definition) Validate(fs FieldSet) error {
	verr := &ValidationError{Type: d.Type}

	for _, f := range d.Fields {
		v := fs.Get(f.Name)
		if v == "" {
			if f.Required || d.conditionMet(fs, f.RequiredWhen) {
				verr.add(f.Name, "%s is required", f.Label)
			}
			continue
		}
		if f.MaxLength > 0 && utf8.RuneCountInString(v) > f.MaxLength {
			verr.add(f.Name, "%s must be at most %d characters", f.Label, f.MaxLength)
		}
		checkValue(verr, f.Name, f.Label, f.Kind, f.Options, v)
	}

	if d.LineItems {
		if len(fs.LineItems) == 0 {
			verr.add("lineItems", "add at least one line item")
		}
		if len(fs.LineItems) > document.MaxLineItems {
			verr.add("lineItems", "at most %d line items are allowed", document.MaxLineItems)
		}
		for i, item := range fs.LineItems {
			key := fmt.Sprintf("lineItems[%d]", i)
			if strings.TrimSpace(item.Description) == "" {
				verr.add(key+".description", "description is required")
			}
			qtyOK, priceOK := finiteNonNegative(item.Quantity), finiteNonNegative(item.UnitPrice)
			switch {
			case !qtyOK:
				verr.add(key+".quantity", "quantity must be zero or more")
			case item.Quantity > document.MaxQuantity:
				verr.add(key+".quantity", "quantity must be at most %.0f", document.MaxQuantity)
				qtyOK = false
			}
			switch {
			case !priceOK:
				verr.add(key+".unitPrice", "unit price must be zero or more")
			case item.UnitPrice > document.MaxAmount:
				verr.add(key+".unitPrice", "unit price must be at most %.0f", document.MaxAmount)
				priceOK = false
			}
			if qtyOK && priceOK && item.Quantity*item.UnitPrice > document.MaxAmount {
				verr.add(key, "line total must be at most %.0f", document.MaxAmount)
			}
		}
	}

	for _, t := range d.Tables {
		rows := fs.Rows(t.Name)
		if t.MaxRows > 0 && len(rows) > t.MaxRows {
			verr.add(t.Name, "%s allows at most %d rows", t.Label, t.MaxRows)
		}
		for i, row := range rows {
			for _, col := range t.Columns {
				v := strings.TrimSpace(row[col.Name])
				if v == "" {
					continue
				}
				checkValue(verr, fmt.Sprintf("%s[%d].%s", t.Name, i, col.Name), col.Label, col.Kind, col.Options, v)
			}
		}
	}

	if len(verr.Issues) > 0 {
		return verr
	}
	return nil
}

func checkValue(verr *ValidationError, key, label string, kind Kind, options []Option, v string) {
	switch kind {
	case KindDate:
		if err := validate.Var(v, "datetime="+dateLayout); err != nil {
			verr.add(key, "%s must be a date (YYYY-MM-DD)", label)
		}
	case KindNumber:
		n, err := parseNumber(v)
		if err != nil || !finiteNonNegative(n) {
			verr.add(key, "%s must be a number of zero or more", label)
		} else if n > document.MaxAmount {
			verr.add(key, "%s must be at most %.0f", label, document.MaxAmount)
		}
	case KindChoice:
		if len(options) == 0 {
			return
		}
		for _, o := range options {
			if o.Value == v {
				return
			}
		}
		verr.add(key, "%s must be one of %s", label, optionValues(options))
	}
}

func (d *Definition) conditionMet(fs FieldSet, c *Condition) bool {
	return c != nil && fs.Get(c.Field) == c.Value
}

func finiteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

func optionValues(options []Option) string {
	values := make([]string, 0, len(options))
	for _, o := range options {
		values = append(values, o.Value)
	}
	return strings.Join(values, ", ")
}

// totalsFor derives invoice totals from the line items; there is no input for them.
func totalsFor(fs FieldSet, rate float64) document.Totals {
	return document.ComputeTotals(fs.LineItems, rate)
}
