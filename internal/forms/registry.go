package forms

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"docforms-backend/internal/document"
)

//go:embed definitions/*.yaml
var embeddedDefinitions embed.FS

// DefinitionsFS returns the bundled definition files.
func DefinitionsFS() fs.FS {
	sub, err := fs.Sub(embeddedDefinitions, "definitions")
	if err != nil {
		// The embed directive guarantees the directory exists.
		panic(err)
	}
	return sub
}

// DefaultCompany is printed on every document unless configured otherwise.
const DefaultCompany = "FOCI GROUP (Pty) Ltd"

// DefaultBankDetails is printed on invoices.
const DefaultBankDetails = "FNB | Acc: 628 495 821 33 | Branch: 25-01-55"

// Options are the company-wide settings applied while laying out documents.
// A nil TaxRate means document.DefaultTaxRate; a rate of zero is kept.
type Options struct {
	Company     string
	BankDetails string
	TaxRate     *float64
}

// Rate returns the configured VAT rate.
func (o Options) Rate() float64 {
	if o.TaxRate == nil {
		return document.DefaultTaxRate
	}
	return *o.TaxRate
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.Company) == "" {
		o.Company = DefaultCompany
	}
	if strings.TrimSpace(o.BankDetails) == "" {
		o.BankDetails = DefaultBankDetails
	}
	rate := o.Rate()
	o.TaxRate = &rate
	return o
}

// Registry holds the document definitions and turns field sets into document specs.
type Registry struct {
	defs map[string]*Definition
	opts Options
}

// NewRegistry loads the bundled definitions.
func NewRegistry(opts Options) (*Registry, error) {
	return Load(DefinitionsFS(), opts)
}

// Load parses every YAML definition in fsys.
func Load(fsys fs.FS, opts Options) (*Registry, error) {
	r := &Registry{defs: make(map[string]*Definition), opts: opts.withDefaults()}

	err := fs.WalkDir(fsys, ".", func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			return nil
		}
		if ext := path.Ext(p); ext != ".yaml" && ext != ".yml" {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("forms: read %s: %w", p, err)
		}
		def, err := parseDefinition(data, p)
		if err != nil {
			return err
		}
		if _, exists := r.defs[def.Type]; exists {
			return fmt.Errorf("%w: duplicate type %q (file %s)", ErrInvalidDefinition, def.Type, p)
		}
		r.defs[def.Type] = def
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(r.defs) == 0 {
		return nil, fmt.Errorf("%w: no definitions found", ErrInvalidDefinition)
	}
	return r, nil
}

func parseDefinition(data []byte, source string) (*Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var def Definition
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidDefinition, source, err)
	}
	if err := checkDefinition(&def); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDefinition, source, err)
	}
	return &def, nil
}

func checkDefinition(def *Definition) error {
	if def.Type == "" || def.Title == "" || def.FileName == "" {
		return fmt.Errorf("type, title and fileName are required")
	}
	if def.Format != document.FormatDOCX && def.Format != document.FormatPDF {
		return fmt.Errorf("unsupported format %q", def.Format)
	}
	if _, ok := layouts[def.Type]; !ok {
		return fmt.Errorf("no layout for type %q", def.Type)
	}
	if strings.Contains(def.FileName, "{ref}") && !def.RequiresReference() {
		return fmt.Errorf("fileName uses {ref} without a reference prefix")
	}
	seen := make(map[string]bool)
	for _, f := range def.Fields {
		if f.Name == "" || seen[f.Name] {
			return fmt.Errorf("field names must be unique and non-empty (%q)", f.Name)
		}
		seen[f.Name] = true
		if !f.Kind.valid() {
			return fmt.Errorf("field %s: unknown kind %q", f.Name, f.Kind)
		}
		if f.Kind == KindChoice && len(f.Options) == 0 {
			return fmt.Errorf("field %s: choice without options", f.Name)
		}
	}
	for _, t := range def.Tables {
		if t.Name == "" || len(t.Columns) == 0 {
			return fmt.Errorf("table %q needs a name and columns", t.Name)
		}
	}
	slots := make(map[string]bool)
	for _, s := range def.Signatures {
		if s.Key == "" || s.Name == "" || slots[s.Key] {
			return fmt.Errorf("signature keys must be unique and named (%q)", s.Key)
		}
		if s.Width <= 0 || s.Height <= 0 {
			return fmt.Errorf("signature %s: width and height must be positive", s.Key)
		}
		slots[s.Key] = true
	}
	return nil
}

// Get returns the definition for docType.
func (r *Registry) Get(docType string) (*Definition, error) {
	def, ok := r.defs[docType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, docType)
	}
	return def, nil
}

// List returns every definition ordered by type.
func (r *Registry) List() []*Definition {
	out := make([]*Definition, 0, len(r.defs))
	for _, def := range r.defs {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Options returns the layout settings in effect.
func (r *Registry) Options() Options {
	return r.opts
}

// NewReference issues a fresh reference number for the definition, or "" when
// the type carries none.
func (r *Registry) NewReference(def *Definition) string {
	if !def.RequiresReference() {
		return ""
	}
	return document.NewReferenceGenerator(def.Reference.Prefix, def.Reference.Monthly).Value()
}

// Build normalizes and validates fs, then lays out the document spec.
// ref is the session's reference number; a fresh one is issued when empty.
func (r *Registry) Build(docType string, fs FieldSet, ref string) (document.Spec, error) {
	def, err := r.Get(docType)
	if err != nil {
		return document.Spec{}, err
	}
	clean := def.Normalize(fs)
	if err := def.Validate(clean); err != nil {
		return document.Spec{}, err
	}
	if def.RequiresReference() && ref == "" {
		ref = r.NewReference(def)
	}

	b := &builder{def: def, fs: clean, ref: ref, opts: r.opts}
	return document.Spec{
		Type:       def.Type,
		Title:      def.Title,
		Format:     def.Format,
		FileName:   def.FileNameFor(ref),
		Reference:  ref,
		Blocks:     layouts[def.Type](b),
		Signatures: def.SignatureSlots(),
	}, nil
}
