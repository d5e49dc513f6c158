// Package model2schema derives Model definitions from storage-model field
// metadata. A Source lists FieldInfo records; a Convertor registered for
// each field Kind turns one record into a dsl.Schema.
package model2schema

import (
	"fmt"
	"math"
	"strings"
	"sync"

	openschema "github.com/reoring/openschema"
	"github.com/reoring/openschema/dsl"
)

// Kind is the storage type of a field.
type Kind string

const (
	KindBool     Kind = "bool"
	KindString   Kind = "string"
	KindInteger  Kind = "integer"
	KindFloat    Kind = "float"
	KindDecimal  Kind = "decimal"
	KindDate     Kind = "date"
	KindDatetime Kind = "datetime"
	KindUUID     Kind = "uuid"
	KindFile     Kind = "file"
	KindJSON     Kind = "json"
	KindForeign  Kind = "foreign"
)

// Choice is one allowed value and its label.
type Choice struct {
	Value any
	Label string
}

// FieldInfo describes a storage-model field.
type FieldInfo struct {
	Name       string
	Kind       Kind
	PrimaryKey bool
	ReadOnly   bool
	// Blank fields may be omitted from input.
	Blank bool
	Null  bool
	// Default is a value or a func() any producer; nil means none.
	Default       any
	Choices       []Choice
	MaxLength     int
	MaxDigits     int
	DecimalPlaces int
	Verbose       string
	Help          string
	Example       any
	Validators    []openschema.Validator
	// Target is the referenced field of a KindForeign field.
	Target *FieldInfo
}

// Source lists the fields of one storage model.
type Source interface {
	Fields() ([]FieldInfo, error)
}

// Convertor turns a field into a schema. extra options are applied last.
type Convertor interface {
	Convert(f FieldInfo, extra ...dsl.Option) (dsl.Schema, error)
}

// Basic converts with the shared options plus Own, then calls New.
type Basic struct {
	New func(opts ...dsl.Option) dsl.Schema
	Own func(f FieldInfo) []dsl.Option
}

func (c Basic) Convert(f FieldInfo, extra ...dsl.Option) (dsl.Schema, error) {
	opts := CommonOptions(f)
	if c.Own != nil {
		opts = append(opts, c.Own(f)...)
	}
	return c.New(append(opts, extra...)...), nil
}

// CommonOptions maps the metadata every kind shares onto schema options.
func CommonOptions(f FieldInfo) []dsl.Option {
	var opts []dsl.Option
	if f.Default != nil {
		if _, producer := f.Default.(func() any); producer {
			opts = append(opts, dsl.Required(false))
		} else {
			opts = append(opts, dsl.Default(f.Default))
		}
	}
	if f.Blank {
		opts = append(opts, dsl.Required(false))
	}
	if f.ReadOnly || f.PrimaryKey {
		opts = append(opts, dsl.ReadOnly())
	}
	if f.Null {
		opts = append(opts, dsl.Nullable(true))
	}
	if len(f.Choices) > 0 {
		values := make([]any, len(f.Choices))
		for i, c := range f.Choices {
			values[i] = c.Value
		}
		opts = append(opts, dsl.Choices(values...))
	}
	if len(f.Validators) > 0 {
		opts = append(opts, dsl.Validators(f.Validators...))
	}
	if d := Description(f); d != "" {
		opts = append(opts, dsl.Description(d))
	}
	if f.Example != nil {
		opts = append(opts, dsl.Example(f.Example))
	}
	return opts
}

// Description joins the verbose name, the help text and a choice legend.
func Description(f FieldInfo) string {
	var parts []string
	if f.Verbose != "" {
		parts = append(parts, f.Verbose)
	}
	if f.Help != "" {
		parts = append(parts, f.Help)
	}
	if len(f.Choices) > 0 {
		lines := make([]string, len(f.Choices))
		for i, c := range f.Choices {
			lines[i] = fmt.Sprintf("- %v: %s", c.Value, c.Label)
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}
	return strings.Join(parts, "\n\n")
}

func stringOwn(f FieldInfo) []dsl.Option {
	if f.MaxLength > 0 {
		return []dsl.Option{dsl.MaxLength(f.MaxLength)}
	}
	return nil
}

// decimalOwn bounds the magnitude by the digit count and steps by the
// smallest representable fraction.
func decimalOwn(f FieldInfo) []dsl.Option {
	if f.MaxDigits <= 0 {
		return nil
	}
	limit := math.Pow10(f.MaxDigits - f.DecimalPlaces)
	return []dsl.Option{
		dsl.Lt(limit),
		dsl.Gt(-limit),
		dsl.MultipleOf(math.Pow10(-f.DecimalPlaces)),
	}
}

type foreign struct{}

// Convert uses the target's convertor with this field's own metadata.
func (foreign) Convert(f FieldInfo, extra ...dsl.Option) (dsl.Schema, error) {
	if f.Target == nil {
		return nil, openschema.NewConfigError("model2schema", "foreign field %q has no target", f.Name)
	}
	c, err := Match(f.Target.Kind)
	if err != nil {
		return nil, err
	}
	target := *f.Target
	target.Name = f.Name
	return c.Convert(target, append(CommonOptions(f), extra...)...)
}

var (
	convertorsMu sync.RWMutex
	convertors   = map[Kind]Convertor{
		KindBool:     Basic{New: func(o ...dsl.Option) dsl.Schema { return dsl.Boolean(o...) }},
		KindString:   Basic{New: func(o ...dsl.Option) dsl.Schema { return dsl.String(o...) }, Own: stringOwn},
		KindInteger:  Basic{New: func(o ...dsl.Option) dsl.Schema { return dsl.Integer(o...) }},
		KindFloat:    Basic{New: func(o ...dsl.Option) dsl.Schema { return dsl.Float(o...) }},
		KindDecimal:  Basic{New: func(o ...dsl.Option) dsl.Schema { return dsl.Float(o...) }, Own: decimalOwn},
		KindDate:     Basic{New: func(o ...dsl.Option) dsl.Schema { return dsl.Date(o...) }},
		KindDatetime: Basic{New: func(o ...dsl.Option) dsl.Schema { return dsl.Datetime(o...) }},
		KindUUID:     Basic{New: func(o ...dsl.Option) dsl.Schema { return dsl.UUID(o...) }},
		KindFile:     Basic{New: func(o ...dsl.Option) dsl.Schema { return dsl.File(o...) }},
		KindJSON:     Basic{New: func(o ...dsl.Option) dsl.Schema { return dsl.Any(o...) }},
		KindForeign:  foreign{},
	}
)

// Register installs c for kind, replacing any previous convertor.
func Register(kind Kind, c Convertor) {
	convertorsMu.Lock()
	defer convertorsMu.Unlock()
	convertors[kind] = c
}

// Match returns the convertor of kind.
func Match(kind Kind) (Convertor, error) {
	convertorsMu.RLock()
	defer convertorsMu.RUnlock()
	c, ok := convertors[kind]
	if !ok {
		return nil, openschema.NewConfigError("model2schema", "no convertor for kind %q", kind)
	}
	return c, nil
}
