package model2schema

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	openschema "github.com/reoring/openschema"
	"github.com/reoring/openschema/i18n"
)

var (
	timeType    = reflect.TypeOf(time.Time{})
	uuidType    = reflect.TypeOf(uuid.UUID{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
	fileType    = reflect.TypeOf((*openschema.File)(nil)).Elem()
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// StructSource reads fields from the exported fields of a struct type.
//
// Tags:
//
//	json:"name,omitempty"   wire name; omitempty makes the field optional
//	openschema:"name=wire"  overrides the json name
//	validate:"required,max=20,email"
//	doc:"help text"
//	example:"value"
//	schema:"pk,readonly,date"
//
// Pointer fields are nullable. The validate rules required, oneof and max
// on strings become schema options; the rest run through
// go-playground/validator after deserialization.
type StructSource struct {
	typ reflect.Type
}

// Struct returns the source of v's struct type. v may be a pointer.
func Struct(v any) StructSource {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return StructSource{typ: t}
}

func (s StructSource) Fields() ([]FieldInfo, error) {
	if s.typ == nil || s.typ.Kind() != reflect.Struct {
		return nil, openschema.NewConfigError("model2schema.Struct", "%v is not a struct type", s.typ)
	}
	var out []FieldInfo
	for i := 0; i < s.typ.NumField(); i++ {
		sf := s.typ.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, omitempty, skip := jsonName(sf)
		if skip {
			continue
		}
		f, err := fieldOf(sf, name, omitempty)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func jsonName(sf reflect.StructField) (name string, omitempty, skip bool) {
	name = openschema.ResolveStructKey(sf)
	if name == "-" {
		return "", false, true
	}
	_, opts, _ := strings.Cut(sf.Tag.Get("json"), ",")
	return name, strings.Contains(","+opts+",", ",omitempty,"), false
}

func fieldOf(sf reflect.StructField, name string, omitempty bool) (FieldInfo, error) {
	t := sf.Type
	f := FieldInfo{Name: name, Blank: omitempty, Help: sf.Tag.Get("doc")}
	if t.Kind() == reflect.Pointer {
		f.Null = true
		t = t.Elem()
	}
	for _, opt := range strings.Split(sf.Tag.Get("schema"), ",") {
		switch strings.TrimSpace(opt) {
		case "pk":
			f.PrimaryKey = true
		case "readonly":
			f.ReadOnly = true
		case "date":
			f.Kind = KindDate
		}
	}
	if f.Kind == "" {
		f.Kind = kindOf(t)
	}
	if ex, ok := sf.Tag.Lookup("example"); ok {
		f.Example = ex
	}
	if err := applyValidateTag(&f, sf.Tag.Get("validate")); err != nil {
		return f, err
	}
	return f, nil
}

func kindOf(t reflect.Type) Kind {
	switch {
	case t == timeType:
		return KindDatetime
	case t == uuidType:
		return KindUUID
	case t == decimalType:
		return KindDecimal
	case t.Implements(fileType):
		return KindFile
	}
	switch t.Kind() {
	case reflect.Bool:
		return KindBool
	case reflect.String:
		return KindString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return KindInteger
	case reflect.Float32, reflect.Float64:
		return KindFloat
	}
	return KindJSON
}

// applyValidateTag maps rules with a schema equivalent onto f and wraps the
// remainder as one validator.
func applyValidateTag(f *FieldInfo, tag string) error {
	if tag == "" {
		return nil
	}
	var rest []string
	for _, rule := range strings.Split(tag, ",") {
		key, param, _ := strings.Cut(rule, "=")
		switch key {
		case "required":
			f.Blank = false
			continue
		case "oneof":
			for _, v := range strings.Fields(param) {
				f.Choices = append(f.Choices, Choice{Value: choiceValue(f.Kind, v), Label: v})
			}
			continue
		case "max":
			if f.Kind == KindString {
				if n, err := strconv.Atoi(param); err == nil {
					f.MaxLength = n
					continue
				}
			}
		}
		if !knownRule(f.Kind, rule) {
			return openschema.NewConfigError("model2schema.Struct", "field %q: bad validate rule %q", f.Name, rule)
		}
		rest = append(rest, rule)
	}
	if len(rest) > 0 {
		f.Validators = append(f.Validators, Tag(strings.Join(rest, ",")))
	}
	return nil
}

func choiceValue(k Kind, v string) any {
	if k == KindInteger {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return v
}

func zeroFor(k Kind) any {
	switch k {
	case KindInteger:
		return 0
	case KindFloat, KindDecimal:
		return 0.0
	case KindBool:
		return false
	}
	return ""
}

// knownRule runs rule once against the zero value of k. validator panics on
// tags it cannot parse.
func knownRule(k Kind, rule string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	_ = validate.Var(zeroFor(k), rule)
	return true
}

// Tag runs go-playground/validator rules against a deserialized value.
// Each failed rule yields one message.
func Tag(rules string) openschema.Validator {
	return func(v any) error {
		err := validate.Var(v, rules)
		if err == nil {
			return nil
		}
		var fes validator.ValidationErrors
		if !errors.As(err, &fes) {
			return openschema.NewValidationError(err.Error())
		}
		msgs := make([]string, 0, len(fes))
		for _, fe := range fes {
			msgs = append(msgs, tagMessage(fe))
		}
		return openschema.NewValidationError(msgs...)
	}
}

func tagMessage(fe validator.FieldError) string {
	p := fe.Param()
	switch fe.Tag() {
	case "email":
		return i18n.T(i18n.CodeEmail, nil)
	case "url", "uri", "http_url":
		return i18n.T(i18n.CodeURL, nil)
	case "min", "gte":
		if fe.Kind() == reflect.String {
			return i18n.T(i18n.CodeLengthMin, map[string]string{"min": p})
		}
		return i18n.T(i18n.CodeGte, map[string]string{"bound": p})
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return i18n.T(i18n.CodeLengthMax, map[string]string{"max": p})
		}
		return i18n.T(i18n.CodeLte, map[string]string{"bound": p})
	case "gt":
		return i18n.T(i18n.CodeGt, map[string]string{"bound": p})
	case "lt":
		return i18n.T(i18n.CodeLt, map[string]string{"bound": p})
	}
	return i18n.T(i18n.CodeTagFailed, map[string]string{"tag": fe.Tag()})
}
