package dsl

import (
	"fmt"
	"time"

	"github.com/reoring/openschema/codec"
	"github.com/reoring/openschema/i18n"
	"github.com/reoring/openschema/spec"
)

// DateSchema parses ISO-8601 text (or Layout) into a time.Time at midnight UTC.
type DateSchema struct {
	Base
	layout    string
	outLayout string
}

func Date(opts ...Option) *DateSchema {
	st := newSettings(newBase("Date", TypeString, "date"), opts)
	s := &DateSchema{Base: st.Base, layout: st.layout, outLayout: st.outLayout}
	s.finish()
	return s
}

func (s *DateSchema) Meta() *Base { return &s.Base }

func (s *DateSchema) Clone() Schema {
	c := *s
	c.Base = s.Base.clone()
	return &c
}

func (s *DateSchema) Deserialize(v any) (any, error) {
	return s.deserialize(v, func(v any) (any, error) {
		switch x := v.(type) {
		case time.Time:
			return codec.Date(x), nil
		case string:
			d, err := codec.ParseDate(x, s.layout)
			if err != nil {
				return nil, invalid(i18n.CodeNotDate)
			}
			return d, nil
		}
		return nil, invalid(i18n.CodeNotDate)
	})
}

func (s *DateSchema) Serialize(v any) (any, error) {
	return s.serialize(v, func(v any) (any, error) {
		t, err := asTime(v)
		if err != nil {
			return nil, err
		}
		return codec.FormatDate(t, s.outLayout), nil
	})
}

func (s *DateSchema) ToSpec(*spec.Collection, spec.Options) any { return s.specFragment(s) }

// DatetimeSchema parses ISO-8601 text (or Layout) into time.Time. Values
// without an offset are returned in codec.NaiveZone.
type DatetimeSchema struct {
	Base
	layout       string
	outLayout    string
	withTimezone *bool
}

// Datetime returns a datetime schema. WithTimezone(true) rejects naive
// input, WithTimezone(false) rejects aware input; unset accepts both unless
// a package default was installed with SetDefaultWithTimezone.
func Datetime(opts ...Option) *DatetimeSchema {
	st := newSettings(newBase("Datetime", TypeString, "date-time"), opts)
	s := &DatetimeSchema{Base: st.Base, layout: st.layout, outLayout: st.outLayout, withTimezone: st.withTZ}
	if s.withTimezone == nil {
		s.withTimezone = withTZDefault()
	}
	s.finish()
	return s
}

func (s *DatetimeSchema) Meta() *Base { return &s.Base }

func (s *DatetimeSchema) Clone() Schema {
	c := *s
	c.Base = s.Base.clone()
	return &c
}

func (s *DatetimeSchema) Deserialize(v any) (any, error) {
	return s.deserialize(v, func(v any) (any, error) {
		var t time.Time
		switch x := v.(type) {
		case time.Time:
			t = x
		case string:
			var err error
			if t, err = codec.ParseDatetime(x, s.layout); err != nil {
				return nil, invalid(i18n.CodeNotDatetime)
			}
		default:
			return nil, invalid(i18n.CodeNotDatetime)
		}
		if s.withTimezone != nil {
			naive := codec.IsNaive(t)
			if !*s.withTimezone && !naive {
				return nil, invalid(i18n.CodeTZAware)
			}
			if *s.withTimezone && naive {
				return nil, invalid(i18n.CodeTZNaive)
			}
		}
		return t, nil
	})
}

func (s *DatetimeSchema) Serialize(v any) (any, error) {
	return s.serialize(v, func(v any) (any, error) {
		t, err := asTime(v)
		if err != nil {
			return nil, err
		}
		return codec.FormatDatetime(t, s.outLayout), nil
	})
}

func (s *DatetimeSchema) ToSpec(*spec.Collection, spec.Options) any { return s.specFragment(s) }

func asTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case *time.Time:
		return *x, nil
	}
	return time.Time{}, fmt.Errorf("cannot format %T as a date", v)
}
