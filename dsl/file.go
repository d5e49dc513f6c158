package dsl

import (
	"fmt"

	openschema "github.com/reoring/openschema"
	"github.com/reoring/openschema/i18n"
	"github.com/reoring/openschema/spec"
)

// FileSchema accepts uploads implementing openschema.File and renders stored
// files as a link: URL() when available, otherwise the file name.
type FileSchema struct{ Base }

func File(opts ...Option) *FileSchema {
	st := newSettings(newBase("File", TypeString, "binary"), opts)
	s := &FileSchema{Base: st.Base}
	s.finish()
	return s
}

func (s *FileSchema) Meta() *Base { return &s.Base }

func (s *FileSchema) Clone() Schema {
	c := *s
	c.Base = s.Base.clone()
	return &c
}

func (s *FileSchema) Deserialize(v any) (any, error) {
	return s.deserialize(v, func(v any) (any, error) {
		f, ok := v.(openschema.File)
		if !ok {
			return nil, invalid(i18n.CodeNotFile)
		}
		return f, nil
	})
}

func (s *FileSchema) Serialize(v any) (any, error) {
	return s.serialize(v, func(v any) (any, error) {
		switch f := v.(type) {
		case openschema.FileURL:
			return f.URL(), nil
		case openschema.File:
			return f.Name(), nil
		case fmt.Stringer:
			return f.String(), nil
		case string:
			return f, nil
		}
		return nil, fmt.Errorf("cannot link %T", v)
	})
}

func (s *FileSchema) ToSpec(*spec.Collection, spec.Options) any { return s.specFragment(s) }
