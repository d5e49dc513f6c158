// Package jsonbody decodes JSON request bodies, rejecting objects that
// repeat a key.
package jsonbody

import (
	"bytes"
	"errors"
	"io"

	json "github.com/goccy/go-json"

	openschema "github.com/reoring/openschema"
	"github.com/reoring/openschema/i18n"
	"github.com/reoring/openschema/logger"
)

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	keys         map[string]struct{}
	expectingKey bool
	key          string
	index        int
}

// Decode parses data into maps, slices and json.Number values. A malformed
// document or a repeated key yields a *openschema.ValidationError; the
// duplicate is reported at the object holding it.
func Decode(data []byte) (any, error) {
	if err := checkDuplicates(data); err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, malformed(err)
	}
	if dec.More() {
		return nil, malformed(errors.New("trailing data after the JSON value"))
	}
	return out, nil
}

func malformed(err error) error {
	logger.L().Debug().Err(err).Msg("malformed JSON body")
	return openschema.NewValidationError(i18n.T(i18n.CodeInvalidJSON, nil))
}

func checkDuplicates(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var stack []*frame

	// valueDone advances the parent after a complete value.
	valueDone := func() {
		if len(stack) == 0 {
			return
		}
		top := stack[len(stack)-1]
		switch top.kind {
		case kindObject:
			top.expectingKey = true
		case kindArray:
			top.index++
		}
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return malformed(err)
		}
		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{':
				stack = append(stack, &frame{kind: kindObject, keys: map[string]struct{}{}, expectingKey: true})
			case '[':
				stack = append(stack, &frame{kind: kindArray})
			case '}', ']':
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
				valueDone()
			}
		case string:
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				if top.kind == kindObject && top.expectingKey {
					if _, dup := top.keys[v]; dup {
						loc := location(stack[:len(stack)-1])
						logger.L().Debug().Str("key", v).Str("path", openschema.Pointer(loc)).Msg("duplicate JSON key rejected")
						leaf := openschema.NewValidationError(i18n.T(i18n.CodeDuplicateKey, map[string]string{"key": v}))
						return openschema.Nest(loc, leaf)
					}
					top.keys[v] = struct{}{}
					top.key = v
					top.expectingKey = false
					continue
				}
			}
			valueDone()
		default:
			valueDone()
		}
	}
}

// location renders the path of the innermost open container from its
// enclosing frames.
func location(frames []*frame) []any {
	loc := make([]any, 0, len(frames))
	for _, f := range frames {
		if f.kind == kindObject {
			loc = append(loc, f.key)
		} else {
			loc = append(loc, f.index)
		}
	}
	return loc
}
