package param

import (
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"slices"

	openschema "github.com/reoring/openschema"
	"github.com/reoring/openschema/dsl"
	"github.com/reoring/openschema/i18n"
	"github.com/reoring/openschema/internal/jsonbody"
	"github.com/reoring/openschema/logger"
	"github.com/reoring/openschema/spec"
)

// Supported request body media types.
const (
	MediaJSON      = "application/json"
	MediaMultipart = "multipart/form-data"
	MediaForm      = "application/x-www-form-urlencoded"
)

const defaultMaxMemory = 32 << 20

// UnsupportedMediaTypeError is returned when a request's Content-Type is not
// one the body accepts.
type UnsupportedMediaTypeError struct {
	MediaType string
}

func (e *UnsupportedMediaTypeError) Error() string {
	return i18n.T(i18n.CodeUnsupportedMedia, map[string]string{"type": e.MediaType})
}

// RequestBody binds a request body to a schema.
type RequestBody struct {
	schema      dsl.Schema
	media       []string
	description string
	maxMemory   int64
}

// Body accepts media for schema; JSON when none is given.
func Body(schema dsl.Schema, media ...string) (*RequestBody, error) {
	if schema == nil {
		return nil, openschema.NewConfigError("param.Body", "a body needs a schema")
	}
	if len(media) == 0 {
		media = []string{MediaJSON}
	}
	for _, mt := range media {
		switch mt {
		case MediaJSON, MediaMultipart, MediaForm:
		default:
			return nil, openschema.NewConfigError("param.Body", "unsupported media type %q", mt)
		}
	}
	return &RequestBody{schema: schema, media: slices.Clone(media), maxMemory: defaultMaxMemory}, nil
}

// WithDescription sets the requestBody description.
func (b *RequestBody) WithDescription(s string) *RequestBody {
	b.description = s
	return b
}

// WithMaxMemory bounds the in-memory part of multipart parsing.
func (b *RequestBody) WithMaxMemory(n int64) *RequestBody {
	b.maxMemory = n
	return b
}

func (b *RequestBody) Schema() dsl.Schema     { return b.schema }
func (b *RequestBody) MediaTypes() []string   { return slices.Clone(b.media) }
func (b *RequestBody) Accepts(mt string) bool { return slices.Contains(b.media, mt) }

// Parse decodes r's body by its Content-Type and deserializes it.
func (b *RequestBody) Parse(r *http.Request) (any, error) {
	raw := r.Header.Get("Content-Type")
	mt, _, err := mime.ParseMediaType(raw)
	if err != nil {
		mt = raw
	}
	if !b.Accepts(mt) {
		logger.L().Debug().Str("content_type", raw).Msg("request body media type rejected")
		return nil, &UnsupportedMediaTypeError{MediaType: mt}
	}

	var data any
	if mt == MediaJSON {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		if data, err = jsonbody.Decode(body); err != nil {
			return nil, err
		}
	} else if data, err = b.form(r, mt); err != nil {
		return nil, err
	}
	return b.schema.Deserialize(data)
}

// form flattens form values and uploads. List fields of a model take every
// value of their key; everything else takes the first.
func (b *RequestBody) form(r *http.Request, mt string) (map[string]any, error) {
	var values url.Values
	var files map[string][]*multipart.FileHeader
	if mt == MediaMultipart {
		if err := r.ParseMultipartForm(b.maxMemory); err != nil {
			return nil, invalidForm(err)
		}
		values, files = r.MultipartForm.Value, r.MultipartForm.File
	} else {
		if err := r.ParseForm(); err != nil {
			return nil, invalidForm(err)
		}
		values = r.PostForm
	}

	combined := make(map[string][]any, len(values)+len(files))
	for k, vs := range values {
		for _, v := range vs {
			combined[k] = append(combined[k], v)
		}
	}
	for k, fhs := range files {
		for _, fh := range fhs {
			combined[k] = append(combined[k], upload{fh})
		}
	}

	out := make(map[string]any, len(combined))
	if m := modelOf(b.schema); m != nil {
		for _, f := range m.Fields() {
			alias := f.Meta().Alias()
			vs, ok := combined[alias]
			if !ok {
				continue
			}
			if ShapeOf(f) == ShapeArray {
				out[alias] = vs
			} else {
				out[alias] = vs[0]
			}
			delete(combined, alias)
		}
	}
	for k, vs := range combined {
		out[k] = vs[0]
	}
	return out, nil
}

func invalidForm(err error) error {
	logger.L().Debug().Err(err).Msg("malformed form body")
	return openschema.NewValidationError(i18n.T(i18n.CodeInvalidForm, nil))
}

// Fragment renders {"requestBody": {...}} with one content entry per media
// type.
func (b *RequestBody) Fragment(c *spec.Collection) map[string]any {
	content := make(map[string]any, len(b.media))
	for _, mt := range b.media {
		content[mt] = map[string]any{"schema": b.schema.ToSpec(c, spec.Options{NeedRequired: true})}
	}
	return map[string]any{"requestBody": map[string]any{
		"required":    true,
		"description": spec.Str(b.description),
		"content":     content,
	}}
}

// upload exposes a multipart file header as an openschema.File.
type upload struct{ fh *multipart.FileHeader }

func (u upload) Name() string { return u.fh.Filename }

func (u upload) Size() int64 { return u.fh.Size }

func (u upload) Open() (io.ReadCloser, error) { return u.fh.Open() }
