package param_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	openschema "github.com/reoring/openschema"
	g "github.com/reoring/openschema/dsl"
	"github.com/reoring/openschema/param"
	"github.com/reoring/openschema/spec"
)

func TestQuery_ArrayStyles(t *testing.T) {
	m := g.Object("Search").
		Field("ids", g.List(g.Integer(), g.WithStyle(openschema.StyleForm, false))).
		Field("piped", g.List(g.Integer(), g.WithStyle(openschema.StylePipeDelimited, false))).
		Field("spaced", g.List(g.Integer(), g.WithStyle(openschema.StyleSpaceDelimited, false))).
		Field("tags", g.List(g.String())).
		MustBuild().MustNew()
	p := param.Must(param.Query(m))

	got, err := p.Parse(param.URLValues(url.Values{
		"ids":    {"1,2,30"},
		"piped":  {"1|2|30"},
		"spaced": {"1 2 30"},
		"tags":   {"a", "b"},
	}))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"ids":    []any{1, 2, 30},
		"piped":  []any{1, 2, 30},
		"spaced": []any{1, 2, 30},
		"tags":   []any{"a", "b"},
	}, got)
}

func TestQuery_Objects(t *testing.T) {
	color := g.Object("Color").
		Field("R", g.Integer()).
		Field("G", g.Integer()).
		MustBuild()

	deep := g.Object("Deep").
		Field("color", color.MustNew(g.WithStyle(openschema.StyleDeepObject, true))).
		MustBuild().MustNew()
	got, err := param.Must(param.Query(deep)).Parse(param.URLValues(url.Values{
		"color[R]": {"100"},
		"color[G]": {"200"},
	}))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"color": map[string]any{"R": 100, "G": 200}}, got)

	flat := g.Object("Flat").
		Field("color", color.MustNew(g.WithStyle(openschema.StyleForm, false))).
		MustBuild().MustNew()
	got, err = param.Must(param.Query(flat)).Parse(param.URLValues(url.Values{"color": {"R,100,G,200"}}))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"color": map[string]any{"R": 100, "G": 200}}, got)

	exploded := g.Object("Exploded").Field("color", color.MustNew()).MustBuild().MustNew()
	got, err = param.Must(param.Query(exploded)).Parse(param.URLValues(url.Values{"R": {"1"}, "G": {"2"}}))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"color": map[string]any{"R": 1, "G": 2}}, got)
}

func TestQuery_DeepObjectDict(t *testing.T) {
	m := g.Object("Filter").
		Field("filter", g.Dict(g.Integer(), g.WithStyle(openschema.StyleDeepObject, true))).
		MustBuild().MustNew()
	got, err := param.Must(param.Query(m)).Parse(param.URLValues(url.Values{
		"filter[min]": {"1"},
		"filter[max]": {"9"},
		"other":       {"x"},
	}))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"filter": map[string]any{"min": 1, "max": 9}}, got)
}

func TestQuery_ErrorsKeyedByAlias(t *testing.T) {
	m := g.Object("Page").
		Field("page", g.Integer(g.Gte(1))).
		MustBuild().MustNew()
	_, err := param.Must(param.Query(m)).Parse(param.URLValues(url.Values{"page": {"0"}}))
	ve, ok := openschema.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, []any{"page"}, ve.Keys())

	_, err = param.Must(param.Query(m)).Parse(param.URLValues(url.Values{}))
	ve, ok = openschema.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"This field is required."}, ve.Child("page").Messages())
}

func TestQuery_UnsupportedCombinations(t *testing.T) {
	cases := map[string]g.Schema{
		"deepObject on a list":     g.List(g.Integer(), g.WithStyle(openschema.StyleDeepObject, true)),
		"pipeDelimited on a value": g.Integer(g.WithStyle(openschema.StylePipeDelimited, false)),
		"exploded dict":            g.Dict(g.Integer()),
		"simple style in query":    g.Integer(g.WithStyle(openschema.StyleSimple, false)),
	}
	for name, s := range cases {
		def, err := g.FromFields("Bad", g.F("v", s))
		require.NoError(t, err, name)
		_, err = param.Query(def.MustNew())
		var ce *openschema.ConfigError
		assert.ErrorAs(t, err, &ce, name)
	}
	assert.Panics(t, func() { param.Must(param.Query(nil)) })
}

func TestHeaderAndCookie(t *testing.T) {
	hm := g.Object("Headers").
		Field("X-Request-Id", g.UUID()).
		Field("X-Tags", g.List(g.String())).
		MustBuild().MustNew()
	h := http.Header{}
	h.Set("x-request-id", "6fa459ea-ee8a-3ca4-894e-db77e160355e")
	h.Set("x-tags", "a,b")
	got, err := param.Must(param.Header(hm)).Parse(param.HeaderValues(h))
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, got["X-Tags"])
	assert.NotNil(t, got["X-Request-Id"])

	cm := g.Object("Cookies").
		Field("session", g.String()).
		Field("ids", g.List(g.Integer())).
		MustBuild().MustNew()
	cookies := []*http.Cookie{{Name: "session", Value: "abc"}, {Name: "ids", Value: "3,4"}}
	got, err = param.Must(param.Cookie(cm)).Parse(param.CookieValues(cookies))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"session": "abc", "ids": []any{3, 4}}, got)
}

func TestPath(t *testing.T) {
	p, err := param.Path("/users/{id}/posts/{slug}", map[string]g.Schema{"id": g.Integer()})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "slug"}, p.Names())

	got, err := p.Parse(map[string]string{"id": "7", "slug": "hello"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": 7, "slug": "hello"}, got)

	_, err = p.Parse(map[string]string{"id": "x", "slug": "hello"})
	assert.JSONEq(t, `{"id":["Not a valid integer."]}`, errorJSON(t, err))

	_, err = param.Path("users/{id}", nil)
	assert.Error(t, err)
	_, err = param.Path("/users/{id}", map[string]g.Schema{"name": g.String()})
	assert.Error(t, err)
}

func TestParameter_Fragment(t *testing.T) {
	m := g.Object("ListQuery").
		Field("limit", g.Integer(g.Description("page size"), g.Default(20))).
		Field("q", g.String(g.Examples(map[string]any{"simple": "go"}))).
		Field("ids", g.List(g.Integer(), g.WithStyle(openschema.StyleForm, false))).
		MustBuild().MustNew()
	c := spec.NewCollection("fragment")
	frag := spec.Clean(param.Must(param.Query(m)).Fragment(c))
	assert.Equal(t, map[string]any{"parameters": []any{
		map[string]any{
			"name":        "limit",
			"in":          "query",
			"description": "page size",
			"schema":      map[string]any{"type": "integer", "default": 20, "description": "page size"},
			"style":       "form",
			"explode":     true,
		},
		map[string]any{
			"name":     "q",
			"in":       "query",
			"required": true,
			"schema":   map[string]any{"type": "string"},
			"style":    "form",
			"explode":  true,
			"examples": map[string]any{"simple": map[string]any{"value": "go"}},
		},
		map[string]any{
			"name":     "ids",
			"in":       "query",
			"required": true,
			"schema":   map[string]any{"type": "array", "items": map[string]any{"type": "integer"}},
			"style":    "form",
			"explode":  false,
		},
	}}, frag)

	path := param.Must(param.Path("/items/{id}", nil))
	pf := spec.Clean(path.Fragment(c)).(map[string]any)
	first := pf["parameters"].([]any)[0].(map[string]any)
	assert.Equal(t, true, first["required"])
	assert.Equal(t, "simple", first["style"])
}

func itemBody() *param.RequestBody {
	m := g.Object("Item").
		Field("name", g.String()).
		Field("tags", g.List(g.String(), g.Required(false))).
		MustBuild().MustNew()
	return param.Must(param.Body(m, param.MediaJSON, param.MediaForm, param.MediaMultipart))
}

func TestBody_JSON(t *testing.T) {
	b := itemBody()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"pen","tags":["a"]}`))
	r.Header.Set("Content-Type", "application/json; charset=utf-8")
	got, err := b.Parse(r)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "pen", "tags": []any{"a"}}, got)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","name":"b"}`))
	r.Header.Set("Content-Type", param.MediaJSON)
	_, err = b.Parse(r)
	assert.JSONEq(t, `["Duplicate key 'name'."]`, errorJSON(t, err))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":5}`))
	r.Header.Set("Content-Type", param.MediaJSON)
	_, err = b.Parse(r)
	assert.JSONEq(t, `{"name":["Not a valid string."]}`, errorJSON(t, err))
}

func TestBody_Form(t *testing.T) {
	b := itemBody()
	form := url.Values{"name": {"pen"}, "tags": {"a", "b"}}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", param.MediaForm)
	got, err := b.Parse(r)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "pen", "tags": []any{"a", "b"}}, got)
}

func TestBody_MultipartFile(t *testing.T) {
	m := g.Object("Upload").
		Field("title", g.String()).
		Field("file", g.File()).
		MustBuild().MustNew()
	b := param.Must(param.Body(m, param.MediaMultipart))

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("title", "report"))
	fw, err := w.CreateFormFile("file", "report.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r := httptest.NewRequest(http.MethodPost, "/", &buf)
	r.Header.Set("Content-Type", w.FormDataContentType())
	got, err := b.Parse(r)
	require.NoError(t, err)
	out := got.(map[string]any)
	assert.Equal(t, "report", out["title"])
	f, ok := out["file"].(openschema.File)
	require.True(t, ok)
	assert.Equal(t, "report.txt", f.Name())
	assert.Equal(t, int64(5), f.Size())
	rc, err := f.Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestBody_UnsupportedMediaType(t *testing.T) {
	b := param.Must(param.Body(g.Any()))
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("x"))
	r.Header.Set("Content-Type", "text/plain")
	_, err := b.Parse(r)
	var ume *param.UnsupportedMediaTypeError
	require.ErrorAs(t, err, &ume)
	assert.Equal(t, "Unsupported media type text/plain.", ume.Error())

	_, err = param.Body(g.Any(), "text/csv")
	assert.Error(t, err)
}

func TestBody_Fragment(t *testing.T) {
	b := param.Must(param.Body(g.List(g.Integer()))).WithDescription("ids")
	frag := spec.Clean(b.Fragment(spec.NewCollection("body")))
	assert.Equal(t, map[string]any{"requestBody": map[string]any{
		"required":    true,
		"description": "ids",
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"type": "array", "items": map[string]any{"type": "integer"}},
			},
		},
	}}, frag)
}

func errorJSON(t *testing.T, err error) string {
	t.Helper()
	ve, ok := openschema.AsValidationError(err)
	require.True(t, ok, "want a validation error, got %v", err)
	data, mErr := ve.MarshalJSON()
	require.NoError(t, mErr)
	return string(data)
}
