package echomw_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	g "github.com/reoring/openschema/dsl"
	"github.com/reoring/openschema/middleware"
	echomw "github.com/reoring/openschema/middleware/echo"
	"github.com/reoring/openschema/param"
	"github.com/reoring/openschema/spec"
)

func newServer(t *testing.T) (*echo.Echo, *spec.Document) {
	t.Helper()
	item := g.Object("Item").
		Field("id", g.Integer(g.ReadOnly())).
		Field("name", g.String()).
		MustBuild()
	list := g.Object("ItemQuery").
		Field("limit", g.Integer(g.Gte(1), g.Default(10))).
		MustBuild().MustNew()

	e := echo.New()
	doc := spec.NewDocumentWith(spec.NewCollection("echo-test"), spec.Info{Title: "items"})

	_, err := echomw.Register(e, doc, echomw.Operation{
		Method: http.MethodGet,
		Path:   "/items/{id}",
		Spec:   spec.Operation{OperationID: "getItem"},
		Binding: &middleware.Binding{
			Path:  param.Must(param.Path("/items/{id}", map[string]g.Schema{"id": g.Integer()})),
			Query: param.Must(param.Query(list)),
		},
		Handler: func(c echo.Context) error {
			req, ok := echomw.Parsed(c)
			require.True(t, ok)
			return echomw.Respond(c, http.StatusOK, item.MustNew(), map[string]any{
				"id":   req.Path["id"],
				"name": "limit " + c.QueryParam("limit"),
			})
		},
	})
	require.NoError(t, err)

	_, err = echomw.Register(e, doc, echomw.Operation{
		Method:  http.MethodPost,
		Path:    "/items",
		Binding: &middleware.Binding{Body: param.Must(param.Body(item.MustNew()))},
		Handler: func(c echo.Context) error {
			req, _ := echomw.Parsed(c)
			return c.JSON(http.StatusCreated, req.Body)
		},
	})
	require.NoError(t, err)
	return e, doc
}

func serve(e *echo.Echo, r *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, r)
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestBind_PathAndQuery(t *testing.T) {
	e, _ := newServer(t)

	rec, body := serve(e, httptest.NewRequest(http.MethodGet, "/items/7?limit=3", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"id": float64(7), "name": "limit 3"}, body)

	rec, body = serve(e, httptest.NewRequest(http.MethodGet, "/items/abc", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, map[string]any{"id": []any{"Not a valid integer."}}, body["errors"])

	rec, body = serve(e, httptest.NewRequest(http.MethodGet, "/items/7?limit=0", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	issues := body["issues"].([]any)
	require.Len(t, issues, 1)
	assert.Equal(t, "/limit", issues[0].(map[string]any)["path"])
}

func TestBind_Body(t *testing.T) {
	e, _ := newServer(t)

	r := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(`{"id":1,"name":"pen"}`))
	r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec, body := serve(e, r)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, map[string]any{"name": "pen"}, body)

	r = httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(`{}`))
	r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec, body = serve(e, r)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]any{"name": []any{"This field is required."}}, body["errors"])

	r = httptest.NewRequest(http.MethodPost, "/items", strings.NewReader("pen"))
	r.Header.Set(echo.HeaderContentType, echo.MIMETextPlain)
	rec, _ = serve(e, r)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRegister_Documents(t *testing.T) {
	_, doc := newServer(t)
	assert.Equal(t, []string{"/items/{id}", "/items"}, doc.Paths())
	assert.Equal(t, []string{"get"}, doc.Methods("/items/{id}"))

	built := doc.Build()
	op := built["paths"].(map[string]any)["/items/{id}"].(map[string]any)["get"].(map[string]any)
	params := op["parameters"].([]any)
	require.Len(t, params, 2)
	assert.Equal(t, "path", params[0].(map[string]any)["in"])
	assert.Equal(t, "query", params[1].(map[string]any)["in"])
}

func TestRoute(t *testing.T) {
	assert.Equal(t, "/users/:id/posts/:slug", echomw.Route("/users/{id}/posts/{slug}"))
	assert.Equal(t, "/plain", echomw.Route("/plain"))
}
