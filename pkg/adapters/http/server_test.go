package http_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/aretw0/mold"
	"github.com/aretw0/mold/internal/sample"
	httpAdapter "github.com/aretw0/mold/pkg/adapters/http"
	"github.com/aretw0/mold/pkg/serialize"
)

func newHandler(t *testing.T) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	m, err := mold.New(mold.WithRules(sample.Register), mold.WithMetrics(reg))
	require.NoError(t, err)
	return httpAdapter.NewHandler(m, httpAdapter.WithGatherer(reg))
}

func post(h http.Handler, target string, form url.Values, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestBind_RoundTrip(t *testing.T) {
	h := newHandler(t)
	w := post(h, "/bind/client?include=address&version=2", url.Values{
		"client.id":             {"12"},
		"client.name":           {"Ana"},
		"client.email":          {"ana@x.io"},
		"client.password":       {"secret"},
		"client.status":         {"blocked"},
		"client.address.street": {"Rua A"},
		"unrelated":             {"1"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.Equal(t, int64(12), gjson.Get(body, "client.id").Int())
	assert.Equal(t, "ana@x.io", gjson.Get(body, "client.email").String())
	assert.Equal(t, "BLOCKED", gjson.Get(body, "client.status").String())
	assert.Equal(t, "Rua A", gjson.Get(body, "client.address.street").String())
	assert.False(t, gjson.Get(body, "client.password").Exists())
}

func TestBind_VersionAndFormat(t *testing.T) {
	h := newHandler(t)
	form := url.Values{"client.name": {"Ana"}, "client.email": {"a@x"}}

	w := post(h, "/bind/client?version=1&root=none", form)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, gjson.Get(w.Body.String(), "email").Exists())
	assert.Equal(t, "Ana", gjson.Get(w.Body.String(), "name").String())

	w = post(h, "/bind/client?format=xml&exclude_all=true&include=name", form)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/xml; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "<client><name>Ana</name></client>", w.Body.String())

	w = post(h, "/bind/client?exclude_all=true&include=name", form, "Accept", "application/yaml")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/yaml; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "name: Ana")

	w = post(h, "/bind/client?format=toml", form)
	assert.Equal(t, http.StatusNotAcceptable, w.Code)

	w = post(h, "/bind/client?version=x", form)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBind_LocalizedErrors(t *testing.T) {
	h := newHandler(t)
	form := url.Values{"client.id": {"abc"}, "client.balance": {"1.234,5"}}

	w := post(h, "/bind/client", form, "Accept-Language", "pt-BR,pt;q=0.9")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := w.Body.String()
	assert.Equal(t, "client.id", gjson.Get(body, "errors.0.category").String())
	assert.Equal(t, "'abc' não é um número inteiro válido", gjson.Get(body, "errors.0.text").String())
	assert.Equal(t, int64(1), gjson.Get(body, "errors.#").Int())

	w = post(h, "/bind/client?locale=en", url.Values{"client.id": {"abc"}})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "'abc' is not a valid integer", gjson.Get(w.Body.String(), "errors.0.text").String())
}

func TestBind_UnknownType(t *testing.T) {
	h := newHandler(t)
	w := post(h, "/bind/ghost", url.Values{})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "unknown type ghost", gjson.Get(w.Body.String(), "errors.0.text").String())
}

func TestDescribe(t *testing.T) {
	h := newHandler(t)

	get := func(target string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		return w
	}

	w := get("/describe/client")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, gjson.Get(body, "properties.email").Exists())
	assert.False(t, gjson.Get(body, "properties.password").Exists())
	assert.Equal(t, []any{"ACTIVE", "BLOCKED", "CLOSED"}, gjson.Get(body, "properties.status.enum").Value())

	w = get("/describe/client?version=1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, gjson.Get(w.Body.String(), "properties.email").Exists())

	assert.Equal(t, http.StatusNotFound, get("/describe/ghost").Code)
	assert.Equal(t, http.StatusBadRequest, get("/describe/client?version=x").Code)

	w = get("/types")
	assert.JSONEq(t, `["address","client","phone"]`, w.Body.String())

	w = get("/info")
	assert.Equal(t, mold.Version, gjson.Get(w.Body.String(), "version").String())
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHandler(t)
	post(h, "/bind/client", url.Values{"client.name": {"Ana"}})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `mold_bindings_total{outcome="ok",type="client"} 1`)
	assert.Contains(t, w.Body.String(), "mold_serializations_total")
}

func TestParamsFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/x?client.tags=a", strings.NewReader("client.tags=b&client.id=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	params, err := httpAdapter.ParamsFromRequest(req)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, params["client.tags"])
	assert.Equal(t, []string{"1"}, params["client.id"])
}

func TestVersion(t *testing.T) {
	v, ok, err := httpAdapter.Version(url.Values{"version": {"1.5"}})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)

	_, ok, err = httpAdapter.Version(url.Values{})
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = httpAdapter.Version(url.Values{"version": {"1,5"}})
	assert.Error(t, err)

	// describe and bind read the parameter the same way
	h := newHandler(t)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/describe/client?version=1.5", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, gjson.Get(w.Body.String(), "properties.email").Exists())

	b := post(h, "/bind/client?version=1.5&root=none", url.Values{"client.email": {"a@x"}})
	require.Equal(t, http.StatusOK, b.Code)
	assert.False(t, gjson.Get(b.Body.String(), "email").Exists())
}

func TestBind_IndentOverridesDefault(t *testing.T) {
	m, err := mold.New(
		mold.WithRules(sample.Register),
		mold.WithDefaults(serialize.Defaults{Indented: true}),
	)
	require.NoError(t, err)
	h := httpAdapter.NewHandler(m)
	form := url.Values{"client.name": {"Ana"}}

	w := post(h, "/bind/client?exclude_all=true&include=name", form)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "\n")

	w = post(h, "/bind/client?exclude_all=true&include=name&indent=false", form)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"client":{"name":"Ana"}}`, w.Body.String())
}
