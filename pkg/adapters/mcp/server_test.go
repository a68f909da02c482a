package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/aretw0/mold"
	"github.com/aretw0/mold/internal/sample"
	"github.com/aretw0/mold/pkg/bind"
)

func newServer(t *testing.T) *Server {
	t.Helper()
	m, err := mold.New(mold.WithRules(sample.Register))
	require.NoError(t, err)
	return NewServer(m)
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	content, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "unexpected content %T", res.Content[0])
	return content.Text
}

func TestHandleBind(t *testing.T) {
	s := newServer(t)
	version := 1.0

	res, err := s.handleBind(context.Background(), mcp.CallToolRequest{}, BindArgs{
		Type: "client",
		Params: map[string]any{
			"client.id":             float64(7),
			"client.name":           "Ana",
			"client.email":          "ana@x.io",
			"client.tags":           []any{"a", "b"},
			"client.address.street": "Rua A",
		},
		Include: []string{"address"},
		Version: &version,
	})
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	assert.Equal(t, "json", res.Format)
	assert.Equal(t, int64(7), gjson.Get(res.Output, "client.id").Int())
	assert.Equal(t, "Rua A", gjson.Get(res.Output, "client.address.street").String())
	assert.False(t, gjson.Get(res.Output, "client.email").Exists())

	res, err = s.handleBind(context.Background(), mcp.CallToolRequest{}, BindArgs{
		Type:    "client",
		Params:  map[string]any{"client.name": "Ana"},
		Format:  "xml",
		Exclude: []string{"email"},
	})
	require.NoError(t, err)
	assert.Equal(t, "xml", res.Format)
	assert.True(t, strings.HasPrefix(res.Output, "<client>"), res.Output)
	assert.Contains(t, res.Output, "<name>Ana</name>")
	assert.NotContains(t, res.Output, "<email>")
}

func TestHandleBind_LocalizedErrors(t *testing.T) {
	s := newServer(t)

	res, err := s.handleBind(context.Background(), mcp.CallToolRequest{}, BindArgs{
		Type:   "client",
		Params: map[string]any{"client.id": "abc"},
		Locale: "pt-BR",
	})
	require.NoError(t, err)
	assert.Empty(t, res.Output)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "client.id", res.Errors[0].Category)
	assert.Equal(t, "'abc' não é um número inteiro válido", res.Errors[0].Text)

	_, err = s.handleBind(context.Background(), mcp.CallToolRequest{}, BindArgs{Type: "ghost"})
	assert.ErrorContains(t, err, "unknown type")

	_, err = s.handleBind(context.Background(), mcp.CallToolRequest{}, BindArgs{Type: "client", Format: "toml"})
	assert.Error(t, err)

	_, err = s.handleBind(context.Background(), mcp.CallToolRequest{}, BindArgs{Type: "client", Locale: "not a tag"})
	assert.Error(t, err)
}

func TestHandleDescribe(t *testing.T) {
	s := newServer(t)

	res, err := s.handleDescribe(context.Background(), call(map[string]any{"type": "client"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	body := resultText(t, res)
	assert.True(t, gjson.Get(body, "properties.email").Exists())
	assert.False(t, gjson.Get(body, "properties.password").Exists())

	res, err = s.handleDescribe(context.Background(), call(map[string]any{"type": "client", "version": float64(1)}))
	require.NoError(t, err)
	assert.False(t, gjson.Get(resultText(t, res), "properties.email").Exists())

	res, err = s.handleDescribe(context.Background(), call(map[string]any{"type": "ghost"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleDescribe(context.Background(), call(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleTypes(t *testing.T) {
	s := newServer(t)

	res, err := s.handleTypes(context.Background(), call(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `["address","client","phone"]`, resultText(t, res))
}

func TestParamsOf(t *testing.T) {
	assert.Equal(t, bind.Params{
		"a": {"x"},
		"b": {"1.5"},
		"c": {"true"},
		"d": {"1", "y"},
		"e": nil,
	}, paramsOf(map[string]any{
		"a": "x",
		"b": 1.5,
		"c": true,
		"d": []any{float64(1), "y"},
		"e": nil,
	}))
}
