package mold_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/aretw0/mold"
	"github.com/aretw0/mold/internal/sample"
	"github.com/aretw0/mold/pkg/bind"
	"github.com/aretw0/mold/pkg/convert"
	"github.com/aretw0/mold/pkg/message"
	"github.com/aretw0/mold/pkg/serialize"
	"github.com/aretw0/mold/pkg/typedesc"
)

func newMold(t *testing.T, opts ...mold.Option) *mold.Mold {
	t.Helper()
	m, err := mold.New(append([]mold.Option{mold.WithRules(sample.Register)}, opts...)...)
	require.NoError(t, err)
	return m
}

func TestMold_BindAndSerialize(t *testing.T) {
	m := newMold(t, mold.WithLocale(language.BrazilianPortuguese))

	var c sample.Client
	err := m.Bind("client", &c, bind.Params{
		"client.id":       {"7"},
		"client.name":     {"Ana"},
		"client.email":    {"ana@x.io"},
		"client.password": {"secret"},
		"client.balance":  {"1.000,25"},
		"client.birthday": {"04/03/2020"},
		"client.status":   {"BLOCKED"},
	}, language.Und)
	require.NoError(t, err)
	assert.Equal(t, 1000.25, c.Balance)
	assert.Equal(t, "secret", c.Password)

	out, err := m.From(&c).Serialize()
	require.NoError(t, err)
	assert.Equal(t,
		`{"client":{"id":7,"name":"Ana","email":"ana@x.io","status":"BLOCKED","birthday":"2020-03-04","balance":1000.25}}`,
		out)

	out, err = m.Serialize(&c, serialize.Options{RootName: serialize.RootNone, Version: 1, Versioned: true})
	require.NoError(t, err)
	assert.NotContains(t, out, "email")
	assert.NotContains(t, out, "password")
}

func TestMold_Localize(t *testing.T) {
	m := newMold(t)

	var c sample.Client
	err := m.Bind("client", &c, bind.Params{"client.id": {"x"}}, language.Und)
	require.Error(t, err)

	assert.Equal(t, []message.Message{
		{Category: "client.id", Text: "'x' is not a valid integer"},
	}, m.Localize(err, language.Und))
	assert.Equal(t, "'x' não é um número inteiro válido",
		m.Localize(err, language.BrazilianPortuguese)[0].Text)

	plain := m.Localize(errors.New("boom"), language.English)
	assert.Equal(t, []message.Message{{Text: "boom"}}, plain)
	assert.Nil(t, m.Localize(nil, language.English))
}

type upper string

func TestMold_WithConverter(t *testing.T) {
	conv := convert.Func(func(raw string, target reflect.Type, _ language.Tag) (reflect.Value, error) {
		return reflect.ValueOf(upper(strings.ToUpper(raw))).Convert(target), nil
	})
	m := newMold(t, mold.WithConverter(reflect.TypeOf(upper("")), conv))

	v, err := convert.To[upper](m.Converters(), "abc", language.English)
	require.NoError(t, err)
	assert.Equal(t, upper("ABC"), v)

	err = m.Converters().Register(reflect.TypeOf(upper("")), conv, convert.PriorityDefault)
	assert.ErrorIs(t, err, convert.ErrFrozen)
}

func TestMold_RuleFile(t *testing.T) {
	rules := strings.NewReader("types:\n  client:\n    skip: [balance]\n")
	m := newMold(t, mold.WithRuleFile(rules))

	out, err := m.From(&sample.Client{Name: "Ana", Balance: 3}).WithoutRoot().Serialize()
	require.NoError(t, err)
	assert.NotContains(t, out, "balance")

	_, err = mold.New(mold.WithRuleFile(strings.NewReader("types:\n  ghost:\n    skip: [x]\n")))
	assert.ErrorIs(t, err, typedesc.ErrUnknownType)
}

func TestMold_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newMold(t, mold.WithMetrics(reg))

	var c sample.Client
	require.NoError(t, m.Bind("client", &c, bind.Params{"client.name": {"a"}}, language.Und))
	_, err := m.From(&c).Serialize()
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(reg, "mold_bindings_total", "mold_serializations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
