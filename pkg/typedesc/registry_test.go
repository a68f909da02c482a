package typedesc

import (
	"math/big"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type status int

type address struct {
	Street string
	City   string `json:"town"`
}

type client struct {
	ID       *int64
	Age      int
	Name     string
	Password string
	Email    string
	Internal string `json:"-"`
	Status   status
	Since    time.Time
	Birthday Date
	Address  *address
	Tags     []string
	Attrs    map[string]string
	hidden   string
}

func TestRegistry_Describe(t *testing.T) {
	r := NewRegistry()
	desc := r.DescribeValue(&client{})

	assert.Equal(t, "client", desc.Name)

	names := make([]string, 0, len(desc.Fields))
	for _, f := range desc.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"id", "age", "name", "password", "email", "internal", "status", "since", "birthday", "address", "tags", "attrs"}, names)

	id, ok := desc.Field("id")
	require.True(t, ok)
	assert.True(t, id.Target.Nullable)
	assert.False(t, id.Target.Primitive)
	assert.Equal(t, KindInt, id.Target.Kind)

	age, ok := desc.Field("age")
	require.True(t, ok)
	assert.True(t, age.Target.Primitive)

	internal, ok := desc.Field("internal")
	require.True(t, ok)
	assert.Equal(t, SkipAlways, internal.Visibility)

	city, ok := r.Describe(reflect.TypeOf(address{})).Field("town")
	require.True(t, ok)
	assert.Equal(t, "City", city.GoName)

	// Go names match case-insensitively as a fallback.
	_, ok = desc.Field("PASSWORD")
	assert.True(t, ok)
}

func TestRegistry_KindOf(t *testing.T) {
	r := NewRegistry()
	tests := []struct {
		value any
		want  Kind
	}{
		{"", KindString},
		{true, KindBool},
		{int8(1), KindInt},
		{uint16(1), KindUint},
		{1.5, KindFloat},
		{big.Int{}, KindBigInt},
		{big.Float{}, KindBigFloat},
		{Char('x'), KindChar},
		{Date{}, KindDate},
		{TimeOfDay{}, KindTime},
		{time.Time{}, KindDateTime},
		{time.Second, KindDuration},
		{address{}, KindStruct},
		{[]int{}, KindSlice},
		{[2]int{}, KindSlice},
		{map[string]int{}, KindMap},
		{make(chan int), KindUnsupported},
		{status(0), KindInt},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.KindOf(reflect.TypeOf(tt.value)), "%T", tt.value)
	}
}

func TestRegistry_Target(t *testing.T) {
	r := NewRegistry()

	tg := r.Target(reflect.TypeOf([]*address{}))
	assert.Equal(t, KindSlice, tg.Kind)
	assert.True(t, tg.Nullable)
	require.NotNil(t, tg.Elem)
	assert.Equal(t, KindStruct, tg.Elem.Kind)
	assert.True(t, tg.Elem.Nullable)

	tg = r.Target(reflect.TypeOf(0))
	assert.True(t, tg.Primitive)
	assert.False(t, tg.Nullable)
}

func TestRules_SkipSinceRename(t *testing.T) {
	r := NewRegistry()
	before := r.DescribeValue(client{})
	pw, _ := before.Field("password")
	assert.Equal(t, Visible, pw.Visibility)

	r.For(client{}).
		Skip("password").
		Since("email", 2).
		Rename("Name", "fullName")

	desc := r.DescribeValue(client{})
	pw, _ = desc.Field("password")
	assert.Equal(t, SkipAlways, pw.Visibility)

	email, _ := desc.Field("email")
	assert.True(t, email.HasSince)
	assert.Equal(t, 2.0, email.Since)

	name, ok := desc.Field("fullName")
	require.True(t, ok)
	assert.Equal(t, "Name", name.GoName)
}

func TestRegistry_Enum(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, KindInt, r.KindOf(reflect.TypeOf(status(0))))

	require.NoError(t, r.Enum(status(0), "ACTIVE", "INACTIVE"))
	assert.Equal(t, KindEnum, r.KindOf(reflect.TypeOf(status(0))))

	// cached descriptions pick up the new classification
	f, _ := r.DescribeValue(client{}).Field("status")
	assert.Equal(t, KindEnum, f.Target.Kind)

	desc, ok := r.EnumFor(reflect.TypeOf(status(0)))
	require.True(t, ok)

	v, ok := desc.Parse("INACTIVE")
	require.True(t, ok)
	assert.Equal(t, status(1), v.Interface())

	v, ok = desc.Parse("active")
	require.True(t, ok)
	assert.Equal(t, status(0), v.Interface())

	_, ok = desc.Parse("GONE")
	assert.False(t, ok)

	name, ok := desc.NameOf(reflect.ValueOf(status(1)))
	require.True(t, ok)
	assert.Equal(t, "INACTIVE", name)

	_, ok = desc.NameOf(reflect.ValueOf(status(7)))
	assert.False(t, ok)

	assert.Error(t, r.Enum(1.5, "A"))
	assert.Error(t, r.Enum(status(0)))
	assert.Error(t, r.Enum(status(0), "A", "A"))
}

func TestRegistry_LoadRules(t *testing.T) {
	r := NewRegistry()
	r.Name("client", client{})
	r.Name("status", status(0))

	err := r.LoadRules(strings.NewReader(`
types:
  client:
    skip: [password]
    since:
      email: 1.5
    rename:
      Name: fullName
enums:
  status: [ON, OFF]
`))
	require.NoError(t, err)

	desc := r.DescribeValue(client{})
	pw, _ := desc.Field("password")
	assert.Equal(t, SkipAlways, pw.Visibility)
	email, _ := desc.Field("email")
	assert.Equal(t, 1.5, email.Since)
	_, ok := desc.Field("fullName")
	assert.True(t, ok)
	assert.Equal(t, KindEnum, r.KindOf(reflect.TypeOf(status(0))))

	err = r.LoadRules(strings.NewReader("types:\n  nobody:\n    skip: [x]\n"))
	assert.ErrorIs(t, err, ErrUnknownType)

	err = r.LoadRules(strings.NewReader("typo: {}\n"))
	assert.Error(t, err)

	assert.NoError(t, r.LoadRules(strings.NewReader("")))
}

func TestOpenAPISchema(t *testing.T) {
	r := NewRegistry()
	r.For(client{}).Skip("password").Since("email", 2)
	require.NoError(t, r.Enum(status(0), "ACTIVE", "INACTIVE"))

	s := r.OpenAPISchema(reflect.TypeOf(client{}), 0, false)
	assert.Equal(t, "client", s.Title)
	assert.NotContains(t, s.Properties, "password")
	assert.NotContains(t, s.Properties, "internal")
	require.Contains(t, s.Properties, "email")
	assert.Equal(t, 2.0, s.Properties["email"].Value.Extensions["x-since"])
	assert.Len(t, s.Properties["status"].Value.Enum, 2)
	assert.Equal(t, "date", s.Properties["birthday"].Value.Format)
	assert.True(t, s.Properties["address"].Value.Nullable)

	versioned := r.OpenAPISchema(reflect.TypeOf(client{}), 1, true)
	assert.NotContains(t, versioned.Properties, "email")
}

func TestLowerCamel(t *testing.T) {
	tests := map[string]string{
		"ID":      "id",
		"Name":    "name",
		"URLPath": "urlPath",
		"already": "already",
		"X":       "x",
	}
	for in, want := range tests {
		assert.Equal(t, want, lowerCamel(in), in)
	}
}

func TestIsIdentifier(t *testing.T) {
	assert.True(t, IsIdentifier("client"))
	assert.True(t, IsIdentifier("_x1"))
	assert.False(t, IsIdentifier(""))
	assert.False(t, IsIdentifier("1x"))
	assert.False(t, IsIdentifier("a-b"))
}
