package message

import (
	"strings"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

type keyedErr struct{ raw string }

func (e keyedErr) Error() string      { return "keyed: " + e.raw }
func (e keyedErr) MessageKey() string { return "is_not_a_valid_integer" }
func (e keyedErr) MessageArgs() []any { return []any{e.raw} }

func TestCatalog_Defaults(t *testing.T) {
	c, err := NewCatalog()
	require.NoError(t, err)

	assert.Equal(t, "'abc' is not a valid integer", c.MessageFor(language.English, "is_not_a_valid_integer", "abc"))
	assert.Equal(t, "'abc' is not a valid integer", c.MessageFor(language.AmericanEnglish, "is_not_a_valid_integer", "abc"))
	assert.Equal(t, "'abc' não é um número inteiro válido", c.MessageFor(language.BrazilianPortuguese, "is_not_a_valid_integer", "abc"))
	assert.ElementsMatch(t, []language.Tag{language.English, language.BrazilianPortuguese}, c.Languages())
}

func TestCatalog_EveryKeyTranslated(t *testing.T) {
	c, err := NewCatalog()
	require.NoError(t, err)

	keys := []string{
		"is_not_a_valid_number", "is_not_a_valid_integer", "is_not_a_valid_character",
		"is_not_a_valid_enum_value", "is_not_a_valid_date", "is_not_a_valid_boolean",
		"is_not_a_valid_time", "is_not_a_valid_datetime", "cannot_instantiate",
	}
	for _, key := range keys {
		en := c.MessageFor(language.English, key, "x")
		br := c.MessageFor(language.BrazilianPortuguese, key, "x")
		assert.Contains(t, en, "'x'", key)
		assert.Contains(t, br, "'x'", key)
		assert.NotEqual(t, en, br, key)
	}
}

func TestCatalog_FallbackAndUnknown(t *testing.T) {
	c, err := NewCatalog()
	require.NoError(t, err)

	// unsupported locale uses the fallback language
	assert.Equal(t, "'1' is not a valid date", c.MessageFor(language.Japanese, "is_not_a_valid_date", "1"))
	assert.Equal(t, "no_such_key", c.MessageFor(language.English, "no_such_key", "1"))

	// a key only present in English serves Portuguese requests too
	require.NoError(t, c.Set(language.English, "custom", "custom %s"))
	assert.Equal(t, "custom v", c.MessageFor(language.BrazilianPortuguese, "custom", "v"))
}

func TestCatalog_LoadOverrides(t *testing.T) {
	c, err := NewCatalog()
	require.NoError(t, err)

	err = c.Load(language.BrazilianPortuguese, strings.NewReader("is_not_a_valid_integer: \"%s: inteiro inválido\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "abc: inteiro inválido", c.MessageFor(language.BrazilianPortuguese, "is_not_a_valid_integer", "abc"))

	require.NoError(t, c.Load(language.English, strings.NewReader("")))
	assert.Error(t, c.Load(language.English, strings.NewReader("- not\n- a map\n")))
	assert.Error(t, c.Set(language.English, "", "x"))
}

func TestCatalog_NewLocale(t *testing.T) {
	c, err := NewCatalog()
	require.NoError(t, err)

	require.NoError(t, c.Set(language.German, "is_not_a_valid_integer", "'%s' ist keine gültige Ganzzahl"))
	assert.Equal(t, "'x' ist keine gültige Ganzzahl", c.MessageFor(language.German, "is_not_a_valid_integer", "x"))
	assert.Equal(t, "'x' is not a valid number", c.MessageFor(language.German, "is_not_a_valid_number", "x"))
}

func TestCatalog_ConcurrentLookups(t *testing.T) {
	c, err := NewCatalog()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				assert.Equal(t, "'x' is not a valid integer", c.MessageFor(language.English, "is_not_a_valid_integer", "x"))
				c.MessageFor(language.German, "is_not_a_valid_integer", "x")
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, c.Set(language.German, "is_not_a_valid_integer", "'%s' ist keine gültige Ganzzahl"))
	}()
	wg.Wait()

	assert.Equal(t, "'x' ist keine gültige Ganzzahl", c.MessageFor(language.German, "is_not_a_valid_integer", "x"))
}

func TestText(t *testing.T) {
	c, err := NewCatalog()
	require.NoError(t, err)

	wrapped := errors.Wrap(keyedErr{raw: "abc"}, "binding")
	assert.Equal(t, "'abc' is not a valid integer", Text(c, language.English, wrapped))
	assert.Equal(t, "plain", Text(c, language.English, errors.New("plain")))
	assert.Equal(t, "keyed: abc", Text(nil, language.English, keyedErr{raw: "abc"}))
}
