/*
Package mold binds flat request parameters into typed Go values and renders
Go values as JSON, XML or YAML views.

# Concept

A web form arrives as a map of dotted keys to strings: client.id=7,
client.address.city=Recife, client.phones[0].number=555. mold walks the
keys, creates the intermediate structs, maps and slices, and converts every
leaf with the converter bound to its exact type, honoring the locale of the
request ("1.234,5" is a number in pt-BR). Conversion failures never stop the
remaining parameters; they come back together, each with a message key that
the message catalog renders in the requested language.

The other direction takes a value and produces text. Primitive fields are
emitted by default; nested objects and collections only when included or
when the session is recursive. Fields can be skipped forever, or introduced
at a version and hidden from older clients.

# Usage

	m, err := mold.New(mold.WithRules(func(types *typedesc.Registry) error {
		types.For(Client{}).Skip("password").Since("email", 2)
		return nil
	}))
	if err != nil {
		log.Fatal(err)
	}

	var c Client
	if err := m.Bind("client", &c, params, language.BrazilianPortuguese); err != nil {
		for _, msg := range m.Localize(err, language.BrazilianPortuguese) {
			fmt.Println(msg.Category, msg.Text)
		}
	}

	out, err := m.From(&c).Include("address").Version(1).Serialize()

# Packages

  - typedesc: field names, kinds, skip and since rules, enums.
  - convert: the converter table and the built-in converters.
  - bind: nested binding and aggregated binding errors.
  - serialize: the JSON, XML and YAML writers and the fluent session.
  - message: localized message catalog.
  - metrics: Prometheus instruments.
  - adapters/http, adapters/redis: request parameters and message overrides.
*/
package mold
