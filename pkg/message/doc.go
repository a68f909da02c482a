// Package message renders message keys into localized text.
//
// Conversion and binding failures carry a message key and the offending raw
// value. A Bundle turns them into text for a locale:
//
//	cat, _ := message.NewCatalog()
//	cat.MessageFor(language.BrazilianPortuguese, "is_not_a_valid_integer", "abc")
//	// 'abc' não é um número inteiro válido
//
// The Catalog ships English and Brazilian Portuguese texts and accepts
// overrides through Set and Load.
package message
