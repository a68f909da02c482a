// Package bind writes flat request parameters into typed object graphs.
//
// Keys are dotted paths rooted at a name, usually the lowercased type name:
//
//	var c Client
//	err := binder.Bind("client", &c, bind.Params{
//		"client.id":               {"10"},
//		"client.address.street":   {"Main St"},
//		"client.phones[1].number": {"555"},
//	}, language.English)
//
// Intermediate pointers, maps and slices are created on demand. Every
// parameter is converted through a convert.Registry; failures are collected
// per key in *Errors and can be rendered with a message.Bundle.
package bind
