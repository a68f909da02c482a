// Package convert turns raw request strings into typed Go values.
//
// A Registry binds one active Converter to each concrete type. Built-in
// converters cover integers, floats, big numbers, booleans, strings,
// characters, dates, times, datetimes, durations and declared enums. Custom
// converters are bound with Register or Override:
//
//	reg := convert.NewRegistry(types)
//	reg.Override(reflect.TypeOf(Money{}), moneyConverter)
//	reg.Freeze()
//
// Converters for a type never serve other types, not even named types with
// the same underlying kind; bind those explicitly:
//
//	reg.Register(reflect.TypeOf(Age(0)), convert.Integer, convert.PriorityDefault)
//
// Numbers and dates are parsed with the grammar of the request locale. A
// value that does not parse yields *InvalidFormat carrying one of the Key*
// message keys and the raw input.
package convert
