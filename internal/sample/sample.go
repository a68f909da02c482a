// Package sample holds the demo types behind the mold command and the HTTP
// playground.
package sample

import (
	"github.com/aretw0/mold/pkg/typedesc"
)

type Status int

const (
	Active Status = iota
	Blocked
	Closed
)

type Phone struct {
	Number string
	Kind   string
}

type Address struct {
	Street string
	City   string
	Zip    string `json:"zip"`
}

type Client struct {
	ID       int64
	Name     string
	Email    string
	Password string
	Status   Status
	Birthday typedesc.Date
	Balance  float64
	Address  *Address
	Phones   []Phone
	Tags     []string
}

// Register names the sample types, declares the Status enum and sets the
// client rules: the password is never serialized and the email appears from
// version 2 on.
func Register(types *typedesc.Registry) error {
	types.Name("client", Client{})
	types.Name("address", Address{})
	types.Name("phone", Phone{})
	if err := types.Enum(Active, "ACTIVE", "BLOCKED", "CLOSED"); err != nil {
		return err
	}
	types.For(Client{}).Skip("password").Since("email", 2)
	return nil
}
