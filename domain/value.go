package domain

import "fmt"

// AddressType classifies an Address.
type AddressType string

const (
	AddressTypeHome         AddressType = "home"
	AddressTypeWork         AddressType = "work"
	AddressTypeBilling      AddressType = "billing"
	AddressTypeShipping     AddressType = "shipping"
	AddressTypeHeadquarters AddressType = "headquarters"
)

// Address is a postal location. It has no identity of its own.
type Address struct {
	PostalCode  string      `bun:"postal_code"  json:"postal_code"         yaml:"postal_code"  validate:"omitempty,max=16"`
	AddressType AddressType `bun:"address_type" json:"address_type"        yaml:"address_type" validate:"omitempty,oneof=home work billing shipping headquarters"`
	Latitude    *float64    `bun:"latitude"     json:"latitude,omitempty"  yaml:"latitude"     validate:"omitempty,latitude"`
	Longitude   *float64    `bun:"longitude"    json:"longitude,omitempty" yaml:"longitude"    validate:"omitempty,longitude"`
}

// HasCoordinates reports whether both coordinates are set.
func (a Address) HasCoordinates() bool {
	return a.Latitude != nil && a.Longitude != nil
}

const defaultPhoneCodeSymbol = "+"

// PhoneCode is an international dialling prefix, e.g. "+998".
type PhoneCode struct {
	Code   string `bun:"code"   json:"code"   yaml:"code"   validate:"omitempty,phone_code"`
	Symbol string `bun:"symbol" json:"symbol" yaml:"symbol" validate:"omitempty,max=2"`
}

// NewPhoneCode returns a PhoneCode with the default "+" symbol.
func NewPhoneCode(code string) PhoneCode {
	return PhoneCode{Code: code, Symbol: defaultPhoneCodeSymbol}
}

// FullCode returns the symbol followed by the code.
func (p PhoneCode) FullCode() string {
	symbol := p.Symbol
	if symbol == "" {
		symbol = defaultPhoneCodeSymbol
	}
	return fmt.Sprintf("%s%s", symbol, p.Code)
}
