package entity

import "fmt"

// Address is a postal address
type Address struct {
	Street  string `json:"street"`
	HouseNr int    `json:"house_nr"`
	City    string `json:"city"`
}

// NewAddress creates a new address
func NewAddress(street string, houseNr int, city string) Address {
	return Address{Street: street, HouseNr: houseNr, City: city}
}

func (a Address) String() string {
	return fmt.Sprintf("%s %d, %s", a.Street, a.HouseNr, a.City)
}
