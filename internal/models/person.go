package models

import (
	"encoding/xml"
	"time"
)

// Person represents a stored person. ID and CreatedAt are assigned by the server.
type Person struct {
	ID        int64     `json:"id,omitempty" xml:"id,omitempty"`
	Firstname string    `json:"firstname" xml:"firstname"`
	Lastname  string    `json:"lastname" xml:"lastname"`
	Email     *string   `json:"email,omitempty" xml:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt" xml:"createdAt"`
}

// NewPerson creates a Person that has not been persisted yet, stamped with the creation time
func NewPerson(firstname, lastname string, email *string) *Person {
	return &Person{
		Firstname: firstname,
		Lastname:  lastname,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
}

// ApplyPatch copies the editable fields from patch. ID and CreatedAt are left untouched.
func (p *Person) ApplyPatch(patch *Person) {
	p.Firstname = patch.Firstname
	p.Lastname = patch.Lastname
	p.Email = patch.Email
}

// PersonList is the XML document root for a list of persons
type PersonList struct {
	XMLName xml.Name  `xml:"persons"`
	Persons []*Person `xml:"person"`
}

// NewPersonList wraps persons for XML rendering
func NewPersonList(persons []*Person) PersonList {
	return PersonList{Persons: persons}
}
