package model

// Person is a known author or subscriber.
type Person struct {
	ID   int64
	Name string

	// PrimaryAliasID is the alias used when creating new follow records.
	PrimaryAliasID int64
}

// PersonAlias is one access identity of a person. A person may hold several
// aliases; exactly one is primary.
type PersonAlias struct {
	ID        int64
	PersonID  int64
	IsPrimary bool
}
