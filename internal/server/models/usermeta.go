package models

// SortColumn selects the ordering of a user listing.
type SortColumn string

const (
	SortByUserName  SortColumn = "username"
	SortByMetaState SortColumn = "meta_state"
)

// UserListOptions describes a page of users joined with one meta key.
//
// With SortByMetaState, users whose value is missing, empty or equal to
// DoneValue sort after the others (before them when Desc is set). Ties are
// ordered by username ascending.
type UserListOptions struct {
	MetaKey   string
	DoneValue string
	SortBy    SortColumn
	Desc      bool
	Limit     int
	Offset    int
}

// UserWithMeta is a user together with the value of the requested meta key.
// HasValue is false when the user has no such key.
type UserWithMeta struct {
	User     User
	Value    string
	HasValue bool
}
