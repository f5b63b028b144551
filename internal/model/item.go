package model

// Item is the domain model for a todo entry.
// ID is assigned by the database and never changes; Finished is the only
// field that is mutated after creation.
type Item struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Finished bool   `json:"finished"`
}
