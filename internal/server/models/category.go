package models

// Category groups recipes. Name is unique.
type Category struct {
	ID   string
	Name string
}
