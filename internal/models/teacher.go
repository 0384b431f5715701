package models

// Teacher is the directory view of an instructor. The scheduler never writes it.
type Teacher struct {
	ID       string `db:"id" json:"id"`
	FullName string `db:"full_name" json:"fullName"`
	Active   bool   `db:"active" json:"active"`
}
