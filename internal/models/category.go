package models

import "strings"

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Category represents a transaction category. NameKey is the normalized
// name backing the case-insensitive per-user unique index.
type Category struct {
	Base
	UserID  string       `gorm:"type:uuid;not null;uniqueIndex:idx_categories_user_name" json:"user_id"`
	Name    string       `gorm:"not null" json:"name"`
	NameKey string       `gorm:"not null;uniqueIndex:idx_categories_user_name" json:"-"`
	Type    CategoryType `gorm:"not null" json:"type"`
}

// OwnerID implements Owned.
func (c *Category) OwnerID() string { return c.UserID }

// CategoryNameKey normalizes a category name for uniqueness comparisons.
func CategoryNameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
