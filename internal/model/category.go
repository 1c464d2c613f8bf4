package model

import "time"

// CategoryCreditCardPayment is the reserved category name that designates an
// expense whose purpose is paying down a credit card.
const CategoryCreditCardPayment = "Credit Card Payment"

// Category represents an expense category. Names are unique
// case-insensitively.
type Category struct {
	CreatedAt time.Time `json:"createdAt"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon"`
	ID        int64     `json:"id"`
	IsDefault bool      `json:"isDefault"`
}

// DefaultCategories are seeded into a fresh database.
var DefaultCategories = []Category{
	{Name: "Housing", Color: "#4ECDC4", Icon: "home", IsDefault: true},
	{Name: "Utilities", Color: "#FFE66D", Icon: "bolt", IsDefault: true},
	{Name: "Insurance", Color: "#95E1D3", Icon: "shield", IsDefault: true},
	{Name: "Transportation", Color: "#F38181", Icon: "car", IsDefault: true},
	{Name: "Subscriptions", Color: "#AA96DA", Icon: "repeat", IsDefault: true},
	{Name: CategoryCreditCardPayment, Color: "#FF6B6B", Icon: "credit-card", IsDefault: true},
	{Name: "Debt", Color: "#FCBAD3", Icon: "trending-down", IsDefault: true},
	{Name: "Healthcare", Color: "#A8D8EA", Icon: "heart", IsDefault: true},
	{Name: "Education", Color: "#FFFFD2", Icon: "book", IsDefault: true},
	{Name: "Other", Color: "#666666", Icon: "circle", IsDefault: true},
}
