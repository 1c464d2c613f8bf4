package model

import "time"

// UserPreference stores one component's preference blob, keyed by component
// name and written atomically with the rest of the store.
type UserPreference struct {
	UpdatedAt time.Time `json:"updatedAt"`
	Component string    `json:"component"`
	Data      string    `json:"data"`
}
