package model

import "time"

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Container is a physical place items are kept in (shelf, box, room).
type Container struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CategoryID  *string   `json:"category_id,omitempty"`
	ContainerID *string   `json:"container_id,omitempty"`
	Quantity    int       `json:"quantity"`
	MinQuantity int       `json:"min_quantity"`
	PhotoKey    string    `json:"photo_key,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LowStock reports whether the item is at or below its reorder threshold.
func (i Item) LowStock() bool {
	return i.MinQuantity > 0 && i.Quantity <= i.MinQuantity
}

type ItemPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	CategoryID  *string `json:"category_id,omitempty"`
	ContainerID *string `json:"container_id,omitempty"`
	MinQuantity *int    `json:"min_quantity,omitempty"`
}

// Apply copies the set fields onto it. An empty category or container id clears the reference.
func (p ItemPatch) Apply(it *Item) {
	if p.Name != nil {
		it.Name = *p.Name
	}
	if p.Description != nil {
		it.Description = *p.Description
	}
	if p.CategoryID != nil {
		it.CategoryID = emptyToNil(*p.CategoryID)
	}
	if p.ContainerID != nil {
		it.ContainerID = emptyToNil(*p.ContainerID)
	}
	if p.MinQuantity != nil {
		it.MinQuantity = *p.MinQuantity
	}
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ItemFilter narrows item listings. Zero values mean no filter.
type ItemFilter struct {
	CategoryID  string
	ContainerID string
	Query       string
	LowStock    bool
}

// Adjustment records one quantity change of an item.
type Adjustment struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	Delta     int       `json:"delta"`
	Note      string    `json:"note"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
