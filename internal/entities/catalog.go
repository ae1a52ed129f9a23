package entities

import (
	"time"
)

type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"index;size:256" json:"name"`
	Description string    `gorm:"size:2048" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Product is a storefront item. CategoryID may point at a category that no
// longer exists; deleting a category does not cascade and the dangling
// reference is kept as-is. Category is nil in that case.
type Product struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"index;size:512" json:"name"`
	Price      float64   `json:"price"`
	Image      string    `gorm:"size:1024" json:"image,omitempty"` // public path under /images
	CategoryID uint      `gorm:"index" json:"category_id"`
	Category   *Category `gorm:"foreignKey:CategoryID;constraint:-" json:"category,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
