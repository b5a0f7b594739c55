package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Table is a dining table. Number is the label printed on the table and is
// unique. UserID links the table's own login when one exists.
type Table struct {
	ID        uint64    `json:"id"`                // tables.id
	Number    string    `json:"number"`            // tables.number
	Seats     int       `json:"seats"`             // tables.seats (1..20)
	UserID    *uint64   `json:"user_id,omitempty"` // tables.user_id (nullable)
	Occupied  bool      `json:"occupied"`          // tables.occupied
	CreatedAt time.Time `json:"created_at"`        // tables.created_at
}

const (
	MinTableSeats     = 1
	MaxTableSeats     = 20
	DefaultTableSeats = 4
)

// Category groups dishes on the menu.
type Category struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// DishKind is the menu section a dish belongs to.
type DishKind string

const (
	DishStarter DishKind = "entree"
	DishMain    DishKind = "main"
	DishSpecial DishKind = "special"
	DishDessert DishKind = "dessert"
	DishDrink   DishKind = "drink"
	DishSide    DishKind = "side"
)

func (k DishKind) Valid() bool {
	switch k {
	case DishStarter, DishMain, DishSpecial, DishDessert, DishDrink, DishSide:
		return true
	}
	return false
}

// MinDishPrice is the smallest accepted unit price.
var MinDishPrice = decimal.RequireFromString("0.01")

// Dish is a menu item.
type Dish struct {
	ID                  uint64          `json:"id"`
	Name                string          `json:"name"`
	Description         string          `json:"description,omitempty"`
	Price               decimal.Decimal `json:"price"`
	Kind                DishKind        `json:"kind"`
	Available           bool            `json:"available"`
	CategoryID          *uint64         `json:"category_id,omitempty"`
	RequiresPreparation bool            `json:"requires_preparation"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}
