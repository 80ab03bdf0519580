package domain

import (
	"time"

	"gorm.io/datatypes"
)

// CREATE TABLE public.products (
//     id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//     vendor_id       UUID,
//     category_id     UUID REFERENCES categories(id),
//     name            TEXT NOT NULL,
//     description     TEXT,
//     price           NUMERIC NOT NULL DEFAULT 0,
//     original_price  NUMERIC,
//     images          JSONB DEFAULT '[]',
//     tags            JSONB DEFAULT '[]',
//     rating          NUMERIC DEFAULT 0,
//     reviews_count   INTEGER DEFAULT 0,
//     stock           INTEGER DEFAULT 0,
//     is_active       BOOLEAN DEFAULT TRUE,
//     created_at      TIMESTAMPTZ DEFAULT NOW(),
//     updated_at      TIMESTAMPTZ DEFAULT NOW()
// );

type Product struct {
	ID            string                      `gorm:"primaryKey;column:id;type:uuid" json:"id"`
	VendorID      *string                     `gorm:"column:vendor_id;type:uuid" json:"vendor_id,omitempty"`
	CategoryID    *string                     `gorm:"column:category_id;type:uuid" json:"category_id,omitempty"`
	Name          string                      `gorm:"column:name;type:text;not null" json:"name"`
	Description   string                      `gorm:"column:description;type:text" json:"description"`
	Price         float64                     `gorm:"column:price;type:numeric;default:0" json:"price"`
	OriginalPrice *float64                    `gorm:"column:original_price;type:numeric" json:"original_price,omitempty"`
	Images        datatypes.JSONSlice[string] `gorm:"column:images;type:jsonb" json:"images"`
	Tags          datatypes.JSONSlice[string] `gorm:"column:tags;type:jsonb" json:"tags"`
	Rating        float64                     `gorm:"column:rating;type:numeric;default:0" json:"rating"`
	ReviewCount   int                         `gorm:"column:reviews_count;default:0" json:"reviews_count"`
	Stock         int                         `gorm:"column:stock;default:0" json:"stock"`
	IsActive      bool                        `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt     time.Time                   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time                   `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// Category returns the category id, or "" when the product is uncategorised.
func (p Product) Category() string {
	if p.CategoryID == nil {
		return ""
	}
	return *p.CategoryID
}

// HasCategory reports whether the product carries a non-empty category id.
func (p Product) HasCategory() bool {
	return p.Category() != ""
}
