package models

import "gorm.io/gorm"

// Locations an insurance product can be sold in. Any other value is
// rejected before it reaches the store.
const (
	LocationWestMalaysia = "West Malaysia"
	LocationEastMalaysia = "East Malaysia"
)

// IsValidLocation reports whether location belongs to the allowed set.
func IsValidLocation(location string) bool {
	return location == LocationWestMalaysia || location == LocationEastMalaysia
}

// Product represents an insurance product record. ProductCode alone is not
// unique; the composite (productCode, location) is, and the unique index is
// the authoritative guard against duplicates.
type Product struct {
	ID          string  `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	ProductCode int     `json:"productCode" gorm:"column:productCode;uniqueIndex:ux_product_code_location" validate:"required,gt=0"`
	ProductDesc string  `json:"productDesc" gorm:"column:productDesc;type:varchar(255)" validate:"omitempty,max=255"`
	Location    string  `json:"location" gorm:"column:location;type:varchar(255);uniqueIndex:ux_product_code_location" validate:"required"`
	Price       float64 `json:"price" gorm:"column:price;type:decimal(10,2)" validate:"required,gt=0"`
	gorm.Model          // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// TableName keeps the legacy table name the schema was created with.
func (Product) TableName() string {
	return "PRODUCT"
}
