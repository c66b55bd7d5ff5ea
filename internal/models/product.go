package models

import "gorm.io/gorm"

// Product is an entry in a vendor's catalog; bids select from it.
type Product struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	VendorID   string `json:"vendor_id" gorm:"type:varchar(36);index" validate:"required"`
	Name       string `json:"name" validate:"required,min=1,max=100"`
	Price      int64  `json:"price" validate:"required,gt=0"`
	Stock      int    `json:"stock" validate:"gte=0"`
	gorm.Model `json:"-"`
}
