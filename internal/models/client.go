package models

import "time"

// Client is a customer account. Each client is attended by one vendor.
type Client struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RUT          string    `gorm:"column:rut;size:20;index" json:"rut"`
	BusinessName string    `gorm:"size:200;not null" json:"business_name"`
	TradeName    string    `gorm:"size:200" json:"trade_name"`
	VendorID     *uint     `gorm:"index" json:"vendor_id"`
	Active       bool      `gorm:"not null;index" json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Vendor *User `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
}

// TableName specifies the table name for Client
func (Client) TableName() string {
	return "clients"
}
