package catalog

import (
	"gorm.io/datatypes"
)

// Test represents a diagnostic test offering. Price is stored in minor
// currency units as a plain integer.
type Test struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"type:varchar(255);not null" json:"name"`
	Description *string `gorm:"type:text" json:"description,omitempty"`
	Price       int     `gorm:"not null" json:"price"`

	// Foreign key for category relationship
	CategoryID uint         `gorm:"not null;index" json:"category_id"`
	Category   TestCategory `gorm:"foreignKey:CategoryID" json:"-"`

	PreparationInstructions *string        `gorm:"type:text" json:"preparation_instructions,omitempty"`
	ReportTemplate          datatypes.JSON `gorm:"type:json" json:"report_template,omitempty"`
}

// TableName sets the table name for the Test model
func (Test) TableName() string {
	return "tests"
}
