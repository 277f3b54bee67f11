package catalog

// TestCategory groups diagnostic tests for browsing.
type TestCategory struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"type:varchar(255);not null" json:"name"`
	Description *string `gorm:"type:text" json:"description,omitempty"`
	Icon        string  `gorm:"type:varchar(100);default:science" json:"icon"`
}

// TableName sets the table name for the TestCategory model
func (TestCategory) TableName() string {
	return "test_categories"
}
