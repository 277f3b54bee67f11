package seeders

import (
	"log"

	"gorm.io/gorm"

	catalogModel "lab-booking/models/catalog"
)

func strPtr(s string) *string { return &s }

// SeedTestCatalog inserts the reference categories and tests when the
// catalog is empty.
func SeedTestCatalog(db *gorm.DB) {
	log.Printf("🔍 Checking test catalog data integrity...")

	var count int64
	db.Model(&catalogModel.TestCategory{}).Count(&count)
	if count > 0 {
		log.Printf("✅ Test catalog already seeded (%d categories)", count)
		return
	}

	categories := []catalogModel.TestCategory{
		{Name: "Blood Tests", Description: strPtr("Complete blood analysis"), Icon: "opacity"},
		{Name: "Cardiac Tests", Description: strPtr("Heart health assessment"), Icon: "favorite"},
		{Name: "Diabetes Tests", Description: strPtr("Blood sugar evaluation"), Icon: "bloodtype"},
		{Name: "Thyroid Tests", Description: strPtr("Thyroid function analysis"), Icon: "health_and_safety"},
		{Name: "Vitamin Tests", Description: strPtr("Nutritional deficiency assessment"), Icon: "wb_sunny"},
	}

	for i := range categories {
		if err := db.Create(&categories[i]).Error; err != nil {
			log.Printf("❌ Failed to seed category %s: %v", categories[i].Name, err)
			return
		}
	}

	tests := []catalogModel.Test{
		{
			Name:                    "Complete Blood Count (CBC)",
			Description:             strPtr("Measures various components of blood including red cells, white cells, and platelets"),
			Price:                   1200,
			CategoryID:              categories[0].ID,
			PreparationInstructions: strPtr("No special preparation required. Fasting may be required for certain specific tests."),
		},
		{
			Name:                    "Lipid Profile",
			Description:             strPtr("Measures cholesterol levels including HDL, LDL, and triglycerides"),
			Price:                   1500,
			CategoryID:              categories[1].ID,
			PreparationInstructions: strPtr("Fast for 9-12 hours before the test. Water is allowed."),
		},
		{
			Name:                    "HbA1c",
			Description:             strPtr("Measures average blood glucose levels over the past 2-3 months"),
			Price:                   1300,
			CategoryID:              categories[2].ID,
			PreparationInstructions: strPtr("No special preparation required."),
		},
		{
			Name:                    "Thyroid Profile",
			Description:             strPtr("Measures thyroid hormone levels including TSH, T3, and T4"),
			Price:                   1800,
			CategoryID:              categories[3].ID,
			PreparationInstructions: strPtr("No special preparation required."),
		},
		{
			Name:                    "Vitamin D3",
			Description:             strPtr("Measures vitamin D levels in the blood"),
			Price:                   1600,
			CategoryID:              categories[4].ID,
			PreparationInstructions: strPtr("No special preparation required."),
		},
		{
			Name:                    "Vitamin B12",
			Description:             strPtr("Measures vitamin B12 levels in the blood"),
			Price:                   1400,
			CategoryID:              categories[4].ID,
			PreparationInstructions: strPtr("No special preparation required."),
		},
		{
			Name:                    "CRP (C-Reactive Protein)",
			Description:             strPtr("Measures inflammation levels in the body"),
			Price:                   1100,
			CategoryID:              categories[0].ID,
			PreparationInstructions: strPtr("No special preparation required."),
		},
	}

	for i := range tests {
		if err := db.Create(&tests[i]).Error; err != nil {
			log.Printf("❌ Failed to seed test %s: %v", tests[i].Name, err)
			return
		}
	}

	log.Printf("✅ Seeded %d categories and %d tests", len(categories), len(tests))
}
