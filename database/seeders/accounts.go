package seeders

import (
	"log"
	"os"

	"gorm.io/gorm"

	userModel "lab-booking/models/user"
	"lab-booking/utils"
)

// SeedPrivilegedAccounts inserts the admin and superadmin accounts when no
// privileged account exists. These are the only accounts that ever hold an
// administrative role.
func SeedPrivilegedAccounts(db *gorm.DB) {
	log.Printf("🔍 Checking privileged accounts...")

	var count int64
	db.Model(&userModel.User{}).
		Where("role IN ?", []string{userModel.RoleAdmin, userModel.RoleSuperAdmin}).
		Count(&count)
	if count > 0 {
		log.Printf("✅ Privileged accounts already seeded")
		return
	}

	adminPassword := os.Getenv("ADMIN_SEED_PASSWORD")
	if adminPassword == "" {
		adminPassword = "changeme123"
	}

	hash, err := utils.HashPassword(adminPassword)
	if err != nil {
		log.Printf("❌ Failed to hash seed password: %v", err)
		return
	}

	accounts := []userModel.User{
		{
			Username: "admin",
			Password: hash,
			FullName: "Lab Administrator",
			Email:    "admin@lab.local",
			Role:     userModel.RoleAdmin,
		},
		{
			Username: "superadmin",
			Password: hash,
			FullName: "Lab Super Administrator",
			Email:    "superadmin@lab.local",
			Role:     userModel.RoleSuperAdmin,
		},
	}

	for i := range accounts {
		if err := db.Create(&accounts[i]).Error; err != nil {
			log.Printf("❌ Failed to seed account %s: %v", accounts[i].Username, err)
			return
		}
	}

	log.Printf("✅ Seeded privileged accounts")
}
