package Models

import (
	"fmt"
	"log"

	"MindLine/Config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func PracticeGroupExists(id uint) (bool, error) {
	var count int64
	err := DB.Model(&PracticeGroup{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func ConnectDataBase(cfg *Config.Config) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.Database.Host, cfg.Database.User, cfg.Database.Password, cfg.Database.Name, cfg.Database.Port)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		fmt.Println("Cannot connect to database ")
		log.Fatal("connection error:", err)
	} else {
		fmt.Println("We are connected to the database ")
	}

	// First migrate models with no dependencies
	DB.AutoMigrate(&PracticeGroup{})
	DB.AutoMigrate(&DeviceToken{})

	// Then migrate models that depend on the above
	DB.AutoMigrate(&User{})
	DB.AutoMigrate(&Patient{})
	DB.AutoMigrate(&Provider{})

	// Then migrate models that depend on the previous ones
	DB.AutoMigrate(&AppointmentSlot{})
	DB.AutoMigrate(&WaitlistEntry{})
	DB.AutoMigrate(&Appointment{})

	// Finally the notification job tables
	DB.AutoMigrate(&NotificationJob{})
	DB.AutoMigrate(&NotificationRecipient{})

	DB.Session(&gorm.Session{FullSaveAssociations: true})
}
