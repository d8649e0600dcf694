package Models

import (
	"MindLine/Utils/Token"
	"errors"
	"fmt"
	"html"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username        string        `gorm:"size:255;not null;unique" json:"username"`
	Password        string        `gorm:"size:255;not null;" json:"password"`
	Permission      int           `json:"permission"`
	Tokens          []DeviceToken `gorm:"foreignKey:UserID"`
	IsFrozen        bool          `json:"is_frozen"`
	PracticeGroupID uint          `json:"practice_group_id"`
}

type DeviceToken struct {
	gorm.Model
	UserID uint
	Value  string `json:"value" gorm:"unique"`
}

type PracticeGroup struct {
	gorm.Model
	Name string `json:"name" gorm:"unique"`
}

func GetUserByID(uid uint) (User, error) {
	var user User

	if err := DB.First(&user, uid).Error; err != nil {
		return user, errors.New("User not found")
	}

	user.PrepareGive()

	return user, nil
}

func GetUserPracticeGroupID(uid uint) (uint, error) {
	var group_id uint
	if err := DB.Model(&User{}).Where("id = ?", uid).Select("practice_group_id").First(&group_id).Error; err != nil {
		return 0, errors.New("Practice group not found")
	}

	return group_id, nil
}

// GetGroupFCMsByID collects the device tokens of every user in the same
// practice group, deduplicated.
func GetGroupFCMsByID(uid uint) ([]string, error) {
	var user User
	if err := DB.First(&user, uid).Error; err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	var users []User
	if err := DB.Where("practice_group_id = ?", user.PracticeGroupID).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to find users in practice group: %w", err)
	}

	uniqueFCMs := make(map[string]struct{})

	for _, groupUser := range users {
		var tokens []DeviceToken
		if err := DB.Where("user_id = ?", groupUser.ID).Find(&tokens).Error; err != nil {
			return nil, fmt.Errorf("failed to find tokens for user %d: %w", groupUser.ID, err)
		}

		for _, token := range tokens {
			uniqueFCMs[token.Value] = struct{}{}
		}
	}

	var fcms []string
	for token := range uniqueFCMs {
		fcms = append(fcms, token)
	}

	return fcms, nil
}

func (user *User) PrepareGive() {
	user.Password = ""
}

func VerifyPassword(password, hashedPassword string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func LoginCheck(username string, password string) (uint, string, error) {
	var err error

	user := User{}

	err = DB.Model(User{}).Where("username = ?", username).Take(&user).Error

	if err != nil {
		return 0, "", err
	}

	err = VerifyPassword(password, user.Password)

	if err != nil && err == bcrypt.ErrMismatchedHashAndPassword {
		return 0, "", err
	}

	token, err := Token.GenerateToken(user.ID)

	if err != nil {
		return 0, "", err
	}

	return user.ID, token, nil
}

func (user *User) SaveUser() (*User, error) {
	if err := user.BeforeSave(); err != nil {
		return &User{}, err
	}

	if err := DB.Create(&user).Error; err != nil {
		return &User{}, err
	}

	return user, nil
}

func (user *User) BeforeSave() error {
	//turn password into hash
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashedPassword)

	//remove spaces in username
	user.Username = html.EscapeString(strings.TrimSpace(user.Username))

	return nil
}
