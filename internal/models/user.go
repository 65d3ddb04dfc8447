package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleCaregiver Role = "caregiver"
	RolePatient   Role = "patient"
)

// Gender enum shared by users and patients.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// User represents an account that can sign in.
type User struct {
	BaseModel
	Email           string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password        string `gorm:"size:255;not null" json:"-"`
	Name            string `gorm:"size:150" json:"name"`
	Role            Role   `gorm:"size:20;default:'caregiver'" json:"role"`
	Age             *int   `json:"age,omitempty"`
	Gender          Gender `gorm:"size:10" json:"gender,omitempty"`
	Condition       string `gorm:"size:255" json:"condition,omitempty"`
	CaregiverPhone  string `gorm:"size:32" json:"caregiverPhone,omitempty"`
	ProfileComplete bool   `gorm:"default:false" json:"profileComplete"`

	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	Role            Role      `json:"role"`
	Age             *int      `json:"age,omitempty"`
	Gender          Gender    `json:"gender,omitempty"`
	Condition       string    `json:"condition,omitempty"`
	CaregiverPhone  string    `json:"caregiverPhone,omitempty"`
	ProfileComplete bool      `json:"profileComplete"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:              u.ID,
		Email:           u.Email,
		Name:            u.Name,
		Role:            u.Role,
		Age:             u.Age,
		Gender:          u.Gender,
		Condition:       u.Condition,
		CaregiverPhone:  u.CaregiverPhone,
		ProfileComplete: u.ProfileComplete,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}
