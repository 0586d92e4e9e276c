package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:255;not null;unique" json:"username"`
	Email     string    `gorm:"size:255;not null;unique" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeSave hashes the password before saving to the database
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u.Password = string(hashedPassword)
	}
	return nil
}

// AfterCreate provisions the records every account starts with: an empty
// profile and an empty friend list. Runs inside the user-creation
// transaction, so a new user is never visible without them. Idempotent,
// since association upserts re-run create hooks on existing users.
func (u *User) AfterCreate(tx *gorm.DB) error {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&UserProfile{UserID: u.ID}).Error; err != nil {
		return err
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&Friend{UserID: u.ID}).Error
}

// ValidatePassword checks if the provided password matches the stored hash
func (u *User) ValidatePassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
}

type UserProfile struct {
	UserID       uint       `gorm:"primaryKey" json:"user_id"`
	User         User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Gender       string     `gorm:"size:1" json:"gender,omitempty"`
	ProfileImage string     `gorm:"size:512" json:"profile_image,omitempty"`
	Birthdate    *time.Time `json:"birthdate,omitempty"`
	Bio          string     `gorm:"type:text" json:"bio,omitempty"`
}
