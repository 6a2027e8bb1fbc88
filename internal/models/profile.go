package models

import (
	"strings"
	"time"
)

// DefaultProfile is used when a caller does not name a profile.
const DefaultProfile = "default"

// MaxProfileNameLength bounds profile names.
const MaxProfileNameLength = 64

// ProfileSettings stores one named profile's background settings.
// Local images live in their own table and are attached on read.
type ProfileSettings struct {
	BaseModel
	Name     string             `gorm:"size:64;not null;uniqueIndex" json:"name"`
	Settings BackgroundSettings `gorm:"serializer:json;type:text" json:"settings"`
}

// TableName returns the table name for ProfileSettings.
func (ProfileSettings) TableName() string {
	return "profile_settings"
}

// Validate checks the profile row before it is written.
func (p *ProfileSettings) Validate() error {
	return ValidateProfileName(p.Name)
}

// ValidateProfileName checks a profile name used in routes and rows.
func ValidateProfileName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ValidationError{Field: "profile", Message: "is required"}
	}
	if len(name) > MaxProfileNameLength {
		return ValidationError{Field: "profile", Message: "is too long"}
	}
	if strings.ContainsAny(name, "/\\ ") {
		return ValidationError{Field: "profile", Message: "must not contain slashes or spaces"}
	}
	return nil
}

// LocalImageRecord is a stored upload belonging to a profile.
type LocalImageRecord struct {
	BaseModel
	Profile  string `gorm:"size:64;not null;index" json:"profile"`
	Name     string `gorm:"size:255;not null" json:"name"`
	Data     string `gorm:"type:text;not null" json:"-"`
	Size     int64  `gorm:"not null" json:"size"`
	MimeType string `gorm:"size:64;not null" json:"mime_type"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// TableName returns the table name for LocalImageRecord.
func (LocalImageRecord) TableName() string {
	return "local_images"
}

// ToLocalImage converts the row into the settings representation.
func (r *LocalImageRecord) ToLocalImage() LocalImage {
	return LocalImage{
		ID:   r.ID.String(),
		Name: r.Name,
		Data: r.Data,
		Size: r.Size,
		Type: r.MimeType,
	}
}

// WallpaperHistory records a remote image applied to a profile.
type WallpaperHistory struct {
	BaseModel
	Profile   string          `gorm:"size:64;not null;index:idx_history_profile_applied" json:"profile"`
	Source    ImageSource     `gorm:"size:32;not null" json:"source"`
	ImageID   string          `gorm:"size:255" json:"image_id"`
	Image     BackgroundImage `gorm:"serializer:json;type:text" json:"image"`
	AppliedAt time.Time       `gorm:"not null;index:idx_history_profile_applied" json:"applied_at"`
}

// TableName returns the table name for WallpaperHistory.
func (WallpaperHistory) TableName() string {
	return "wallpaper_history"
}
