package models

import (
	"slices"
	"time"
)

// ImageSource identifies where a BackgroundImage came from.
type ImageSource string

const (
	ImageSourceUnsplash ImageSource = "unsplash"
	ImageSourceRandom   ImageSource = "random"
	ImageSourceLocal    ImageSource = "local"
	ImageSourceCustom   ImageSource = "custom"
)

// Author credits the creator of a remote image.
type Author struct {
	Name       string `json:"name"`
	Username   string `json:"username,omitempty"`
	ProfileURL string `json:"profileUrl,omitempty"`
	AvatarURL  string `json:"avatarUrl,omitempty"`
}

// BackgroundImage is the source independent description of a remote image.
// Adapters build it from provider responses and nothing modifies it afterwards.
type BackgroundImage struct {
	ID          string      `json:"id"`
	URL         string      `json:"url"`
	RawURL      string      `json:"rawUrl,omitempty"`
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	Description string      `json:"description,omitempty"`
	Keywords    []string    `json:"keywords,omitempty"`
	Category    string      `json:"category,omitempty"`
	Theme       string      `json:"theme,omitempty"`
	Author      *Author     `json:"author,omitempty"`
	Source      ImageSource `json:"source"`
	CreatedAt   *time.Time  `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time  `json:"updatedAt,omitempty"`
}

// AspectRatio returns width/height, or 0 when the height is unknown.
func (i BackgroundImage) AspectRatio() float64 {
	if i.Height <= 0 {
		return 0
	}
	return float64(i.Width) / float64(i.Height)
}

// Clone returns a deep copy of the image.
func (i BackgroundImage) Clone() BackgroundImage {
	out := i
	out.Keywords = slices.Clone(i.Keywords)
	if i.Author != nil {
		a := *i.Author
		out.Author = &a
	}
	if i.CreatedAt != nil {
		t := *i.CreatedAt
		out.CreatedAt = &t
	}
	if i.UpdatedAt != nil {
		t := *i.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}
