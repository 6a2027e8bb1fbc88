// Package models holds background settings, image descriptors and the GORM rows
// that persist them.
package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// ULID identifies stored rows. It is persisted and serialized in its
// 26-character text form.
type ULID ulid.ULID

// NewULID returns a monotonic ULID for the current time.
func NewULID() ULID {
	return ULID(ulid.Make())
}

// ParseULID parses the text form of a ULID.
func ParseULID(s string) (ULID, error) {
	id, err := ulid.Parse(s)
	if err != nil {
		return ULID{}, fmt.Errorf("invalid ULID: %w", err)
	}
	return ULID(id), nil
}

func (u ULID) String() string {
	return ulid.ULID(u).String()
}

// IsZero reports whether u is unset.
func (u ULID) IsZero() bool {
	return u == ULID{}
}

// Time returns the creation time embedded in u.
func (u ULID) Time() time.Time {
	return ulid.Time(ulid.ULID(u).Time())
}

// MarshalText implements encoding.TextMarshaler. The zero value encodes as "".
func (u ULID) MarshalText() ([]byte, error) {
	if u.IsZero() {
		return []byte{}, nil
	}
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *ULID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*u = ULID{}
		return nil
	}
	id, err := ParseULID(string(data))
	if err != nil {
		return err
	}
	*u = id
	return nil
}

// Value implements driver.Valuer.
func (u ULID) Value() (driver.Value, error) {
	if u.IsZero() {
		return nil, nil
	}
	return u.String(), nil
}

// Scan implements sql.Scanner.
func (u *ULID) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*u = ULID{}
		return nil
	case string:
		return u.UnmarshalText([]byte(v))
	case []byte:
		return u.UnmarshalText(v)
	default:
		return fmt.Errorf("unsupported type for ULID: %T", value)
	}
}

// GormDataType implements schema.GormDataTypeInterface.
func (ULID) GormDataType() string {
	return "varchar(26)"
}

// BaseModel is embedded by every persisted row.
type BaseModel struct {
	ID        ULID           `gorm:"primarykey;type:varchar(26)" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns an ID to rows created without one.
func (b *BaseModel) BeforeCreate(*gorm.DB) error {
	if b.ID.IsZero() {
		b.ID = NewULID()
	}
	return nil
}
