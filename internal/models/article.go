package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Status values for Article.Status. Transitions are unconstrained: any caller
// with write permission may set any status.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// ValidStatus reports whether status is one of the known article statuses.
func ValidStatus(status string) bool {
	switch status {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// StringList is a []string persisted as a JSON text column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return fmt.Errorf("unsupported type %T for StringList", src)
}

// Article is a news content record, either authored in-app or imported from
// an external source (in which case SourceURL is set).
type Article struct {
	ID       uint       `gorm:"primaryKey" json:"id"`
	Title    string     `gorm:"not null" json:"title"`
	Summary  string     `gorm:"type:text" json:"summary"`
	Content  string     `gorm:"type:text" json:"content"`
	ImageURL string     `json:"image_url"`
	Images   StringList `gorm:"type:text" json:"images"`

	SourceURL   *string    `gorm:"uniqueIndex" json:"source_url,omitempty"`
	PublishedAt *time.Time `gorm:"index" json:"published_at"`
	Category    string     `gorm:"index" json:"category"`

	// AuthorName carries the display name when there is no registered author.
	AuthorName string `json:"author_name"`
	AuthorID   *uint  `gorm:"index" json:"author_id,omitempty"`
	Author     *User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	Status string `gorm:"not null;default:draft;index" json:"status"`
	// Views only ever increases, and only for published articles.
	Views      uint `gorm:"not null;default:0" json:"views"`
	IsFeatured bool `gorm:"not null;default:false" json:"is_featured"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
