package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// MediaType classifies a resource and selects its summarization strategy.
type MediaType string

const (
	MediaTypeDocument MediaType = "document"
	MediaTypeImage    MediaType = "image"
	MediaTypeArticle  MediaType = "article"
	MediaTypeVideo    MediaType = "video"
)

// Valid reports whether the media type is one of the four supported kinds.
func (m MediaType) Valid() bool {
	switch m {
	case MediaTypeDocument, MediaTypeImage, MediaTypeArticle, MediaTypeVideo:
		return true
	}
	return false
}

// Embedding is a fixed-dimension vector stored as JSON in the database.
type Embedding []float32

// Value implements the driver.Valuer interface for database serialization.
func (e Embedding) Value() (driver.Value, error) {
	if e == nil {
		return "[]", nil
	}
	b, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (e *Embedding) Scan(value interface{}) error {
	if value == nil {
		*e = Embedding{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan Embedding")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, e)
}

// Resource is a persisted educational item. The id and timestamp are assigned
// by the store on creation and never change afterwards; there is no update
// path, only create and delete.
type Resource struct {
	ID          string    `gorm:"type:text;primaryKey" json:"id"`
	Title       string    `gorm:"type:text;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Course      string    `gorm:"type:text;not null;index:idx_resources_course" json:"course"`
	MediaType   MediaType `gorm:"type:text;not null;index:idx_resources_media_type" json:"media_type"`
	MediaLink   string    `gorm:"type:text" json:"media_link"`
	Summary     string    `gorm:"type:text" json:"summary"`
	Embedding   Embedding `gorm:"type:text" json:"embedding"`
	Timestamp   time.Time `json:"timestamp"`
}

// TableName returns the database table name for Resource.
func (Resource) TableName() string {
	return "resources"
}

// SearchResult is the projected view of a resource returned by similarity
// search, with the store's similarity score attached. It is never persisted.
type SearchResult struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	MediaLink string    `json:"media_link"`
	MediaType MediaType `json:"media_type"`
	Course    string    `json:"course"`
	Score     float32   `json:"score"`
}
