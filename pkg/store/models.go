package store

import "time"

// GORM models used for persistence.
type BookModel struct {
	ID        string    `gorm:"primaryKey;type:uuid"`
	Title     string    `gorm:"not null"`
	Author    string    `gorm:"not null"`
	Status    string    `gorm:"not null;size:16"`
	ImageURL  *string   `gorm:"column:image_url"`
	CreatedAt time.Time `gorm:"not null;index;<-:create;autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false"`
}

// TableName keeps the table name independent of the Go type name.
func (BookModel) TableName() string { return "books" }
