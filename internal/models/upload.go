package models

import "time"

type Upload struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	StoredName   string    `gorm:"uniqueIndex;size:80;not null" json:"storedName"`
	OriginalName string    `gorm:"size:255;not null" json:"originalName"`
	ContentType  string    `gorm:"size:120" json:"contentType"`
	Size         int64     `gorm:"not null" json:"size"`
	UserID       uint      `gorm:"index" json:"userId"`
}
