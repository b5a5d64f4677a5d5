package model

import "time"

// Export describes a CSV file archived in object storage.
// This is a pure domain model with no database-specific dependencies or tags.
type Export struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	StoragePath string    `json:"storage_path"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Rows        int       `json:"rows"`
	Columns     int       `json:"columns"`
	CreatedAt   time.Time `json:"created_at"`
}
