package models

import (
	"encoding/json"
	"time"
)

// Setting stores an operator-tunable value keyed by name.
type Setting struct {
	Key       string          `gorm:"type:varchar(255);primaryKey" json:"key"`  // Setting name.
	Value     json.RawMessage `gorm:"type:jsonb" json:"value"`                  // JSON-encoded value.
	UpdatedBy string          `gorm:"type:text" json:"updatedBy"`               // Last writer.
	UpdatedAt time.Time       `gorm:"not null;autoUpdateTime" json:"updatedAt"` // Last update timestamp.
}
