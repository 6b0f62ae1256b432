package eventlog

import (
	"time"

	"github.com/seehear/assist-backend/internal/shared"
)

// Event is one append-only record in a session's log. Rows are never updated;
// the only delete path is an explicit session purge.
type Event struct {
	ID        uint           `gorm:"primaryKey" json:"-"`
	SessionID string         `gorm:"size:64;index;not null" json:"session_id"`
	Timestamp time.Time      `gorm:"index;not null" json:"timestamp"`
	EventType string         `gorm:"size:32;not null" json:"event_type"`
	Payload   shared.JSONMap `gorm:"type:jsonb" json:"payload"`
}

func (Event) TableName() string {
	return "session_events"
}
