package eventlog

import (
	"context"

	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&Event{})
}

func (s *Store) Record(ctx context.Context, event *Event) error {
	return s.db.WithContext(ctx).Create(event).Error
}

// History returns a session's events in arrival order.
func (s *Store) History(ctx context.Context, sessionID string) ([]Event, error) {
	var events []Event
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("timestamp ASC, id ASC").
		Find(&events).Error
	return events, err
}

// Purge removes every event for a session. Used by operator tooling only; no
// HTTP route exposes it.
func (s *Store) Purge(ctx context.Context, sessionID string) error {
	return s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&Event{}).Error
}
