// internal/services/events.go
package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/vatsal2312/TinyAstro/internal/models"
)

// recordEvent appends one row to the ledger event stream inside the
// caller's transaction, so events and state changes commit together.
func recordEvent(db *gorm.DB, eventType models.EventType, tokenID *int64, actor string, data models.JSONB) error {
	event := &models.LedgerEvent{
		EventType: eventType,
		TokenID:   tokenID,
		Actor:     actor,
		Data:      data,
	}
	if err := db.Create(event).Error; err != nil {
		return fmt.Errorf("failed to record %s event: %w", eventType, err)
	}
	return nil
}

func tokenRef(id int64) *int64 {
	return &id
}
