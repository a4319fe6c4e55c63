package server

import (
	"encoding/json"
	"log"
	"time"

	"art-trainer/internal/db"

	"gorm.io/datatypes"
)

type eventPayload map[string]any

// recordEvent appends a row to the activity log. Failures are logged and
// dropped; the log never affects the outcome of a request. Without a database
// there is nothing to record.
func (s *Server) recordEvent(eventType string, userID, postID *uint, payload eventPayload) {
	if s.db == nil {
		return
	}
	if payload == nil {
		payload = eventPayload{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("failed to encode event payload type=%s: %v", eventType, err)
		return
	}
	record := db.Event{
		UserID:    userID,
		PostID:    postID,
		Type:      eventType,
		Payload:   datatypes.JSON(raw),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.Create(&record).Error; err != nil {
		log.Printf("failed to record event type=%s: %v", eventType, err)
	}
}
