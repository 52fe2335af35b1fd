package models

import (
	"time"

	"github.com/google/uuid"
)

// BookingTimeSlot reserves the survey visit created with a booking.
type BookingTimeSlot struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BookingID  uuid.UUID `gorm:"column:booking_id;type:uuid;not null;index"`
	SurveyDate time.Time `gorm:"column:survey_date;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
