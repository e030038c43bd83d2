package api_models

import "time"

// CreateReadingRequest is the payload for the single-reading create endpoint.
// The JSON field names mirror the bulk CSV column headers.
type CreateReadingRequest struct {
	EquipmentID string    `json:"equipmentId" binding:"required"`
	Timestamp   time.Time `json:"timestamp" binding:"required"`
	Value       *float64  `json:"value" binding:"required"`
}

type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
