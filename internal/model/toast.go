package model

import "time"

// ToastType classifies a toast for styling and de-duplication.
type ToastType string

const (
	ToastSuccess ToastType = "success"
	ToastError   ToastType = "error"
	ToastWarning ToastType = "warning"
	ToastInfo    ToastType = "info"
)

// Toast is an ephemeral user message shown in the overlay.
type Toast struct {
	// ID is a client-generated identifier used for dismissal.
	ID string `json:"id"`

	Type    ToastType `json:"type"`
	Message string    `json:"message"`

	// Duration is how long the toast stays visible. Zero means the
	// toast stays until explicitly dismissed.
	Duration time.Duration `json:"duration"`

	CreatedAt time.Time `json:"createdAt"`
}
