package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMapNotification(t *testing.T) {
	dto := NotificationDTO{
		ID:            42,
		Type:          "RESERVA",
		Title:         "Nova reserva",
		Body:          "texto simples",
		BodyFormatted: "<b>Reserva</b> de <i>Maria</i> confirmada",
		Link:          "/reservas",
		Action:        "Ver reserva",
		ItemID:        9,
		Date:          "2026-05-02",
		Origin:        "SISTEMA",
		Status:        "NOVO",
		CreatedAt:     "2026-05-01T09:30:00Z",
		RecipientsLbl: []string{" Maria ", "", "João"},
	}

	item := MapNotification(dto)

	assert.Equal(t, int64(42), item.ID)
	assert.Equal(t, "Nova reserva", item.Title)
	assert.Equal(t, "Reserva de Maria confirmada", item.Message, "markup stripped")
	assert.Equal(t, "/reservas", item.URL)
	assert.Equal(t, "Ver reserva", item.CTA)
	assert.False(t, item.Read, "NOVO means unread")
	assert.Equal(t, time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC), item.CreatedAt)
	assert.Equal(t, int64(9), item.ReferenceID)
	assert.Equal(t, []string{"Maria", "João"}, item.RecipientsLabel, "blank labels dropped")
}

func TestMapNotificationReadStatus(t *testing.T) {
	tests := []struct {
		status string
		read   bool
	}{
		{status: "NOVO", read: false},
		{status: "LIDA", read: true},
		{status: "ARQUIVADA", read: true},
		{status: "", read: true},
	}

	for _, tt := range tests {
		t.Run("status "+tt.status, func(t *testing.T) {
			item := MapNotification(NotificationDTO{ID: 1, Status: tt.status})
			assert.Equal(t, tt.read, item.Read)
		})
	}
}

func TestMapNotificationFallbacks(t *testing.T) {
	// Formatted body missing: the plain body is used untouched.
	item := MapNotification(NotificationDTO{ID: 1, Body: "sem formatação", Status: "LIDA"})
	assert.Equal(t, "sem formatação", item.Message)

	// Unparseable timestamp collapses to the zero time.
	item = MapNotification(NotificationDTO{ID: 1, CreatedAt: "ontem"})
	assert.True(t, item.CreatedAt.IsZero())
}
