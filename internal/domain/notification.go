package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationLevel string

const (
	NotifyInfo    NotificationLevel = "info"
	NotifySuccess NotificationLevel = "success"
	NotifyWarning NotificationLevel = "warning"
	NotifyError   NotificationLevel = "error"
)

type Notification struct {
	ID        uuid.UUID
	Level     NotificationLevel
	Message   string
	ExpiresAt time.Time
}
