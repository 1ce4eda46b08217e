package usecase

import (
	"context"

	"cravlr/internal/domain/entity"

	"github.com/google/uuid"
)

// DeviceUsecase defines the interface for push device management.
type DeviceUsecase interface {
	// RegisterDevice registers or refreshes a device's FCM token.
	RegisterDevice(ctx context.Context, userID uuid.UUID, input *RegisterDeviceInput) (*entity.UserDevice, error)

	// GetUserDevices lists a user's registered devices.
	GetUserDevices(ctx context.Context, userID uuid.UUID) ([]*entity.UserDevice, error)

	// DeactivateDevice stops push delivery to a device without deleting it.
	DeactivateDevice(ctx context.Context, userID, deviceID uuid.UUID) error
}

// RegisterDeviceInput defines the data required to register a device.
type RegisterDeviceInput struct {
	FCMToken string `json:"fcm_token"`
	DeviceID string `json:"device_id"`
	Platform string `json:"platform"` // ios, android, web
}
