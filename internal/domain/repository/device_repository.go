package repository

import (
	"context"
	"errors"

	"cravlr/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrDeviceNotFound is returned when a device is not found.
var ErrDeviceNotFound = errors.New("device not found")

// DeviceRepository defines the interface for device-related database operations.
type DeviceRepository interface {
	// CreateDevice registers a new device for push notifications.
	CreateDevice(ctx context.Context, device *entity.UserDevice) error

	// FindDeviceByID retrieves a device by its unique ID.
	FindDeviceByID(ctx context.Context, id uuid.UUID) (*entity.UserDevice, error)

	// FindDevicesByUser retrieves all of a user's registered devices.
	FindDevicesByUser(ctx context.Context, userID uuid.UUID) ([]*entity.UserDevice, error)

	// FindActiveDevicesForUsers retrieves active devices for a set of users in
	// one query to avoid N+1 lookups during fan-out.
	FindActiveDevicesForUsers(ctx context.Context, userIDs []uuid.UUID) ([]*entity.UserDevice, error)

	// UpdateDevice persists changes to an existing device.
	UpdateDevice(ctx context.Context, device *entity.UserDevice) error

	// DeleteDevice removes a device, used when its FCM token goes invalid.
	DeleteDevice(ctx context.Context, id uuid.UUID) error
}
