package domain

import "time"

// DriverStatus represents lifecycle states for a driver.
type DriverStatus string

const (
	DriverStatusActive      DriverStatus = "ACTIVE"
	DriverStatusDeactivated DriverStatus = "DEACTIVATED"
)

// Driver is the platform directory record for drivers.
type Driver struct {
	ID        string
	Name      string
	Phone     string
	Status    DriverStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
