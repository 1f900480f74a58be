package models

type AvailabilityStatus string

const (
	AvailabilityOffline AvailabilityStatus = "offline"
	AvailabilityOnline  AvailabilityStatus = "online"
	AvailabilityBusy    AvailabilityStatus = "busy"
)

// Driver is the graph anchor for an operator. Assignment creates a bare
// Driver node keyed only by driver_id when none exists, so every other
// property may be empty.
type Driver struct {
	DriverID           string             `json:"driver_id"`
	UserID             string             `json:"user_id,omitempty"`
	LicenseNumber      string             `json:"license_number,omitempty"`
	VehiclePlate       string             `json:"vehicle_plate,omitempty"`
	AvailabilityStatus AvailabilityStatus `json:"availability_status,omitempty"`
	Rating             float64            `json:"rating"`
}

type CreateDriverRequest struct {
	UserID             string             `json:"user_id" binding:"required"`
	LicenseNumber      string             `json:"license_number" binding:"required"`
	VehiclePlate       string             `json:"vehicle_plate"`
	AvailabilityStatus AvailabilityStatus `json:"availability_status" binding:"omitempty,availability_status"`
}
