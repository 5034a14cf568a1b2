package check_availability

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	VendorID  int64  `json:"vendorId"`
	ServiceID *int64 `json:"serviceId,omitempty"`
	Date      string `json:"date"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}
