package catalogservice

// VendorService модель услуги вендора из каталога
type VendorService struct {
	ID        int64  `json:"id"`
	VendorID  int64  `json:"vendor_id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	MaxGuests *int   `json:"max_guests,omitempty"` // nil = без ограничения
	IsActive  bool   `json:"is_active"`
}
