package models

// ServiceID is the canonical identifier of an optional booking extra.
type ServiceID string

const (
	ServiceGPS              ServiceID = "gps"
	ServiceChildSeat        ServiceID = "child_seat"
	ServiceWifiHotspot      ServiceID = "wifi_hotspot"
	ServiceInsurance        ServiceID = "insurance"
	ServiceAdditionalDriver ServiceID = "additional_driver"
)

// AdditionalService describes an extra with its per-day surcharge.
type AdditionalService struct {
	ID          ServiceID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PricePerDay float64   `json:"price_per_day"`
}

// AdditionalServices is the static catalog of extras, in display order.
var AdditionalServices = []AdditionalService{
	{ID: ServiceGPS, Name: "GPS Navigation", Description: "Turn-by-turn navigation unit", PricePerDay: 5},
	{ID: ServiceChildSeat, Name: "Child Seat", Description: "Seat for children up to 36 kg", PricePerDay: 10},
	{ID: ServiceWifiHotspot, Name: "WiFi Hotspot", Description: "Portable 4G hotspot", PricePerDay: 8},
	{ID: ServiceInsurance, Name: "Full Insurance", Description: "Zero-deductible coverage", PricePerDay: 20},
	{ID: ServiceAdditionalDriver, Name: "Additional Driver", Description: "Register a second driver", PricePerDay: 15},
}

// LookupService returns the catalog entry for id.
func LookupService(id ServiceID) (AdditionalService, bool) {
	for _, s := range AdditionalServices {
		if s.ID == id {
			return s, true
		}
	}
	return AdditionalService{}, false
}

// ServiceName resolves the display name, falling back to the raw id.
func ServiceName(id ServiceID) string {
	if s, ok := LookupService(id); ok {
		return s.Name
	}
	return string(id)
}
