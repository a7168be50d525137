// utils/shiptypes.go
package utils

// ShipTypeLabel maps an AIS ship-type code (ITU-R M.1371) to a short
// human-readable label. Unknown or reserved codes return "Other".
func ShipTypeLabel(code int) string {
	switch {
	case code == 30:
		return "Fishing"
	case code == 31 || code == 32:
		return "Towing"
	case code == 33:
		return "Dredging"
	case code == 34:
		return "Diving ops"
	case code == 35:
		return "Military"
	case code == 36:
		return "Sailing"
	case code == 37:
		return "Pleasure craft"
	case code >= 40 && code <= 49:
		return "High-speed craft"
	case code == 50:
		return "Pilot vessel"
	case code == 51:
		return "Search and rescue"
	case code == 52:
		return "Tug"
	case code == 53:
		return "Port tender"
	case code == 55:
		return "Law enforcement"
	case code == 58:
		return "Medical transport"
	case code >= 60 && code <= 69:
		return "Passenger"
	case code >= 70 && code <= 79:
		return "Cargo"
	case code >= 80 && code <= 89:
		return "Tanker"
	default:
		return "Other"
	}
}
