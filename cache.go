package ble

// SightingCache persists the last payload seen per device.
type SightingCache interface {
	Store(Addr, Sighting, bool) error
	Load(Addr) (Sighting, error)
	Clear() error
}
