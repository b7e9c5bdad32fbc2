package ble

import "time"

// ControllerInfo is what was last learned about the controller on a port.
type ControllerInfo struct {
	Vendor      string    `json:"vendor"`
	BuildNumber uint16    `json:"build_number"`
	Reason      string    `json:"reason,omitempty"`
	Seen        time.Time `json:"seen"`
}

type ControllerCache interface {
	Store(port string, info ControllerInfo, replace bool) error
	Load(port string) (ControllerInfo, error)
	Clear() error
}
