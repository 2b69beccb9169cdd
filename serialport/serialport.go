package serialport

import (
	"context"
	"fmt"

	"go.bug.st/serial/enumerator"

	"github.com/kbukum/edlflash/errors"
	"github.com/kbukum/edlflash/logger"
	"github.com/kbukum/edlflash/observability"
)

// NotFound is the port name reported when no USB serial device is attached.
const NotFound = "Not found"

// NoProduct is the product name reported for a missing or unnamed device.
const NoProduct = "N/A"

// Port describes one USB serial port.
type Port struct {
	Name         string `json:"name"`
	Product      string `json:"product"`
	VID          string `json:"vid,omitempty"`
	PID          string `json:"pid,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
}

// Enumerator lists the serial ports of the host.
type Enumerator func() ([]*enumerator.PortDetails, error)

// Finder locates the device port.
type Finder struct {
	list Enumerator
	log  *logger.Logger
}

// NewFinder creates a Finder using the operating system's port list.
func NewFinder() *Finder {
	return NewFinderWith(enumerator.GetDetailedPortsList)
}

// NewFinderWith creates a Finder using a custom enumerator.
func NewFinderWith(list Enumerator) *Finder {
	return &Finder{list: list, log: logger.Get("serialport")}
}

// Discover returns the USB serial port of the attached device. When several
// USB ports exist the last one listed wins. It fails with NOT_FOUND when
// there is none.
func (f *Finder) Discover() (Port, error) {
	ports, err := f.list()
	if err != nil {
		return Port{Name: NotFound, Product: NoProduct}, errors.ServiceUnavailable("serial port enumerator").WithCause(err)
	}

	var found *enumerator.PortDetails
	for _, p := range ports {
		if p != nil && p.IsUSB {
			found = p
		}
	}
	if found == nil {
		f.log.Debug("no usb serial port", logger.Fields("ports", len(ports)))
		return Port{Name: NotFound, Product: NoProduct}, errors.NotFound("usb serial port", "")
	}

	port := Port{
		Name:         found.Name,
		Product:      found.Product,
		VID:          found.VID,
		PID:          found.PID,
		SerialNumber: found.SerialNumber,
	}
	if port.Product == "" {
		port.Product = NoProduct
	}
	f.log.Debug("usb serial port found", logger.Fields(logger.FieldPort, port.Name, "product", port.Product))
	return port, nil
}

// Discover finds the device port with the operating system's port list.
func Discover() (Port, error) {
	return NewFinder().Discover()
}

// CheckHealth reports the device as up when a USB serial port is present.
// A missing device degrades the service rather than taking it down.
func (f *Finder) CheckHealth(_ context.Context) observability.Health {
	port, err := f.Discover()
	switch {
	case err == nil:
		return observability.Health{
			Name:    "device",
			Status:  observability.HealthStatusUp,
			Message: fmt.Sprintf("%s (%s)", port.Name, port.Product),
			Details: map[string]string{"port": port.Name, "product": port.Product},
		}
	case errors.HasCode(err, errors.ErrCodeNotFound):
		return observability.Health{Name: "device", Status: observability.HealthStatusDegraded, Message: "no usb serial port"}
	default:
		return observability.Health{Name: "device", Status: observability.HealthStatusDown, Message: err.Error()}
	}
}
