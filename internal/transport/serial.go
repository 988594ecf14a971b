package transport

import (
	"context"
	"fmt"
	"sort"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// DefaultMode is 115200 8N1, the usual setting for RFCOMM bridges and USB
// serial adapters.
var DefaultMode = serial.Mode{
	BaudRate: 115200,
	DataBits: 8,
	Parity:   serial.NoParity,
	StopBits: serial.OneStopBit,
}

// SerialDialer opens serial ports, including Bluetooth RFCOMM device nodes.
type SerialDialer struct {
	// Mode overrides DefaultMode when set.
	Mode *serial.Mode
}

// Dial opens device with the configured mode.
func (d SerialDialer) Dial(ctx context.Context, device string) (Transport, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if device == "" {
		return nil, ErrNoPort
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode := DefaultMode
	if d.Mode != nil {
		mode = *d.Mode
	}

	type result struct {
		port serial.Port
		err  error
	}
	done := make(chan result, 1)
	go func() {
		port, err := serial.Open(device, &mode)
		done <- result{port: port, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("open %s: %w", device, res.err)
		}
		return res.port, nil
	case <-ctx.Done():
		// An RFCOMM open can block for the whole baseband page; release the
		// port if it shows up after we gave up.
		go func() {
			if res := <-done; res.err == nil {
				_ = res.port.Close()
			}
		}()
		return nil, ctx.Err()
	}
}

// PortInfo describes one serial port found on the system.
type PortInfo struct {
	Name         string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
	Product      string
}

// Label is a one-line description suitable for menus.
func (p PortInfo) Label() string {
	if !p.IsUSB {
		return p.Name
	}
	label := fmt.Sprintf("%s  [%s:%s]", p.Name, p.VID, p.PID)
	if p.Product != "" {
		label += " " + p.Product
	}
	return label
}

// ListPorts returns the serial ports known to the OS, sorted by name.
func ListPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("list ports: %w", err)
	}
	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		ports = append(ports, PortInfo{
			Name:         d.Name,
			IsUSB:        d.IsUSB,
			VID:          d.VID,
			PID:          d.PID,
			SerialNumber: d.SerialNumber,
			Product:      d.Product,
		})
	}
	sort.Slice(ports, func(i, j int) bool { return ports[i].Name < ports[j].Name })
	return ports, nil
}
