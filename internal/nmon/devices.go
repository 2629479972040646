package nmon

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xtxerr/nmonreport/internal/constants"
	"github.com/xtxerr/nmonreport/internal/errors"
)

// multipathPattern matches "<alias> (<wwid>) dm-<n>" in multipath -ll output.
var multipathPattern = regexp.MustCompile(`\S+ \(\S+\) (dm-\S+)`)

// MatchDevice returns the first dm device named in text.
func MatchDevice(text string) (string, bool) {
	m := multipathPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// DeviceResolver collects multipath devices from BBBP config dumps and maps
// them to disk record columns.
type DeviceResolver struct {
	devices []string
	seen    map[string]struct{}
}

// NewDeviceResolver creates an empty resolver.
func NewDeviceResolver() *DeviceResolver {
	return &DeviceResolver{seen: make(map[string]struct{})}
}

// Observe scans a multipath config dump line and reports whether it added
// a new device. At most one device is taken per line.
func (d *DeviceResolver) Observe(rec Record) bool {
	if rec.Tag != constants.TagConfigDump || rec.Len() <= 3 {
		return false
	}
	if rec.Fields[2] != constants.MultipathTool {
		return false
	}

	dev, ok := MatchDevice(rec.Fields[3])
	if !ok {
		return false
	}
	if _, dup := d.seen[dev]; dup {
		return false
	}
	d.seen[dev] = struct{}{}
	d.devices = append(d.devices, dev)
	return true
}

// Devices returns discovered devices in discovery order.
func (d *DeviceResolver) Devices() []string {
	out := make([]string, len(d.devices))
	copy(out, d.devices)
	return out
}

// Len returns the number of discovered devices.
func (d *DeviceResolver) Len() int {
	return len(d.devices)
}

// ResolveColumns returns the header index of every discovered device, in
// discovery order. A device missing from the header returns
// ErrUnresolvedDevice.
func (d *DeviceResolver) ResolveColumns(header []string) ([]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, ok := index[name]; !ok {
			index[name] = i
		}
	}

	idxs := make([]int, 0, len(d.devices))
	var missing []string
	for _, dev := range d.devices {
		i, ok := index[dev]
		if !ok {
			missing = append(missing, dev)
			continue
		}
		idxs = append(idxs, i)
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%s not in header: %w", strings.Join(missing, ", "), errors.ErrUnresolvedDevice)
	}
	if len(idxs) != len(d.devices) {
		return nil, fmt.Errorf("resolved %d of %d devices: %w", len(idxs), len(d.devices), errors.ErrUnresolvedDevice)
	}
	return idxs, nil
}
