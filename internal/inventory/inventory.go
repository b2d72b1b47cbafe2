// Package inventory loads the device inventory and To-Be wiring CSV files
// and builds the alias map used to resolve LLDP system names.
package inventory

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"wirecheck/internal/topology"
)

// ValidationError reports rows rejected before they reach the
// reconciliation core, with the enumerable list of missing fields.
type ValidationError struct {
	File    string
	Row     int
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: row %d: missing required fields: %s",
		e.File, e.Row, strings.Join(e.Missing, ", "))
}

// LoadDevices reads the device inventory CSV. Expected header columns:
// name, mgmt_ip, snmp_version, snmp_community, snmp_user, snmp_auth,
// snmp_priv, aliases. Aliases are ";"-separated.
func LoadDevices(path string) ([]topology.Device, error) {
	rows, err := readRecords(path)
	if err != nil {
		return nil, err
	}

	devices := make([]topology.Device, 0, len(rows))
	for i, row := range rows {
		d := topology.Device{
			Name:          row["name"],
			MgmtIP:        row["mgmt_ip"],
			SNMPVersion:   row["snmp_version"],
			SNMPCommunity: row["snmp_community"],
			SNMPUser:      row["snmp_user"],
			SNMPAuth:      row["snmp_auth"],
			SNMPPriv:      row["snmp_priv"],
			Aliases:       splitAliases(row["aliases"]),
		}
		if missing := missingFields(map[string]string{
			"name":         d.Name,
			"mgmt_ip":      d.MgmtIP,
			"snmp_version": d.SNMPVersion,
		}); len(missing) > 0 {
			return nil, &ValidationError{File: path, Row: i + 2, Missing: missing}
		}
		devices = append(devices, d)
	}
	return devices, nil
}

// LoadIntents reads the To-Be wiring CSV (device_a, port_a, device_b,
// port_b). Ports are normalized at load time; the A/B device ordering is
// kept as written.
func LoadIntents(path string) ([]topology.LinkIntent, error) {
	rows, err := readRecords(path)
	if err != nil {
		return nil, err
	}

	intents := make([]topology.LinkIntent, 0, len(rows))
	for i, row := range rows {
		deviceA := row["device_a"]
		portA := row["port_a"]
		deviceB := row["device_b"]
		portB := row["port_b"]
		if missing := missingFields(map[string]string{
			"device_a": deviceA,
			"port_a":   portA,
			"device_b": deviceB,
			"port_b":   portB,
		}); len(missing) > 0 {
			return nil, &ValidationError{File: path, Row: i + 2, Missing: missing}
		}
		intents = append(intents, topology.LinkIntent{
			DeviceA:   deviceA,
			PortARaw:  portA,
			PortANorm: topology.NormalizePort(portA),
			DeviceB:   deviceB,
			PortBRaw:  portB,
			PortBNorm: topology.NormalizePort(portB),
		})
	}
	return intents, nil
}

// BuildAliasMap maps lowercased device names and aliases to the canonical
// inventory name. It is passed explicitly into every resolution call.
func BuildAliasMap(devices []topology.Device) map[string]string {
	aliases := make(map[string]string, len(devices))
	for _, d := range devices {
		aliases[strings.ToLower(d.Name)] = d.Name
		for _, a := range d.Aliases {
			aliases[strings.ToLower(a)] = d.Name
		}
	}
	return aliases
}

// readRecords parses a headered CSV into one map per data row, with all
// values whitespace-trimmed.
func readRecords(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []map[string]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func splitAliases(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func missingFields(fields map[string]string) []string {
	known := []string{"name", "mgmt_ip", "snmp_version", "device_a", "port_a", "device_b", "port_b"}
	var missing []string
	for _, name := range known {
		if v, ok := fields[name]; ok && v == "" {
			missing = append(missing, name)
		}
	}
	return missing
}
