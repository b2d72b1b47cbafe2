package snmp

// LLDP neighbor collection over SNMP (v2c/v3) using gosnmp. Walks the
// LLDP-MIB local port table and remote table and emits one directional
// observation per remote row.

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"

	"wirecheck/internal/topology"
)

// LLDP-MIB object columns.
const (
	oidLocPortID     = ".1.0.8802.1.1.2.1.3.7.1.3" // lldpLocPortId
	oidRemChassisID  = ".1.0.8802.1.1.2.1.4.1.1.5" // lldpRemChassisId
	oidRemPortID     = ".1.0.8802.1.1.2.1.4.1.1.7" // lldpRemPortId
	oidRemSysName    = ".1.0.8802.1.1.2.1.4.1.1.9" // lldpRemSysName
)

type LLDPCollector struct {
	Timeout  time.Duration
	Retries  int
	MaxOids  int
	BulkSize uint8
	Port     uint16
	Verbose  bool
	Log      *slog.Logger
}

func NewLLDP() *LLDPCollector {
	return &LLDPCollector{
		Timeout:  3 * time.Second,
		Retries:  1,
		MaxOids:  24,
		BulkSize: 20,
		Port:     161,
		Log:      slog.Default(),
	}
}

// Collect walks LLDP tables on every inventory device. Collection failures
// are recorded as per-device error codes, never returned as an error; the
// only error path is context cancellation between devices.
func (c *LLDPCollector) Collect(ctx context.Context, devices []topology.Device, aliases map[string]string) (Result, error) {
	result := Result{DeviceErrors: map[string][]string{}}
	for _, device := range devices {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		obs, errs := c.collectDevice(device, aliases)
		result.Observations = append(result.Observations, obs...)
		if len(errs) > 0 {
			result.DeviceErrors[device.Name] = errs
			c.Log.Warn("lldp collection failed", "device", device.Name, "errors", errs)
		} else if c.Verbose {
			c.Log.Info("lldp collection done", "device", device.Name, "observations", len(obs))
		}
	}
	return result, nil
}

func (c *LLDPCollector) collectDevice(device topology.Device, aliases map[string]string) ([]topology.LinkObservation, []string) {
	if !validCredentials(device) {
		return nil, []string{ErrAuthFailed}
	}

	session, err := c.openSession(device)
	if err != nil {
		return nil, []string{classifyError(err)}
	}
	defer session.Conn.Close()

	locPorts, err := walkStringIndex(session, oidLocPortID)
	if err != nil {
		return nil, []string{classifyError(err)}
	}
	rows, err := walkRemTable(session)
	if err != nil {
		return nil, []string{classifyError(err)}
	}
	if len(rows) == 0 {
		return nil, []string{ErrTableEmpty}
	}

	observations := make([]topology.LinkObservation, 0, len(rows))
	for _, row := range rows {
		observations = append(observations, buildObservation(device.Name, locPorts, row, aliases))
	}
	return observations, nil
}

// remRow is one parsed row of the LLDP remote table, keyed by the
// timeMark.localPortNum.remIndex instance suffix.
type remRow struct {
	localPortNum int
	chassisID    string
	portID       string
	sysName      string
}

// buildObservation turns one remote-table row into a directional
// observation. An unresolved remote name or port downgrades confidence to
// partial and tags the row.
func buildObservation(localDevice string, locPorts map[int]string, row remRow, aliases map[string]string) topology.LinkObservation {
	localPortRaw := locPorts[row.localPortNum]
	if localPortRaw == "" {
		localPortRaw = topology.Unknown
	}
	remotePortRaw := row.portID
	if remotePortRaw == "" {
		remotePortRaw = topology.Unknown
	}
	remoteID := row.chassisID
	if remoteID == "" {
		remoteID = topology.Unknown
	}
	remoteName := resolveDeviceName(row.sysName, aliases)

	confidence := topology.ConfidenceObserved
	var rowErrors []string
	if remoteName == topology.Unknown || remotePortRaw == topology.Unknown {
		confidence = topology.ConfidencePartial
		rowErrors = append(rowErrors, ErrPartialRow)
	}

	return topology.LinkObservation{
		LocalDevice:      localDevice,
		LocalPortRaw:     localPortRaw,
		LocalPortNorm:    topology.NormalizePort(localPortRaw),
		RemoteDeviceID:   remoteID,
		RemoteDeviceName: remoteName,
		RemotePortRaw:    remotePortRaw,
		RemotePortNorm:   topology.NormalizePort(remotePortRaw),
		Source:           "lldp",
		Confidence:       confidence,
		Errors:           rowErrors,
	}
}

// resolveDeviceName maps a reported LLDP system name to the canonical
// inventory name via the alias map. Unmapped names pass through unchanged;
// an empty name is the unknown sentinel.
func resolveDeviceName(raw string, aliases map[string]string) string {
	if raw == "" {
		return topology.Unknown
	}
	if canonical, ok := aliases[strings.ToLower(raw)]; ok {
		return canonical
	}
	return raw
}

func (c *LLDPCollector) openSession(device topology.Device) (*gosnmp.GoSNMP, error) {
	host := device.MgmtIP
	port := c.Port
	if h, p, err := net.SplitHostPort(device.MgmtIP); err == nil {
		if n, err := strconv.Atoi(p); err == nil && n > 0 {
			host = h
			port = uint16(n)
		}
	}

	cfg := &gosnmp.GoSNMP{
		Target:         host,
		Port:           port,
		Timeout:        c.Timeout,
		Retries:        c.Retries,
		MaxOids:        c.MaxOids,
		MaxRepetitions: uint32(c.BulkSize),
	}

	cred := credentialsFor(device)
	switch cred.Version {
	case "3", "v3":
		cfg.Version = gosnmp.Version3
		cfg.SecurityModel = gosnmp.UserSecurityModel
		usm := &gosnmp.UsmSecurityParameters{UserName: cred.V3.User}
		cfg.MsgFlags = gosnmp.NoAuthNoPriv
		if cred.V3.AuthPass != "" {
			usm.AuthenticationPassphrase = cred.V3.AuthPass
			usm.AuthenticationProtocol = authProtocol(cred.V3.AuthProto)
			cfg.MsgFlags = gosnmp.AuthNoPriv
		}
		if cred.V3.PrivPass != "" {
			usm.PrivacyPassphrase = cred.V3.PrivPass
			usm.PrivacyProtocol = privProtocol(cred.V3.PrivProto)
			cfg.MsgFlags = gosnmp.AuthPriv
		}
		cfg.SecurityParameters = usm
	case "1", "v1":
		cfg.Version = gosnmp.Version1
		cfg.Community = cred.Community
	default:
		cfg.Version = gosnmp.Version2c
		cfg.Community = cred.Community
	}

	if err := cfg.Connect(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func authProtocol(name string) gosnmp.SnmpV3AuthProtocol {
	switch strings.ToUpper(name) {
	case "MD5":
		return gosnmp.MD5
	case "SHA224":
		return gosnmp.SHA224
	case "SHA256":
		return gosnmp.SHA256
	case "SHA384":
		return gosnmp.SHA384
	case "SHA512":
		return gosnmp.SHA512
	default:
		return gosnmp.SHA
	}
}

func privProtocol(name string) gosnmp.SnmpV3PrivProtocol {
	switch strings.ToUpper(name) {
	case "DES":
		return gosnmp.DES
	case "AES192":
		return gosnmp.AES192
	case "AES256":
		return gosnmp.AES256
	default:
		return gosnmp.AES
	}
}

// classifyError maps transport/session errors onto the stable per-device
// error codes reported in the summary.
func classifyError(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg,
		"authentication", "authorization", "unknown user name",
		"wrong community", "usm", "incorrect key"):
		return ErrAuthFailed
	case containsAny(msg,
		"unknown object identifier", "no such object", "no such instance",
		"nosuchobject", "nosuchinstance", "end of mib"):
		return ErrMIBMissing
	case containsAny(msg,
		"timeout", "no response", "no route to host",
		"network is unreachable", "connection refused", "host is down",
		"i/o timeout"):
		return ErrTargetUnreachable
	default:
		return ErrUnknown
	}
}

func containsAny(s string, markers ...string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// walkStringIndex walks a column whose instance suffix is a single integer
// (e.g. lldpLocPortId indexed by local port number).
func walkStringIndex(sn *gosnmp.GoSNMP, oid string) (map[int]string, error) {
	out := map[int]string{}
	err := sn.BulkWalk(oid, func(pdu gosnmp.SnmpPDU) error {
		out[lastIndex(pdu.Name)] = valueToString(pdu.Value)
		return nil
	})
	return out, err
}

// walkRemTable walks the three remote-table columns and groups values by
// the full timeMark.localPortNum.remIndex instance suffix.
func walkRemTable(sn *gosnmp.GoSNMP) ([]remRow, error) {
	type column struct {
		oid string
		set func(*remRow, string)
	}
	columns := []column{
		{oidRemChassisID, func(r *remRow, v string) { r.chassisID = v }},
		{oidRemPortID, func(r *remRow, v string) { r.portID = v }},
		{oidRemSysName, func(r *remRow, v string) { r.sysName = v }},
	}

	rows := map[string]*remRow{}
	var keys []string
	for _, col := range columns {
		err := sn.BulkWalk(col.oid, func(pdu gosnmp.SnmpPDU) error {
			suffix := instanceSuffix(pdu.Name, col.oid)
			if suffix == "" {
				return nil
			}
			row, ok := rows[suffix]
			if !ok {
				row = &remRow{localPortNum: remLocalPortNum(suffix)}
				rows[suffix] = row
				keys = append(keys, suffix)
			}
			col.set(row, valueToString(pdu.Value))
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(keys)
	out := make([]remRow, 0, len(keys))
	for _, key := range keys {
		out = append(out, *rows[key])
	}
	return out, nil
}

// instanceSuffix returns the instance part of a walked OID, without the
// leading dot.
func instanceSuffix(name, base string) string {
	name = strings.TrimPrefix(name, ".")
	base = strings.TrimPrefix(base, ".")
	if !strings.HasPrefix(name, base+".") {
		return ""
	}
	return name[len(base)+1:]
}

// remLocalPortNum extracts lldpRemLocalPortNum from the remote-table
// instance suffix timeMark.localPortNum.remIndex.
func remLocalPortNum(suffix string) int {
	parts := strings.Split(suffix, ".")
	if len(parts) < 2 {
		return 0
	}
	n, _ := strconv.Atoi(parts[1])
	return n
}

func lastIndex(name string) int {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return 0
	}
	n, _ := strconv.Atoi(name[i+1:])
	return n
}

func valueToString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []byte:
		return strings.TrimSpace(string(t))
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}
