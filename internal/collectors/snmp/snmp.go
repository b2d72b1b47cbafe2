package snmp

// Public contract of the LLDP collection boundary plus a no-op
// implementation. The reconciliation core only ever sees the resulting
// observation list and per-device error codes.

import (
	"context"
	"sort"
	"strings"

	"wirecheck/internal/topology"
)

// Per-device error codes accumulated during collection. They pass through
// to the run summary untouched.
const (
	ErrAuthFailed        = "SNMP_AUTH_FAILED"
	ErrTargetUnreachable = "SNMP_TARGET_UNREACHABLE"
	ErrMIBMissing        = "SNMP_MIB_MISSING"
	ErrUnknown           = "SNMP_UNKNOWN_ERROR"
	ErrTableEmpty        = "LLDP_TABLE_EMPTY"
	ErrPartialRow        = "LLDP_PARTIAL_ROW"
)

type AuthV3 struct {
	User      string
	AuthProto string // MD5/SHA/SHA256...
	AuthPass  string
	PrivProto string // DES/AES/AES256...
	PrivPass  string
}

type Credentials struct {
	Version   string // "v1", "v2c" or "v3"
	Community string
	V3        *AuthV3
}

// Result is the outcome of one collection run. DeviceErrors holds error
// codes keyed by inventory device name; a failed device contributes zero
// observations but still appears here.
type Result struct {
	Observations []topology.LinkObservation
	DeviceErrors map[string][]string
}

// FailedDevices lists devices that accumulated at least one error code.
func (r Result) FailedDevices() []string {
	out := make([]string, 0, len(r.DeviceErrors))
	for name := range r.DeviceErrors {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Collector produces directional LLDP observations for inventory devices.
// The alias map resolves reported LLDP system names to inventory names.
type Collector interface {
	Collect(ctx context.Context, devices []topology.Device, aliases map[string]string) (Result, error)
}

// credentialsFor translates inventory credential fields into the session
// credential form. SNMPv3 auth/priv fields use the "PROTOCOL:secret"
// spelling.
func credentialsFor(d topology.Device) Credentials {
	cred := Credentials{Version: strings.ToLower(strings.TrimSpace(d.SNMPVersion))}
	if cred.Version == "3" || cred.Version == "v3" {
		v3 := &AuthV3{User: d.SNMPUser}
		if proto, secret, ok := splitCredential(d.SNMPAuth); ok {
			v3.AuthProto = proto
			v3.AuthPass = secret
		}
		if proto, secret, ok := splitCredential(d.SNMPPriv); ok {
			v3.PrivProto = proto
			v3.PrivPass = secret
		}
		cred.V3 = v3
		return cred
	}
	cred.Community = d.SNMPCommunity
	return cred
}

// validCredentials rejects devices that cannot possibly authenticate so no
// network round trip is wasted on them.
func validCredentials(d topology.Device) bool {
	version := strings.ToLower(strings.TrimSpace(d.SNMPVersion))
	if version == "3" || version == "v3" {
		if d.SNMPUser == "" {
			return false
		}
		_, _, authOK := splitCredential(d.SNMPAuth)
		_, _, privOK := splitCredential(d.SNMPPriv)
		if d.SNMPAuth != "" && !authOK {
			return false
		}
		if d.SNMPPriv != "" && !privOK {
			return false
		}
		// privacy without authentication is not a valid USM level
		if privOK && !authOK {
			return false
		}
		return true
	}
	return d.SNMPCommunity != ""
}

func splitCredential(raw string) (proto, secret string, ok bool) {
	proto, secret, found := strings.Cut(raw, ":")
	proto = strings.TrimSpace(proto)
	secret = strings.TrimSpace(secret)
	if !found || proto == "" || secret == "" {
		return "", "", false
	}
	return proto, secret, true
}

// NoOpCollector returns a small static observation set. Useful to exercise
// the pipeline without network access.
type NoOpCollector struct{}

func NewNoOp() *NoOpCollector {
	return &NoOpCollector{}
}

func (c *NoOpCollector) Collect(ctx context.Context, devices []topology.Device, aliases map[string]string) (Result, error) {
	obs := []topology.LinkObservation{
		{
			LocalDevice: "leaf01", LocalPortRaw: "Ethernet1/1", LocalPortNorm: "Eth1/1",
			RemoteDeviceID: "00:11:22:33:44:01", RemoteDeviceName: "spine01",
			RemotePortRaw: "Ethernet1/1", RemotePortNorm: "Eth1/1",
			Source: "lldp", Confidence: topology.ConfidenceObserved,
		},
		{
			LocalDevice: "spine01", LocalPortRaw: "Ethernet1/1", LocalPortNorm: "Eth1/1",
			RemoteDeviceID: "00:11:22:33:44:02", RemoteDeviceName: "leaf01",
			RemotePortRaw: "Ethernet1/1", RemotePortNorm: "Eth1/1",
			Source: "lldp", Confidence: topology.ConfidenceObserved,
		},
	}
	return Result{Observations: obs, DeviceErrors: map[string][]string{}}, nil
}
