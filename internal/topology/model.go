package topology

// Data model for the To-Be vs As-Is reconciliation. Intents and observations
// are immutable once loaded/collected; AsIsLinks and LinkDiffs are derived
// fresh each run.

// Unknown stands in for any device name, port name or remote identifier that
// could not be resolved. It compares and sorts like any other string.
const Unknown = "unknown"

// Confidence is the trust level of an observation or deduplicated link.
type Confidence string

const (
	ConfidenceObserved Confidence = "observed"
	ConfidencePartial  Confidence = "partial"
	ConfidenceUnknown  Confidence = "unknown"
)

// DiffStatus classifies one intent against the As-Is link set.
type DiffStatus string

const (
	StatusExactMatch      DiffStatus = "EXACT_MATCH"
	StatusPortMismatch    DiffStatus = "PORT_MISMATCH"
	StatusDeviceMismatch  DiffStatus = "DEVICE_MISMATCH"
	StatusMissingAsIs     DiffStatus = "MISSING_ASIS"
	StatusPartialObserved DiffStatus = "PARTIAL_OBSERVED"
	StatusUnknown         DiffStatus = "UNKNOWN"
)

// Device is one inventory row. Aliases are alternate names the device may
// report as its LLDP system name.
type Device struct {
	Name          string   `json:"name"`
	MgmtIP        string   `json:"mgmtIP"`
	SNMPVersion   string   `json:"snmpVersion"`
	SNMPCommunity string   `json:"snmpCommunity,omitempty"`
	SNMPUser      string   `json:"snmpUser,omitempty"`
	SNMPAuth      string   `json:"snmpAuth,omitempty"`
	SNMPPriv      string   `json:"snmpPriv,omitempty"`
	Aliases       []string `json:"aliases,omitempty"`
}

// LinkIntent is one row of desired wiring. Device order is kept as written
// in the To-Be file; ports carry both the raw and normalized spelling.
type LinkIntent struct {
	DeviceA   string `json:"deviceA"`
	PortARaw  string `json:"portARaw"`
	PortANorm string `json:"portANorm"`
	DeviceB   string `json:"deviceB"`
	PortBRaw  string `json:"portBRaw"`
	PortBNorm string `json:"portBNorm"`
}

// LinkObservation is one directional LLDP report from a device's
// perspective.
type LinkObservation struct {
	LocalDevice      string     `json:"localDevice"`
	LocalPortRaw     string     `json:"localPortRaw"`
	LocalPortNorm    string     `json:"localPortNorm"`
	RemoteDeviceID   string     `json:"remoteDeviceID"`
	RemoteDeviceName string     `json:"remoteDeviceName"`
	RemotePortRaw    string     `json:"remotePortRaw"`
	RemotePortNorm   string     `json:"remotePortNorm"`
	Source           string     `json:"source"`
	Confidence       Confidence `json:"confidence"`
	Errors           []string   `json:"errors,omitempty"`
}

// AsIsLink is one undirected, deduplicated physical link. Endpoints are in
// canonical order: (DeviceA, PortA) <= (DeviceB, PortB) lexicographically.
type AsIsLink struct {
	DeviceA    string     `json:"deviceA"`
	PortA      string     `json:"portA"`
	DeviceB    string     `json:"deviceB"`
	PortB      string     `json:"portB"`
	Confidence Confidence `json:"confidence"`
	Evidence   []string   `json:"evidence"`
}

// LinkDiff is the reconciliation result for one intent. AsIs is set only
// for EXACT_MATCH and PARTIAL_OBSERVED.
type LinkDiff struct {
	Intent LinkIntent `json:"intent"`
	AsIs   *AsIsLink  `json:"asis,omitempty"`
	Status DiffStatus `json:"status"`
	Reason string     `json:"reason"`
}
