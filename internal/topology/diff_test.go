package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intent(deviceA, portA, deviceB, portB string) LinkIntent {
	return LinkIntent{
		DeviceA:   deviceA,
		PortARaw:  portA,
		PortANorm: NormalizePort(portA),
		DeviceB:   deviceB,
		PortBRaw:  portB,
		PortBNorm: NormalizePort(portB),
	}
}

func asis(deviceA, portA, deviceB, portB string, conf Confidence) AsIsLink {
	return AsIsLink{
		DeviceA:    deviceA,
		PortA:      portA,
		DeviceB:    deviceB,
		PortB:      portB,
		Confidence: conf,
		Evidence:   []string{"lldp"},
	}
}

func TestDiffExactMatch(t *testing.T) {
	diffs := Diff(
		[]LinkIntent{intent("leaf01", "Eth1/1", "spine01", "Eth1/1")},
		[]AsIsLink{asis("leaf01", "Eth1/1", "spine01", "Eth1/1", ConfidenceObserved)},
	)

	require.Len(t, diffs, 1)
	assert.Equal(t, StatusExactMatch, diffs[0].Status)
	assert.Equal(t, "normalized ports matched", diffs[0].Reason)
	require.NotNil(t, diffs[0].AsIs)
	assert.Equal(t, "spine01", diffs[0].AsIs.DeviceB)
}

func TestDiffExactMatchIsOrderInsensitive(t *testing.T) {
	// intent written B-A still matches the canonically ordered link
	diffs := Diff(
		[]LinkIntent{intent("spine01", "Eth1/1", "leaf01", "Eth1/1")},
		[]AsIsLink{asis("leaf01", "Eth1/1", "spine01", "Eth1/1", ConfidenceObserved)},
	)

	require.Len(t, diffs, 1)
	assert.Equal(t, StatusExactMatch, diffs[0].Status)
}

func TestDiffPortMismatch(t *testing.T) {
	diffs := Diff(
		[]LinkIntent{intent("leaf01", "Eth1/1", "spine01", "Eth1/2")},
		[]AsIsLink{asis("leaf01", "Eth1/1", "spine01", "Eth1/3", ConfidenceObserved)},
	)

	require.Len(t, diffs, 1)
	assert.Equal(t, StatusPortMismatch, diffs[0].Status)
	assert.Equal(t, "remote port differs: Eth1/1-Eth1/3", diffs[0].Reason)
	assert.Nil(t, diffs[0].AsIs)
}

func TestDiffDeviceMismatch(t *testing.T) {
	diffs := Diff(
		[]LinkIntent{intent("leaf01", "Eth1/1", "spine01", "Eth1/2")},
		[]AsIsLink{asis("leaf02", "Eth1/1", "spine02", "Eth1/2", ConfidenceObserved)},
	)

	require.Len(t, diffs, 1)
	assert.Equal(t, StatusDeviceMismatch, diffs[0].Status)
	assert.Equal(t, "remote device differs: leaf02-spine02", diffs[0].Reason)
}

func TestDiffMissingAsIs(t *testing.T) {
	diffs := Diff(
		[]LinkIntent{
			intent("leaf01", "Eth1/1", "spine01", "Eth1/2"),
			intent("leaf02", "Eth1/1", "spine02", "Eth1/2"),
		},
		nil,
	)

	require.Len(t, diffs, 2)
	for _, d := range diffs {
		assert.Equal(t, StatusMissingAsIs, d.Status)
		assert.Equal(t, "no lldp observation", d.Reason)
	}
}

func TestDiffPartialObservedNamesCandidate(t *testing.T) {
	diffs := Diff(
		[]LinkIntent{intent("leaf01", "Eth1/1", "spine01", "Eth1/1")},
		[]AsIsLink{asis("chassis-raw", Unknown, "leaf01", "Eth1/1", ConfidencePartial)},
	)

	require.Len(t, diffs, 1)
	assert.Equal(t, StatusPartialObserved, diffs[0].Status)
	assert.Equal(t, "partial LLDP observation: chassis-raw:unknown-leaf01:Eth1/1", diffs[0].Reason)
	require.NotNil(t, diffs[0].AsIs)
}

func TestDiffUnknownOnMultipleCandidates(t *testing.T) {
	diffs := Diff(
		[]LinkIntent{intent("leaf01", "Eth1/1", "spine01", "Eth1/2")},
		[]AsIsLink{
			asis("leaf01", "Eth1/9", "spine01", "Eth1/9", ConfidenceObserved),
			asis("leaf01", "Eth1/1", "spine09", "Eth1/2", ConfidenceObserved),
		},
	)

	require.Len(t, diffs, 1)
	assert.Equal(t, StatusUnknown, diffs[0].Status)
	assert.Equal(t,
		"multiple candidates: leaf01:Eth1/9-spine01:Eth1/9, leaf01:Eth1/1-spine09:Eth1/2",
		diffs[0].Reason)
}

func TestDiffSingleNonPartialCandidateFallsThrough(t *testing.T) {
	// one candidate by device-pair equality that is not partial: the
	// candidate branch is skipped and the device-pair check produces a
	// port mismatch instead
	diffs := Diff(
		[]LinkIntent{intent("leaf01", "Eth1/1", "spine01", "Eth1/2")},
		[]AsIsLink{asis("leaf01", "Eth1/5", "spine01", "Eth1/6", ConfidenceObserved)},
	)

	require.Len(t, diffs, 1)
	assert.Equal(t, StatusPortMismatch, diffs[0].Status)
}

func TestDiffUnknownSentinelWidensCandidateSearch(t *testing.T) {
	// the link shares only one device name with the intent, which is not
	// enough for strict pair equality, but the unknown sentinel in the
	// link's fields enables the overlap test
	diffs := Diff(
		[]LinkIntent{intent("leaf01", "Eth1/1", "spine01", "Eth1/1")},
		[]AsIsLink{asis("leaf01", "Eth1/7", Unknown, Unknown, ConfidenceUnknown)},
	)

	require.Len(t, diffs, 1)
	assert.Equal(t, StatusPartialObserved, diffs[0].Status)
	assert.Contains(t, diffs[0].Reason, "leaf01:Eth1/7")
}

func TestDiffPortMismatchWinsOverDeviceMismatch(t *testing.T) {
	// crossed ports: the link matches the intent's device pair and its port
	// pair, but not the exact key; it resolves to PORT_MISMATCH because
	// that branch is checked first
	diffs := Diff(
		[]LinkIntent{intent("leaf01", "Eth1/1", "spine01", "Eth1/2")},
		[]AsIsLink{asis("leaf01", "Eth1/2", "spine01", "Eth1/1", ConfidenceObserved)},
	)

	require.Len(t, diffs, 1)
	assert.Equal(t, StatusPortMismatch, diffs[0].Status)
	assert.Equal(t, "remote port differs: Eth1/2-Eth1/1", diffs[0].Reason)
}

func TestDiffPreservesIntentOrder(t *testing.T) {
	intents := []LinkIntent{
		intent("zz01", "Eth9/9", "zz02", "Eth9/9"),
		intent("aa01", "Eth1/1", "aa02", "Eth1/1"),
	}

	diffs := Diff(intents, nil)

	require.Len(t, diffs, 2)
	assert.Equal(t, "zz01", diffs[0].Intent.DeviceA)
	assert.Equal(t, "aa01", diffs[1].Intent.DeviceA)
}
