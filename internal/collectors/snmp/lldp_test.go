package snmp

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wirecheck/internal/topology"
)

func v2cDevice(name, ip string) topology.Device {
	return topology.Device{Name: name, MgmtIP: ip, SNMPVersion: "v2c", SNMPCommunity: "public"}
}

func TestBuildObservationResolvesAliasAndLocalPort(t *testing.T) {
	locPorts := map[int]string{5: "GigabitEthernet1/4"}
	row := remRow{localPortNum: 5, chassisID: "00:aa:bb:cc:dd:ee", portID: "Te1-1", sysName: "spine01.example.com"}
	aliases := map[string]string{"spine01.example.com": "spine01"}

	obs := buildObservation("leaf01", locPorts, row, aliases)

	assert.Equal(t, "leaf01", obs.LocalDevice)
	assert.Equal(t, "GigabitEthernet1/4", obs.LocalPortRaw)
	assert.Equal(t, "Eth1/4", obs.LocalPortNorm)
	assert.Equal(t, "spine01", obs.RemoteDeviceName)
	assert.Equal(t, "Eth1/1", obs.RemotePortNorm)
	assert.Equal(t, topology.ConfidenceObserved, obs.Confidence)
	assert.Empty(t, obs.Errors)
}

func TestBuildObservationPartialRow(t *testing.T) {
	row := remRow{localPortNum: 9, chassisID: "00:aa:bb:cc:dd:ee"}

	obs := buildObservation("leaf01", nil, row, nil)

	assert.Equal(t, topology.Unknown, obs.LocalPortRaw)
	assert.Equal(t, topology.Unknown, obs.RemoteDeviceName)
	assert.Equal(t, topology.Unknown, obs.RemotePortRaw)
	assert.Equal(t, topology.ConfidencePartial, obs.Confidence)
	assert.Equal(t, []string{ErrPartialRow}, obs.Errors)
}

func TestResolveDeviceName(t *testing.T) {
	aliases := map[string]string{"leaf01.lab": "leaf01"}

	assert.Equal(t, "leaf01", resolveDeviceName("LEAF01.lab", aliases))
	assert.Equal(t, "sw-unmapped", resolveDeviceName("sw-unmapped", aliases))
	assert.Equal(t, topology.Unknown, resolveDeviceName("", aliases))
}

func TestClassifyError(t *testing.T) {
	tests := map[string]struct {
		err  error
		want string
	}{
		"timeout":     {errors.New("request timeout (after 1 retries)"), ErrTargetUnreachable},
		"refused":     {errors.New("dial udp: connection refused"), ErrTargetUnreachable},
		"auth":        {errors.New("authentication failure"), ErrAuthFailed},
		"wrong user":  {errors.New("unknown user name"), ErrAuthFailed},
		"missing oid": {errors.New("no such object available on this agent"), ErrMIBMissing},
		"other":       {errors.New("strange failure"), ErrUnknown},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.want, classifyError(test.err))
		})
	}
}

func TestValidCredentials(t *testing.T) {
	tests := map[string]struct {
		device topology.Device
		want   bool
	}{
		"v2c with community": {v2cDevice("d", "10.0.0.1"), true},
		"v2c without community": {
			topology.Device{Name: "d", MgmtIP: "10.0.0.1", SNMPVersion: "v2c"}, false},
		"v3 auth priv": {
			topology.Device{Name: "d", MgmtIP: "10.0.0.1", SNMPVersion: "v3",
				SNMPUser: "admin", SNMPAuth: "SHA:secret", SNMPPriv: "AES:secret"}, true},
		"v3 no user": {
			topology.Device{Name: "d", MgmtIP: "10.0.0.1", SNMPVersion: "v3",
				SNMPAuth: "SHA:secret"}, false},
		"v3 malformed auth": {
			topology.Device{Name: "d", MgmtIP: "10.0.0.1", SNMPVersion: "v3",
				SNMPUser: "admin", SNMPAuth: "justasecret"}, false},
		"v3 priv without auth": {
			topology.Device{Name: "d", MgmtIP: "10.0.0.1", SNMPVersion: "v3",
				SNMPUser: "admin", SNMPPriv: "AES:secret"}, false},
		"v3 noauth nopriv": {
			topology.Device{Name: "d", MgmtIP: "10.0.0.1", SNMPVersion: "v3",
				SNMPUser: "admin"}, true},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.want, validCredentials(test.device))
		})
	}
}

func TestCredentialsForParsesV3(t *testing.T) {
	cred := credentialsFor(topology.Device{
		SNMPVersion: "v3", SNMPUser: "admin",
		SNMPAuth: "SHA256:authsecret", SNMPPriv: "AES256:privsecret",
	})

	require.NotNil(t, cred.V3)
	assert.Equal(t, "admin", cred.V3.User)
	assert.Equal(t, "SHA256", cred.V3.AuthProto)
	assert.Equal(t, "authsecret", cred.V3.AuthPass)
	assert.Equal(t, "AES256", cred.V3.PrivProto)
	assert.Equal(t, "privsecret", cred.V3.PrivPass)
}

func TestInstanceSuffix(t *testing.T) {
	suffix := instanceSuffix(".1.0.8802.1.1.2.1.4.1.1.9.0.5.1", oidRemSysName)
	assert.Equal(t, "0.5.1", suffix)
	assert.Equal(t, 5, remLocalPortNum(suffix))

	assert.Equal(t, "", instanceSuffix(".1.3.6.1.2.1.1.5.0", oidRemSysName))
	assert.Equal(t, 0, remLocalPortNum("7"))
}

func TestCollectorCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewLLDP()
	_, err := c.Collect(ctx, []topology.Device{v2cDevice("leaf01", "10.0.0.1")}, nil)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestCollectorRejectsInvalidCredentialsWithoutNetwork(t *testing.T) {
	c := NewLLDP()
	result, err := c.Collect(context.Background(),
		[]topology.Device{{Name: "leaf01", MgmtIP: "10.0.0.1", SNMPVersion: "v2c"}}, nil)

	require.NoError(t, err)
	assert.Empty(t, result.Observations)
	assert.Equal(t, []string{ErrAuthFailed}, result.DeviceErrors["leaf01"])
	assert.Equal(t, []string{"leaf01"}, result.FailedDevices())
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "observations.json")
	in := []topology.LinkObservation{
		{
			LocalDevice: "leaf01", LocalPortRaw: "Eth1/1", LocalPortNorm: "Eth1/1",
			RemoteDeviceID: "c1", RemoteDeviceName: "spine01",
			RemotePortRaw: "Eth1/1", RemotePortNorm: "Eth1/1",
			Source: "lldp", Confidence: topology.ConfidencePartial,
			Errors: []string{ErrPartialRow},
		},
	}

	require.NoError(t, SaveObservations(path, in))
	out, err := LoadObservations(path)

	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestNoOpCollectorObservationsDeduplicate(t *testing.T) {
	result, err := NewNoOp().Collect(context.Background(), nil, nil)
	require.NoError(t, err)

	links := topology.Deduplicate(result.Observations)

	require.Len(t, links, 1)
	assert.Equal(t, topology.ConfidenceObserved, links[0].Confidence)
}
