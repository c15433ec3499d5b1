// Copyright 2025 Edgeo SCADA
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package homematic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCaller struct {
	mock.Mock
}

func (m *mockCaller) Call(ctx context.Context, method string, params ...Value) (Value, error) {
	args := m.Called(ctx, method, params)
	return args.Get(0), args.Error(1)
}

func (m *mockCaller) expect(result Value, err error, method string, params ...Value) {
	m.On("Call", mock.Anything, method, params).Return(result, err).Once()
}

func newTestClient(t *testing.T, opts ...Option) (*Client, *mockCaller) {
	t.Helper()
	caller := &mockCaller{}
	client, err := NewClient(caller, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { caller.AssertExpectations(t) })
	return client, caller
}

func TestInterfacePorts(t *testing.T) {
	assert.Equal(t, 2001, BidCosWiredPort)
	assert.Equal(t, 2010, BidCosRFPort)
}

func TestNewClientNoCaller(t *testing.T) {
	_, err := NewClient(nil)
	assert.ErrorIs(t, err, ErrNoCaller)
}

func TestClientListDevices(t *testing.T) {
	client, caller := newTestClient(t)
	caller.expect(Array{minimalDevice(), channel("EQ0123456:1", "EQ0123456")}, nil, MethodListDevices)

	devices, err := client.ListDevices(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, "EQ0123456", devices[0].Address)
	assert.Equal(t, "EQ0123456", devices[1].Parent)

	s := client.Metrics().Snapshot()
	assert.Equal(t, int64(1), s.CallsSent)
	assert.Equal(t, int64(1), s.CallsSucceeded)
	assert.Equal(t, int64(2), s.EntitiesDecoded)
	assert.Equal(t, int64(0), s.ActiveCalls)
	assert.Equal(t, int64(1), s.Latency.Count)
}

func TestClientListDevicesInvalid(t *testing.T) {
	bad := channel("EQ0123456:1", "EQ0123456")
	delete(bad, "TYPE")

	client, caller := newTestClient(t)
	caller.expect(Array{minimalDevice(), bad}, nil, MethodListDevices)

	_, err := client.ListDevices(context.Background())
	require.Error(t, err)
	assert.True(t, IsDecodeError(err))
	addr, ok := EntityAddress(err)
	assert.True(t, ok)
	assert.Equal(t, "EQ0123456:1", addr)
	assert.Equal(t, int64(1), client.Metrics().DecodeFailures.Value())
}

func TestClientListDevicesSkipInvalid(t *testing.T) {
	bad := channel("EQ0123456:1", "EQ0123456")
	bad["FLAGS"] = "visible"

	client, caller := newTestClient(t, WithSkipInvalid(true), WithDecodeWorkers(4))
	caller.expect(Array{minimalDevice(), bad, channel("EQ0123456:2", "EQ0123456")}, nil, MethodListDevices)

	devices, err := client.ListDevices(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, "EQ0123456:2", devices[1].Address)
	assert.Equal(t, int64(1), client.Metrics().EntitiesSkipped.Value())
	assert.Equal(t, int64(2), client.Metrics().EntitiesDecoded.Value())
}

func TestClientFault(t *testing.T) {
	client, caller := newTestClient(t)
	caller.expect(nil, &FaultError{Code: -2, Message: "Unknown instance"}, MethodGetParamsetDescription, "XYZ:1", ParamsetMaster)

	_, err := client.GetParamsetDescription(context.Background(), "XYZ:1", ParamsetMaster)
	require.Error(t, err)
	assert.True(t, IsFault(err))
	assert.Contains(t, err.Error(), MethodGetParamsetDescription)

	var fault *FaultError
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, -2, fault.Code)

	s := client.Metrics().Snapshot()
	assert.Equal(t, int64(1), s.CallsFailed)
	assert.Equal(t, int64(1), s.FaultsReceived)
}

func TestClientTransportError(t *testing.T) {
	client, caller := newTestClient(t)
	caller.expect(nil, errors.New("connection refused"), MethodPing, "homematicctl")

	err := client.Ping(context.Background(), "homematicctl")
	require.Error(t, err)
	assert.False(t, IsFault(err))
	assert.Equal(t, int64(0), client.Metrics().FaultsReceived.Value())
	assert.Equal(t, int64(1), client.Metrics().CallsFailed.Value())
}

func TestClientParamsets(t *testing.T) {
	ctx := context.Background()
	client, caller := newTestClient(t)

	caller.expect(Struct{"STATE": Struct{
		"TYPE":       "BOOL",
		"OPERATIONS": int64(7),
		"FLAGS":      int64(1),
		"DEFAULT":    false,
		"MIN":        false,
		"MAX":        true,
	}}, nil, MethodGetParamsetDescription, "EQ0123456:1", ParamsetValues)
	caller.expect(Struct{"STATE": true}, nil, MethodGetParamset, "EQ0123456:1", ParamsetValues)
	caller.expect("", nil, MethodPutParamset, "EQ0123456:1", ParamsetMaster, Struct{"MODE": int64(1)})
	caller.expect("HM-CC-RT-DN:MASTER", nil, MethodGetParamsetID, "EQ0123456", ParamsetMaster)

	desc, err := client.GetParamsetDescription(ctx, "EQ0123456:1", ParamsetValues)
	require.NoError(t, err)
	assert.Equal(t, TypeBool, desc["STATE"].Type())

	ps, err := client.GetParamset(ctx, "EQ0123456:1", ParamsetValues)
	require.NoError(t, err)
	assert.Equal(t, true, ps["STATE"])

	require.NoError(t, client.PutParamset(ctx, "EQ0123456:1", ParamsetMaster, Paramset{"MODE": int64(1)}))

	id, err := client.GetParamsetID(ctx, "EQ0123456", ParamsetMaster)
	require.NoError(t, err)
	assert.Equal(t, "HM-CC-RT-DN:MASTER", id)
}

func TestClientValues(t *testing.T) {
	ctx := context.Background()
	client, caller := newTestClient(t)

	caller.expect(21.5, nil, MethodGetValue, "EQ0123456:4", "ACTUAL_TEMPERATURE")
	caller.expect("", nil, MethodSetValue, "EQ0123456:4", "SET_TEMPERATURE", 20.0)
	caller.expect("", nil, MethodDetermineParameter, "EQ0123456:4", ParamsetMaster, "OFFSET")

	v, err := client.GetValue(ctx, "EQ0123456:4", "ACTUAL_TEMPERATURE")
	require.NoError(t, err)
	assert.Equal(t, 21.5, v)

	require.NoError(t, client.SetValue(ctx, "EQ0123456:4", "SET_TEMPERATURE", 20.0))
	require.NoError(t, client.DetermineParameter(ctx, "EQ0123456:4", ParamsetMaster, "OFFSET"))
}

func TestClientDeviceManagement(t *testing.T) {
	ctx := context.Background()
	client, caller := newTestClient(t)

	caller.expect("", nil, MethodDeleteDevice, "EQ0123456", int64(3))
	caller.expect("", nil, MethodAbortDeleteDevice, "EQ0123456")
	caller.expect(minimalDevice(), nil, MethodGetDeviceDescription, "EQ0123456")

	require.NoError(t, client.DeleteDevice(ctx, "EQ0123456", DeleteReset|DeleteForce))
	require.NoError(t, client.AbortDeleteDevice(ctx, "EQ0123456"))

	d, err := client.GetDeviceDescription(ctx, "EQ0123456")
	require.NoError(t, err)
	assert.Equal(t, "HM-CC-RT-DN", d.Type)
}

func TestClientInstallMode(t *testing.T) {
	ctx := context.Background()
	client, caller := newTestClient(t)

	caller.expect("", nil, MethodSetInstallMode, true)
	caller.expect("", nil, MethodSetInstallMode, true, int64(90), int64(InstallModeReset))
	caller.expect("", nil, MethodSetInstallMode, true, int64(60), "EQ0123456")
	caller.expect(int64(42), nil, MethodGetInstallMode)

	require.NoError(t, client.SetInstallMode(ctx, true))
	require.NoError(t, client.SetInstallModeWithTimeout(ctx, true, 90*time.Second+500*time.Millisecond, InstallModeReset))
	require.NoError(t, client.SetInstallModeForAddress(ctx, true, time.Minute, "EQ0123456"))

	remaining, err := client.GetInstallMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, 42*time.Second, remaining)

	assert.Equal(t, "reset", InstallModeReset.String())
	assert.Equal(t, "mode(9)", InstallMode(9).String())
}

func TestClientKeys(t *testing.T) {
	ctx := context.Background()
	client, caller := newTestClient(t)

	caller.expect("EQ7654321", nil, MethodGetKeyMismatchDevice, true)
	caller.expect("", nil, MethodSetTempKey, "secret")

	addr, err := client.GetKeyMismatchDevice(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, "EQ7654321", addr)
	require.NoError(t, client.SetTempKey(ctx, "secret"))
}

func TestClientServiceMessages(t *testing.T) {
	client, caller := newTestClient(t, WithSkipInvalid(true))
	caller.expect(Array{
		Array{"EQ0123456:0", MessageLowBat, true},
		Array{"EQ0123456:0", MessageUnreach},
	}, nil, MethodGetServiceMessages)

	msgs, err := client.GetServiceMessages(context.Background())
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, MessageLowBat, msgs[0].ID)
	assert.Equal(t, int64(1), client.Metrics().EntitiesSkipped.Value())
}

func TestClientVersion(t *testing.T) {
	client, caller := newTestClient(t)
	caller.expect("1.536", nil, MethodGetVersion)
	caller.expect(int64(1), nil, MethodGetVersion)

	v, err := client.GetVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.536", v)

	_, err = client.GetVersion(context.Background())
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

type deadlineCaller struct {
	deadline time.Time
	ok       bool
}

func (c *deadlineCaller) Call(ctx context.Context, method string, params ...Value) (Value, error) {
	c.deadline, c.ok = ctx.Deadline()
	return "", nil
}

func TestClientTimeout(t *testing.T) {
	caller := &deadlineCaller{}
	client, err := NewClient(caller, WithTimeout(time.Minute))
	require.NoError(t, err)
	require.NoError(t, client.Ping(context.Background(), "x"))
	assert.True(t, caller.ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), caller.deadline, 5*time.Second)

	client, err = NewClient(caller, WithTimeout(0))
	require.NoError(t, err)
	require.NoError(t, client.Ping(context.Background(), "x"))
	assert.False(t, caller.ok)
}
