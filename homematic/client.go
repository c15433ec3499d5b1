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
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// RPC method names
const (
	MethodListDevices            = "listDevices"
	MethodGetDeviceDescription   = "getDeviceDescription"
	MethodGetParamsetDescription = "getParamsetDescription"
	MethodGetParamsetID          = "getParamsetId"
	MethodGetParamset            = "getParamset"
	MethodPutParamset            = "putParamset"
	MethodGetValue               = "getValue"
	MethodSetValue               = "setValue"
	MethodDetermineParameter     = "determineParameter"
	MethodDeleteDevice           = "deleteDevice"
	MethodAbortDeleteDevice      = "abortDeleteDevice"
	MethodSetInstallMode         = "setInstallMode"
	MethodGetInstallMode         = "getInstallMode"
	MethodGetKeyMismatchDevice   = "getKeyMismatchDevice"
	MethodSetTempKey             = "setTempKey"
	MethodGetServiceMessages     = "getServiceMessages"
	MethodGetVersion             = "getVersion"
	MethodPing                   = "ping"
)

// Default interface process ports
const (
	BidCosWiredPort = 2001
	BidCosRFPort    = 2010
)

// Well known paramset keys
const (
	ParamsetMaster = "MASTER"
	ParamsetValues = "VALUES"
	ParamsetLink   = "LINK"
)

// InstallMode selects how a device is taught in
type InstallMode int32

const (
	InstallModeNormal InstallMode = 1
	// InstallModeReset resets the device to factory defaults while teaching it in
	InstallModeReset InstallMode = 2
)

func (m InstallMode) String() string {
	switch m {
	case InstallModeNormal:
		return "normal"
	case InstallModeReset:
		return "reset"
	default:
		return fmt.Sprintf("mode(%d)", int32(m))
	}
}

// Caller performs one RPC round trip. Implementations return faults reported
// by the interface process as *FaultError.
type Caller interface {
	Call(ctx context.Context, method string, params ...Value) (Value, error)
}

// Client is a HomeMatic interface process client. All responses are decoded
// into the typed domain model.
type Client struct {
	caller  Caller
	opts    *clientOptions
	metrics *Metrics
	logger  *slog.Logger
}

// NewClient creates a client calling through caller
func NewClient(caller Caller, opts ...Option) (*Client, error) {
	if caller == nil {
		return nil, ErrNoCaller
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	return &Client{
		caller:  caller,
		opts:    options,
		metrics: NewMetrics(),
		logger:  options.logger,
	}, nil
}

// Metrics returns the client metrics
func (c *Client) Metrics() *Metrics {
	return c.metrics
}

func (c *Client) call(ctx context.Context, method string, params ...Value) (Value, error) {
	if c.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.timeout)
		defer cancel()
	}

	callID := uuid.NewString()
	c.metrics.CallsSent.Inc()
	c.metrics.ActiveCalls.Inc()
	defer c.metrics.ActiveCalls.Dec()

	c.logger.Debug("rpc call",
		slog.String("call_id", callID),
		slog.String("method", method),
		slog.Int("params", len(params)),
	)

	start := time.Now()
	result, err := c.caller.Call(ctx, method, params...)
	elapsed := time.Since(start)
	c.metrics.CallLatency.Record(elapsed)
	c.metrics.RecordActivity()

	if err != nil {
		c.metrics.CallsFailed.Inc()
		var fault *FaultError
		if errors.As(err, &fault) {
			c.metrics.FaultsReceived.Inc()
		}
		c.logger.Debug("rpc failed",
			slog.String("call_id", callID),
			slog.String("method", method),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	c.metrics.CallsSucceeded.Inc()
	c.logger.Debug("rpc done",
		slog.String("call_id", callID),
		slog.String("method", method),
		slog.Duration("elapsed", elapsed),
	)
	return result, nil
}

// decoded counts a decode outcome
func (c *Client) decoded(n int, err error) {
	if err != nil {
		c.metrics.DecodeFailures.Inc()
		return
	}
	c.metrics.EntitiesDecoded.Add(int64(n))
}

// batchOptions builds the list decoding policy from the client options
func (c *Client) batchOptions(method string) []BatchOption {
	opts := []BatchOption{WithBatchWorkers(c.opts.decodeWorkers)}
	if c.opts.skipInvalid {
		opts = append(opts, WithBatchSkip(func(err error) {
			c.metrics.EntitiesSkipped.Inc()
			addr, _ := EntityAddress(err)
			c.logger.Warn("skipping invalid entry",
				slog.String("method", method),
				slog.String("address", addr),
				slog.String("error", err.Error()),
			)
		}))
	}
	return opts
}

// ListDevices returns the descriptions of all devices and channels known to
// the interface process
func (c *Client) ListDevices(ctx context.Context) ([]DeviceDescription, error) {
	v, err := c.call(ctx, MethodListDevices)
	if err != nil {
		return nil, err
	}
	devices, err := DecodeDeviceList(v, c.batchOptions(MethodListDevices)...)
	c.decoded(len(devices), err)
	return devices, err
}

// GetDeviceDescription returns the description of one device or channel
func (c *Client) GetDeviceDescription(ctx context.Context, address string) (DeviceDescription, error) {
	v, err := c.call(ctx, MethodGetDeviceDescription, address)
	if err != nil {
		return DeviceDescription{}, err
	}
	d, err := DecodeDeviceDescription(v)
	c.decoded(1, err)
	return d, err
}

// GetParamsetDescription returns the parameter descriptions of a paramset
func (c *Client) GetParamsetDescription(ctx context.Context, address, paramsetKey string) (ParamsetDescription, error) {
	v, err := c.call(ctx, MethodGetParamsetDescription, address, paramsetKey)
	if err != nil {
		return nil, err
	}
	d, err := DecodeParamsetDescription(v)
	c.decoded(len(d), err)
	return d, err
}

// GetParamsetID returns the identifier of a paramset's layout
func (c *Client) GetParamsetID(ctx context.Context, address, paramsetKey string) (string, error) {
	v, err := c.call(ctx, MethodGetParamsetID, address, paramsetKey)
	if err != nil {
		return "", err
	}
	id, err := toString("paramset id", v)
	c.decoded(1, err)
	return id, err
}

// GetParamset reads the current values of a paramset
func (c *Client) GetParamset(ctx context.Context, address, paramsetKey string) (Paramset, error) {
	v, err := c.call(ctx, MethodGetParamset, address, paramsetKey)
	if err != nil {
		return nil, err
	}
	ps, err := DecodeParamset(v)
	c.decoded(len(ps), err)
	return ps, err
}

// PutParamset writes values into a paramset. Only the ids present in ps are
// changed.
func (c *Client) PutParamset(ctx context.Context, address, paramsetKey string, ps Paramset) error {
	_, err := c.call(ctx, MethodPutParamset, address, paramsetKey, Struct(ps))
	return err
}

// GetValue reads a single value from the VALUES paramset
func (c *Client) GetValue(ctx context.Context, address, valueKey string) (Value, error) {
	return c.call(ctx, MethodGetValue, address, valueKey)
}

// SetValue writes a single value into the VALUES paramset
func (c *Client) SetValue(ctx context.Context, address, valueKey string, value Value) error {
	_, err := c.call(ctx, MethodSetValue, address, valueKey, value)
	return err
}

// DetermineParameter asks the device to measure a parameter, e.g. a
// calibration value
func (c *Client) DetermineParameter(ctx context.Context, address, paramsetKey, parameterID string) error {
	_, err := c.call(ctx, MethodDetermineParameter, address, paramsetKey, parameterID)
	return err
}

// DeleteDevice removes a device from the interface process
func (c *Client) DeleteDevice(ctx context.Context, address string, flags DeleteFlags) error {
	_, err := c.call(ctx, MethodDeleteDevice, address, int64(flags.Bits()))
	return err
}

// AbortDeleteDevice cancels a deferred delete
func (c *Client) AbortDeleteDevice(ctx context.Context, address string) error {
	_, err := c.call(ctx, MethodAbortDeleteDevice, address)
	return err
}

// SetInstallMode turns teach-in mode on or off with the default duration
func (c *Client) SetInstallMode(ctx context.Context, on bool) error {
	_, err := c.call(ctx, MethodSetInstallMode, on)
	return err
}

// SetInstallModeWithTimeout turns teach-in mode on or off for d, truncated
// to whole seconds
func (c *Client) SetInstallModeWithTimeout(ctx context.Context, on bool, d time.Duration, mode InstallMode) error {
	_, err := c.call(ctx, MethodSetInstallMode, on, int64(d/time.Second), int64(mode))
	return err
}

// SetInstallModeForAddress restricts teach-in to the device with the given
// serial
func (c *Client) SetInstallModeForAddress(ctx context.Context, on bool, d time.Duration, address string) error {
	_, err := c.call(ctx, MethodSetInstallMode, on, int64(d/time.Second), address)
	return err
}

// GetInstallMode returns the remaining teach-in time, 0 when off
func (c *Client) GetInstallMode(ctx context.Context) (time.Duration, error) {
	v, err := c.call(ctx, MethodGetInstallMode)
	if err != nil {
		return 0, err
	}
	secs, err := toInt32("install mode", v)
	c.decoded(1, err)
	if err != nil {
		return 0, err
	}
	return time.Duration(secs) * time.Second, nil
}

// GetKeyMismatchDevice returns the address of the last device that failed
// AES authentication, optionally clearing it
func (c *Client) GetKeyMismatchDevice(ctx context.Context, reset bool) (string, error) {
	v, err := c.call(ctx, MethodGetKeyMismatchDevice, reset)
	if err != nil {
		return "", err
	}
	addr, err := toString("key mismatch device", v)
	c.decoded(1, err)
	return addr, err
}

// SetTempKey sets the temporary AES key used to teach in a device with a
// non default key
func (c *Client) SetTempKey(ctx context.Context, passphrase string) error {
	_, err := c.call(ctx, MethodSetTempKey, passphrase)
	return err
}

// GetServiceMessages returns all active service messages
func (c *Client) GetServiceMessages(ctx context.Context) ([]ServiceMessage, error) {
	v, err := c.call(ctx, MethodGetServiceMessages)
	if err != nil {
		return nil, err
	}
	msgs, err := DecodeServiceMessageList(v, c.batchOptions(MethodGetServiceMessages)...)
	c.decoded(len(msgs), err)
	return msgs, err
}

// GetVersion returns the interface process version
func (c *Client) GetVersion(ctx context.Context) (string, error) {
	v, err := c.call(ctx, MethodGetVersion)
	if err != nil {
		return "", err
	}
	return toString("version", v)
}

// Ping checks that the interface process answers
func (c *Client) Ping(ctx context.Context, callerID string) error {
	_, err := c.call(ctx, MethodPing, callerID)
	return err
}
