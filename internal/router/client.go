package router

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/routerctl/internal/logging"
	"github.com/muurk/routerctl/internal/soap"
	"github.com/muurk/routerctl/internal/urls"
)

// Client represents a session to a router's SOAP control API
type Client struct {
	cfg     Config
	soapURL string
	infoURL string

	transport Transport
	log       *zap.Logger
	session   *Session
}

// Option customizes a Client
type Option func(*Client)

// WithTransport replaces the HTTP transport
func WithTransport(t Transport) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// WithLogger sets the logger used for request and session diagnostics
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// WithCurrentSettingURL overrides the /currentsetting.htm location
func WithCurrentSettingURL(u string) Option {
	return func(c *Client) {
		c.infoURL = u
	}
}

// NewClient creates a client for the router described by cfg.
// Zero fields take their defaults; the result is validated.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:     cfg,
		soapURL: urls.SOAPURL(cfg.Host, cfg.Port),
		infoURL: urls.CurrentSettingURL(cfg.Host),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.transport == nil {
		c.transport = NewHTTPTransport(cfg.Timeout)
	}
	if c.log == nil {
		c.log = logging.GetLogger()
	}
	c.log = c.log.With(zap.String("router", cfg.Host))

	c.session = NewSession(cfg, c.soapURL, c.transport, c.log)

	return c, nil
}

// Host returns the router host
func (c *Client) Host() string {
	return c.cfg.Host
}

// Timeout returns the per-request timeout
func (c *Client) Timeout() time.Duration {
	return c.cfg.Timeout
}

// SOAPURL returns the SOAP endpoint the client talks to
func (c *Client) SOAPURL() string {
	return c.soapURL
}

// IsAuthenticated reports whether the last login is still considered valid
func (c *Client) IsAuthenticated() bool {
	return c.session.State() == StateAuthenticated
}

// LastResponse returns the last SOAP response received, for diagnostics
func (c *Client) LastResponse() *soap.RawResponse {
	return c.session.LastResponse()
}

// GetCurrentSetting reads router information without credentials
func (c *Client) GetCurrentSetting(ctx context.Context) (CurrentSetting, error) {
	c.log.Debug("Get current setting", zap.String("url", c.infoURL))

	resp, err := c.transport.Get(ctx, c.infoURL)
	if err != nil {
		return nil, NewTransportError("currentsetting", "GET request failed", c.cfg.Host, err)
	}

	if resp.StatusCode != 200 {
		return nil, NewParseError("currentsetting", fmt.Sprintf("unexpected status code %d", resp.StatusCode), resp.Body, nil)
	}

	return parseCurrentSetting(resp.Body)
}

// Login authenticates against the router. Other operations log in on
// demand, so calling it is optional.
func (c *Client) Login(ctx context.Context) error {
	c.log.Debug("Login")
	return c.session.Login(ctx)
}

// GetAttachedDevices lists the devices attached to the router
func (c *Client) GetAttachedDevices(ctx context.Context) ([]Device, error) {
	c.log.Debug("Get attached devices")

	resp, err := c.session.Execute(ctx, soap.ActionGetAttachedDevices,
		soap.AttachDevicesEnvelope(c.session.SessionID()))
	if err != nil {
		return nil, err
	}

	return parseAttachedDevices(resp.Body)
}

// GetAttachedDevices2 lists attached devices with the extended fields
// newer firmware reports
func (c *Client) GetAttachedDevices2(ctx context.Context) ([]DeviceDetail, error) {
	c.log.Debug("Get attached devices2")

	resp, err := c.session.Execute(ctx, soap.ActionGetAttachedDevices2,
		soap.AttachDevices2Envelope(c.session.SessionID()))
	if err != nil {
		return nil, err
	}

	return parseAttachedDevices2(resp.Body)
}

// GetTrafficMeter returns today's traffic counters
func (c *Client) GetTrafficMeter(ctx context.Context) (*TrafficStats, error) {
	c.log.Debug("Get traffic meter")

	resp, err := c.session.Execute(ctx, soap.ActionGetTrafficMeter,
		soap.TrafficMeterEnvelope(c.session.SessionID()))
	if err != nil {
		return nil, err
	}

	return parseTrafficMeter(resp.Body)
}

// SetBlockDevice allows or blocks a device by MAC address.
//
// The change runs as a configuration transaction: ConfigurationStarted,
// SetBlockDeviceByMAC, then ConfigurationFinished. Each step is only sent
// if the previous one succeeded, and no other request on this client is
// sent while the transaction runs.
func (c *Client) SetBlockDevice(ctx context.Context, mac string, allowOrBlock AccessState) error {
	normalized, err := NormalizeMAC(mac)
	if err != nil {
		return err
	}
	req := blockRequest{MAC: normalized, AllowOrBlock: allowOrBlock}
	if err := validate.Struct(req); err != nil {
		return validationError("invalid block request", err)
	}

	sid := c.session.SessionID()
	log := c.log.With(zap.String("mac", req.MAC), zap.String("allow_or_block", string(req.AllowOrBlock)))

	log.Debug("Set block device")
	done, err := c.session.ExecuteSteps(ctx,
		Step{Action: soap.ActionConfigurationStarted, Body: soap.ConfigurationStartedEnvelope(sid)},
		Step{Action: soap.ActionSetBlockDevice, Body: soap.SetBlockDeviceEnvelope(sid, req.MAC, string(req.AllowOrBlock))},
		Step{Action: soap.ActionConfigurationFinished, Body: soap.ConfigurationFinishedEnvelope(sid)},
	)
	if err != nil {
		log.Debug("Set block device failed", zap.Int("completed_steps", len(done)), zap.Error(err))
		return err
	}

	log.Info("Device access changed")
	return nil
}
