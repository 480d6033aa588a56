package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Start requests the daemon to begin frame admission.
func (c *Client) Start() (*StartResponse, error) {
	var resp StartResponse
	if err := c.client.Call("Signalstate.Start", StartRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests the daemon to halt frame admission.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Signalstate.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Signalstate.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Reset clears the smoothing window and session aggregates.
func (c *Client) Reset() (*ResetResponse, error) {
	var resp ResetResponse
	if err := c.client.Call("Signalstate.Reset", ResetRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// State retrieves the latest smoothed state.
func (c *Client) State() (*StateResponse, error) {
	var resp StateResponse
	if err := c.client.Call("Signalstate.State", StateRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Aggregates retrieves per-view session aggregates.
func (c *Client) Aggregates() (*AggregatesResponse, error) {
	var resp AggregatesResponse
	if err := c.client.Call("Signalstate.Aggregates", AggregatesRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetRate changes the admission rate.
func (c *Client) SetRate(fps int) (*RateResponse, error) {
	var resp RateResponse
	if err := c.client.Call("Signalstate.SetRate", RateRequest{FPS: fps}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("Signalstate.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
