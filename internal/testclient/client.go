// Package testclient talks to a running roster service for the
// integration test runner.
package testclient

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Response is one answer from the service.
type Response struct {
	Status int
	Body   []byte
}

// Err returns the "err" member of an error body, or "".
func (r *Response) Err() string {
	return gjson.GetBytes(r.Body, "err").String()
}

// Get returns a value from the JSON body by gjson path.
func (r *Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.Body, path)
}

// Client is a test client for one service base URL such as
// "http://localhost:8080".
type Client struct {
	Name    string
	baseURL string
	http    *http.Client
}

// New creates a client for baseURL.
func New(name, baseURL string) *Client {
	return &Client{
		Name:    name,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// FormattedArmy uploads a roster file to /getFormattedArmy.
func (c *Client) FormattedArmy(filename string, data []byte, allocationMode string) (*Response, error) {
	q := url.Values{"filename": {filename}}
	if allocationMode != "" {
		q.Set("allocationMode", allocationMode)
	}
	return c.post("/getFormattedArmy", q, data)
}

// ArmyCode stores a formatted roster through /getArmyCode.
func (c *Client) ArmyCode(formatted []byte, params url.Values) (*Response, error) {
	return c.post("/getArmyCode", params, formatted)
}

// MakeArmy uploads a roster file to /makeArmyAndReturnCode.
func (c *Client) MakeArmy(filename string, data []byte) (*Response, error) {
	return c.post("/makeArmyAndReturnCode", url.Values{"filename": {filename}}, data)
}

// GetArmy fetches a stored roster by code.
func (c *Client) GetArmy(code string) (*Response, error) {
	resp, err := c.http.Get(c.baseURL + "/get_army_by_id?" + url.Values{"id": {code}}.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to get roster %s: %w", code, err)
	}
	return read(resp)
}

// UploadWS sends a roster file over the /ws endpoint and returns the reply.
func (c *Client) UploadWS(filename string, data []byte, allocationMode string) ([]byte, error) {
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()

	msg := "{}"
	msg, _ = sjson.Set(msg, "filename", filename)
	msg, _ = sjson.Set(msg, "allocationMode", allocationMode)
	msg, _ = sjson.Set(msg, "data", base64.StdEncoding.EncodeToString(data))
	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		return nil, fmt.Errorf("failed to send upload: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	_, reply, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("failed to read reply: %w", err)
	}
	return reply, nil
}

func (c *Client) post(path string, q url.Values, body []byte) (*Response, error) {
	target := c.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	resp, err := c.http.Post(target, "application/octet-stream", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to post %s: %w", path, err)
	}
	return read(resp)
}

func read(resp *http.Response) (*Response, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return &Response{Status: resp.StatusCode, Body: body}, nil
}
