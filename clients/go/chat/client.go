// Package chat provides a client for the chatinterface dashboard API. It
// mirrors the server's request surface and carries the reconciliation logic
// shared by the CLI and other Go consumers: REST calls, an SSE watch loop,
// and a polling view reconciler.
package chat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Participant mirrors the server's participant record.
type Participant struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Color       string     `json:"color,omitempty"`
	Avatar      string     `json:"avatar,omitempty"`
	Status      string     `json:"status"`
	CurrentTask string     `json:"current_task,omitempty"`
	LastActive  *time.Time `json:"last_active,omitempty"`
	Role        string     `json:"role"`
}

// Message mirrors the server's message record.
type Message struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	To        string `json:"to,omitempty"`
	Content   string `json:"content"`
	Kind      string `json:"kind"`
	Timestamp int64  `json:"ts"`
	Read      bool   `json:"read"`
}

// Activity mirrors the server's activity record.
type Activity struct {
	ID          string            `json:"id"`
	ActorID     string            `json:"actor_id"`
	Type        string            `json:"type"`
	Description string            `json:"description"`
	Timestamp   int64             `json:"ts"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Snapshot is the full-state fetch body.
type Snapshot struct {
	Participants []Participant `json:"participants"`
	Messages     []Message     `json:"messages"`
	Activities   []Activity    `json:"activities"`
}

// HealthResponse mirrors the server's health body.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Mode    string `json:"mode"`
}

// CommandResponse acknowledges an accepted dispatch.
type CommandResponse struct {
	CommandMessageID string `json:"command_message_id"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client is a chatinterface API client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client for the given server URL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Health checks the server health endpoint.
func (c *Client) Health() (*HealthResponse, error) {
	var out HealthResponse
	if err := c.get("/health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSnapshot fetches the full current state.
func (c *Client) GetSnapshot() (*Snapshot, error) {
	var out Snapshot
	if err := c.get("/snapshot", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListParticipants fetches all participants.
func (c *Client) ListParticipants() ([]Participant, error) {
	var out []Participant
	if err := c.get("/participants", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetParticipant fetches one participant by id.
func (c *Client) GetParticipant(id string) (*Participant, error) {
	var out Participant
	if err := c.get("/participants/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login marks a participant online.
func (c *Client) Login(id string) (*Participant, error) {
	var out Participant
	if err := c.post("/participants/"+url.PathEscape(id)+"/login", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout marks a participant offline.
func (c *Client) Logout(id string) (*Participant, error) {
	var out Participant
	if err := c.post("/participants/"+url.PathEscape(id)+"/logout", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetStatus updates a participant's status and/or task. Nil fields are left
// unchanged.
func (c *Client) SetStatus(id string, status, task *string) (*Participant, error) {
	body := map[string]*string{}
	if status != nil {
		body["status"] = status
	}
	if task != nil {
		body["task"] = task
	}
	var out Participant
	if err := c.post("/participants/"+url.PathEscape(id)+"/status", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMessages fetches the recent message tail, optionally filtered to one
// participant's view.
func (c *Client) ListMessages(limit int, participant string) ([]Message, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if participant != "" {
		q.Set("participant", participant)
	}
	path := "/messages"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out struct {
		Messages []Message `json:"messages"`
	}
	if err := c.get(path, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// SendMessage posts a message. An empty to means broadcast; an empty kind
// defaults to text.
func (c *Client) SendMessage(from, to, content, kind string) (*Message, error) {
	body := map[string]string{"from": from, "content": content}
	if to != "" {
		body["to"] = to
	}
	if kind != "" {
		body["kind"] = kind
	}
	var out Message
	if err := c.post("/messages", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkRead flags a message as read.
func (c *Client) MarkRead(messageID string) (*Message, error) {
	var out Message
	if err := c.post("/messages/"+url.PathEscape(messageID)+"/read", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListActivities fetches the newest activities.
func (c *Client) ListActivities(limit int) ([]Activity, error) {
	path := "/activities"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out struct {
		Activities []Activity `json:"activities"`
	}
	if err := c.get(path, &out); err != nil {
		return nil, err
	}
	return out.Activities, nil
}

// RecordActivity writes an activity entry directly.
func (c *Client) RecordActivity(actorID, typ, description string, metadata map[string]string) (*Activity, error) {
	body := map[string]any{
		"actor_id":    actorID,
		"type":        typ,
		"description": description,
	}
	if len(metadata) > 0 {
		body["metadata"] = metadata
	}
	var out Activity
	if err := c.post("/activities", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DispatchCommand dispatches a command to an agent. The returned id is the
// command message; the response arrives later via fan-out.
func (c *Client) DispatchCommand(agentID, command, callerID string) (string, error) {
	return c.dispatch("/agents/"+url.PathEscape(agentID)+"/command", command, callerID)
}

// DispatchOwnerCommand is the owner-only variant.
func (c *Client) DispatchOwnerCommand(agentID, command, ownerID string) (string, error) {
	return c.dispatch("/agents/"+url.PathEscape(agentID)+"/owner-command", command, ownerID)
}

func (c *Client) dispatch(path, command, callerID string) (string, error) {
	body := map[string]string{"command": command, "caller_id": callerID}
	var out CommandResponse
	if err := c.post(path, body, &out); err != nil {
		return "", err
	}
	return out.CommandMessageID, nil
}

func (c *Client) get(path string, out any) error {
	resp, err := c.HTTPClient.Get(c.BaseURL + path)
	if err != nil {
		return err
	}
	return decode(resp, out)
}

func (c *Client) post(path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	resp, err := c.HTTPClient.Post(c.BaseURL+path, "application/json", &buf)
	if err != nil {
		return err
	}
	return decode(resp, out)
}

func decode(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
		}
		return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
