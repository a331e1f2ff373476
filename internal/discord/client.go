package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://discord.com/api/v10"

// Client is a minimal Discord REST client covering the two calls the
// relay needs: opening a DM channel and posting an embed into it.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient builds a client authenticating as a bot with the given token.
func NewClient(token string) *Client {
	return &Client{
		token:   token,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Embed is the structured message body posted into a channel.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

// EmbedField is one name/value pair rendered inside an embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// CreateDM opens (or reuses) the DM channel with the given user and
// returns its channel id.
func (c *Client) CreateDM(ctx context.Context, recipientID string) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/users/@me/channels", map[string]string{"recipient_id": recipientID}, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// SendEmbed posts a single embed message into the given channel.
func (c *Client) SendEmbed(ctx context.Context, channelID string, embed Embed) error {
	body := map[string]any{"embeds": []Embed{embed}}
	return c.post(ctx, "/channels/"+channelID+"/messages", body, nil)
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bot "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Discord error bodies are short JSON blobs; keep them for diagnostics.
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("discord: POST %s returned %d: %s", path, resp.StatusCode, string(detail))
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
