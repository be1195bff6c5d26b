package anki

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/media"
)

const (
	// DefaultURL is where AnkiConnect listens by default
	DefaultURL = "http://localhost:8765"

	apiVersion = 6
)

// Sink receives media files and notes
type Sink interface {
	StoreMediaFile(ctx context.Context, filename string, data []byte) error
	AddNote(ctx context.Context, note Note) (int64, error)
}

// NoteOptions controls how Anki treats a submitted note
type NoteOptions struct {
	AllowDuplicate bool `json:"allowDuplicate"`
}

// Note is a card submission for the addNote action
type Note struct {
	DeckName  string            `json:"deckName"`
	ModelName string            `json:"modelName"`
	Fields    map[string]string `json:"fields"`
	Options   NoteOptions       `json:"options"`
	Tags      []string          `json:"tags"`
}

// NewNote creates a note that Anki will reject when it duplicates an
// existing one
func NewNote(deck, model string, fields Fields, tags []string) Note {
	if tags == nil {
		tags = []string{}
	}
	return Note{
		DeckName:  deck,
		ModelName: model,
		Fields:    fields.Map(),
		Options:   NoteOptions{AllowDuplicate: false},
		Tags:      tags,
	}
}

// ConnectError is an error reported by AnkiConnect. Message is the
// remote error string, unchanged.
type ConnectError struct {
	Action  string
	Message string
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("anki %s: %s", e.Action, e.Message)
}

// IsDuplicate reports whether err is AnkiConnect's duplicate note rejection
func IsDuplicate(err error) bool {
	var ce *ConnectError
	return errors.As(err, &ce) && ce.Action == "addNote" &&
		strings.Contains(strings.ToLower(ce.Message), "duplicate")
}

type request struct {
	Action  string `json:"action"`
	Version int    `json:"version"`
	Params  any    `json:"params,omitempty"`
}

type response struct {
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
}

// Connect talks to a running Anki instance through the AnkiConnect add-on.
// Calls are made once; retrying is left to the caller.
type Connect struct {
	client *resty.Client
	url    string
}

// NewConnect creates an AnkiConnect client
func NewConnect(url string, timeout time.Duration) *Connect {
	if url == "" {
		url = DefaultURL
	}
	return &Connect{
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
		url: url,
	}
}

func (c *Connect) invoke(ctx context.Context, action string, params any, result any) error {
	var out response
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(request{Action: action, Version: apiVersion, Params: params}).
		SetResult(&out).
		ForceContentType("application/json").
		Post(c.url)
	if err != nil {
		return fmt.Errorf("anki %s: %w", action, err)
	}
	if resp.IsError() {
		return fmt.Errorf("anki %s: unexpected status %d", action, resp.StatusCode())
	}
	if out.Error != nil {
		return &ConnectError{Action: action, Message: *out.Error}
	}
	if result != nil && len(out.Result) > 0 {
		if err := json.Unmarshal(out.Result, result); err != nil {
			return fmt.Errorf("anki %s: decode result: %w", action, err)
		}
	}
	return nil
}

// Version returns the AnkiConnect API version, useful as a reachability probe
func (c *Connect) Version(ctx context.Context) (int, error) {
	var v int
	if err := c.invoke(ctx, "version", nil, &v); err != nil {
		return 0, err
	}
	return v, nil
}

// StoreMediaFile uploads data into Anki's media collection under filename
func (c *Connect) StoreMediaFile(ctx context.Context, filename string, data []byte) error {
	params := map[string]string{
		"filename": filename,
		"data":     base64.StdEncoding.EncodeToString(data),
	}
	return c.invoke(ctx, "storeMediaFile", params, nil)
}

// StoreMediaFromPath uploads a local asset
func (c *Connect) StoreMediaFromPath(ctx context.Context, asset media.Asset) error {
	data, err := asset.Read()
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", asset.Path, err)
	}
	return c.StoreMediaFile(ctx, asset.Filename, data)
}

// AddNote submits a note and returns its id. A reply without an id is
// an error even when AnkiConnect reports none.
func (c *Connect) AddNote(ctx context.Context, note Note) (int64, error) {
	var id int64
	if err := c.invoke(ctx, "addNote", map[string]Note{"note": note}, &id); err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, fmt.Errorf("anki addNote: no note id in response")
	}
	return id, nil
}
