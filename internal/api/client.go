// internal/api/client.go
package api

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"
)

// GeoJSONContentType is the media type of published collections
const GeoJSONContentType = "application/geo+json"

var (
	ErrNoIncident    = errors.New("incident name is required")
	ErrNotCollection = errors.New("payload is not a GeoJSON FeatureCollection")
)

// Receipt is the frontend's answer to a publish
type Receipt struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Features int    `json:"features"`
}

// Client publishes incident overlays to the map web frontend.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a new API client.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Healthcheck checks if the web frontend is reachable.
func (c *Client) Healthcheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthcheck", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("healthcheck request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthcheck returned status %d", resp.StatusCode)
	}
	return nil
}

// Publish uploads the GeoJSON FeatureCollection of an incident. The collection
// is checked locally first; the frontend verifies the feature count and the
// SHA-256 checksum sent alongside it.
func (c *Client) Publish(ctx context.Context, incident string, collection []byte) (Receipt, error) {
	if strings.TrimSpace(incident) == "" {
		return Receipt{}, ErrNoIncident
	}
	features, err := countFeatures(collection)
	if err != nil {
		return Receipt{}, err
	}
	sum := sha256.Sum256(collection)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	_ = writer.WriteField("incident", incident)
	_ = writer.WriteField("features", strconv.Itoa(features))
	_ = writer.WriteField("sha256", hex.EncodeToString(sum[:]))

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="collection"; filename=%q`, fileName(incident)))
	h.Set("Content-Type", GeoJSONContentType)
	part, err := writer.CreatePart(h)
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := part.Write(collection); err != nil {
		return Receipt{}, fmt.Errorf("failed to write collection: %w", err)
	}
	if err := writer.Close(); err != nil {
		return Receipt{}, fmt.Errorf("failed to close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/incidents/publish", &body)
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Receipt{}, fmt.Errorf("publish request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Receipt{}, fmt.Errorf("publish returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var r Receipt
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil && !errors.Is(err, io.EOF) {
		return Receipt{}, fmt.Errorf("failed to decode receipt: %w", err)
	}
	if r.Features == 0 {
		r.Features = features
	}
	if r.Features != features {
		return r, fmt.Errorf("frontend stored %d features, sent %d", r.Features, features)
	}
	return r, nil
}

// countFeatures checks that b is a FeatureCollection and counts its features
func countFeatures(b []byte) (int, error) {
	var fc struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(b, &fc); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNotCollection, err)
	}
	if fc.Type != "FeatureCollection" {
		return 0, fmt.Errorf("%w: type %q", ErrNotCollection, fc.Type)
	}
	return len(fc.Features), nil
}

func fileName(incident string) string {
	return strings.NewReplacer(" ", "_", "/", "_", ":", "_").Replace(incident) + ".geojson"
}
