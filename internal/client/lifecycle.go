// Package client implements the HTTP client used by the capture
// subsystem to drive a record's remote lifecycle: create, hydrate,
// update, attach a signature, complete/cancel, delete, and list.
//
// The client is transport only. It validates nothing beyond what is
// needed to build a request; field validation belongs to the form
// coordinator, and lifecycle rules are enforced server-side. Every
// operation takes a context and returns one of the typed outcomes
// defined in errors.go.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/pcosta/go-intake-backend/internal/domain"
)

// HeaderAgentID carries the authenticated agent identity. In production
// it is attached by the API gateway; the client sets it directly when
// talking to a trusted backend.
const HeaderAgentID = "X-Agent-ID"

// headerIdempotencyKey matches the server's create-deduplication header.
const headerIdempotencyKey = "Idempotency-Key"

// Payload carries the client-settable fields of a record for create and
// update calls. Server-assigned fields (id, agent, status, signature,
// timestamps) have no representation here, so they cannot be supplied.
type Payload struct {
	ClientName       string `json:"client_name"`
	ClientPhone      string `json:"client_phone,omitempty"`
	ClientEmail      string `json:"client_email,omitempty"`
	ClientReferredBy string `json:"client_referred_by,omitempty"`

	CadastralArticle  string   `json:"cadastral_article,omitempty"`
	Typology          string   `json:"typology,omitempty"`
	ConservationState string   `json:"conservation_state,omitempty"`
	GrossArea         *float64 `json:"gross_area,omitempty"`
	UsableArea        *float64 `json:"usable_area,omitempty"`
	EstimatedValue    *float64 `json:"estimated_value,omitempty"`

	AddressText string   `json:"address_text,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`

	Photos       []string `json:"photos,omitempty"`
	Observations string   `json:"observations,omitempty"`
}

// Summary is the compact list representation of a record.
type Summary struct {
	ID          string        `json:"id"`
	ClientName  string        `json:"client_name"`
	AddressText string        `json:"address_text,omitempty"`
	Status      domain.Status `json:"status"`
	PhotoCount  int           `json:"photo_count"`
	CoverPhoto  string        `json:"cover_photo,omitempty"`
	SignedAt    *time.Time    `json:"signed_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Lifecycle talks to the first-impressions API. The zero value is not
// usable; construct with New.
type Lifecycle struct {
	baseURL string
	agentID string
	http    *http.Client
	log     zerolog.Logger
}

// New returns a Lifecycle client for the API rooted at baseURL (e.g.
// "https://intake.example.com/api/v1"), acting as agentID. The default
// HTTP client carries a request timeout; callers needing different
// transport behavior can replace it with SetHTTPClient.
func New(baseURL, agentID string) *Lifecycle {
	return &Lifecycle{
		baseURL: baseURL,
		agentID: agentID,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     zerolog.Nop(),
	}
}

// SetHTTPClient replaces the underlying HTTP client (tests, custom TLS).
func (c *Lifecycle) SetHTTPClient(h *http.Client) { c.http = h }

// SetLogger attaches a logger for request-level debug output.
func (c *Lifecycle) SetLogger(l zerolog.Logger) { c.log = l }

// Create persists a new draft and returns the full record, including the
// server-assigned id and status=draft.
func (c *Lifecycle) Create(ctx context.Context, p Payload) (*domain.FirstImpression, error) {
	return c.CreateWithKey(ctx, p, "")
}

// CreateWithKey is Create with an explicit idempotency key. Retrying the
// call with the same key returns the originally created record instead
// of a duplicate draft; the form coordinator uses one key per draft
// lifecycle.
func (c *Lifecycle) CreateWithKey(ctx context.Context, p Payload, key string) (*domain.FirstImpression, error) {
	var rec domain.FirstImpression
	hdr := map[string]string{}
	if key != "" {
		hdr[headerIdempotencyKey] = key
	}
	if err := c.do(ctx, http.MethodPost, "/first-impressions", p, hdr, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Get fetches one record by id, used to hydrate edit mode.
func (c *Lifecycle) Get(ctx context.Context, id string) (*domain.FirstImpression, error) {
	var rec domain.FirstImpression
	if err := c.do(ctx, http.MethodGet, "/first-impressions/"+id, nil, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Update overwrites the record's mutable fields. Status cannot be
// changed here — transitions go through their dedicated calls.
func (c *Lifecycle) Update(ctx context.Context, id string, p Payload) (*domain.FirstImpression, error) {
	var rec domain.FirstImpression
	if err := c.do(ctx, http.MethodPut, "/first-impressions/"+id, p, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// AttachSignature submits the encoded signature image, transitioning the
// record draft → signed server-side.
func (c *Lifecycle) AttachSignature(ctx context.Context, id, imagePayload string) (*domain.FirstImpression, error) {
	body := map[string]string{"signature_image": imagePayload}
	var rec domain.FirstImpression
	if err := c.do(ctx, http.MethodPost, "/first-impressions/"+id+"/signature", body, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Complete transitions the record signed → completed.
func (c *Lifecycle) Complete(ctx context.Context, id string) (*domain.FirstImpression, error) {
	var rec domain.FirstImpression
	if err := c.do(ctx, http.MethodPost, "/first-impressions/"+id+"/complete", nil, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Cancel abandons the record from draft or signed.
func (c *Lifecycle) Cancel(ctx context.Context, id string) (*domain.FirstImpression, error) {
	var rec domain.FirstImpression
	if err := c.do(ctx, http.MethodPost, "/first-impressions/"+id+"/cancel", nil, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete removes a record; the server rejects anything past draft.
func (c *Lifecycle) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/first-impressions/"+id, nil, nil, nil)
}

// errorEnvelope mirrors the server's standard error response body.
type errorEnvelope struct {
	RequestID string            `json:"request_id,omitempty"`
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// do performs one HTTP round trip: marshal body, attach identity and
// extra headers, classify the response, and decode into out when given.
func (c *Lifecycle) do(ctx context.Context, method, path string, body any, headers map[string]string, out any) error {
	op := method + " " + path

	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderAgentID, c.agentID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug().Str("op", op).Int("status", resp.StatusCode).Msg("lifecycle call")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
		}
		return nil
	}

	if resp.StatusCode >= 500 {
		io.Copy(io.Discard, resp.Body)
		return &TransportError{Op: op, StatusCode: resp.StatusCode}
	}

	var env errorEnvelope
	_ = json.NewDecoder(resp.Body).Decode(&env)
	switch resp.StatusCode {
	case http.StatusNotFound:
		return &NotFoundError{Op: op, Message: env.Message}
	case http.StatusConflict:
		return &InvalidStateError{Code: env.Code, Message: env.Message}
	case http.StatusTooManyRequests:
		// Rate limiting is not field-addressable; retrying the identical
		// request later can succeed, so it joins the transport outcome.
		return &TransportError{Op: op, StatusCode: resp.StatusCode}
	default:
		return &ValidationError{Code: env.Code, Message: env.Message, Fields: env.Fields}
	}
}
