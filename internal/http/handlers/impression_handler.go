// First-impression HTTP handlers.
//
// This file exposes REST endpoints for first-impression records:
//   - POST   /first-impressions                 (create draft, idempotent)
//   - GET    /first-impressions                 (list, paginated, ETag support)
//   - GET    /first-impressions/stats           (per-status counts)
//   - GET    /first-impressions/{id}            (fetch for edit-mode hydration)
//   - PUT    /first-impressions/{id}            (update mutable fields, draft only)
//   - POST   /first-impressions/{id}/signature  (draft → signed)
//   - POST   /first-impressions/{id}/complete   (signed → completed)
//   - POST   /first-impressions/{id}/cancel     (draft|signed → cancelled)
//   - DELETE /first-impressions/{id}            (draft only)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
// Lifecycle rules live in the service; handlers only map its sentinel errors
// to status codes and stable error codes.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pcosta/go-intake-backend/internal/domain"
	"github.com/pcosta/go-intake-backend/internal/http/middleware"
	"github.com/pcosta/go-intake-backend/internal/repo"
	"github.com/pcosta/go-intake-backend/internal/services"
	"github.com/pcosta/go-intake-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// ImpressionService defines record lifecycle operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ImpressionService interface {
	// Create persists a new draft owned by agentID.
	Create(ctx context.Context, agentID string, rec *domain.FirstImpression) (*domain.FirstImpression, error)
	// Get fetches one record scoped to the agent.
	Get(ctx context.Context, agentID, id string) (*domain.FirstImpression, error)
	// List returns a page of records matching the filter plus the total count.
	List(ctx context.Context, agentID string, f repo.ImpressionFilter, skip, limit int) ([]domain.FirstImpression, int64, error)
	// Update overwrites the mutable fields of a draft.
	Update(ctx context.Context, agentID, id string, rec *domain.FirstImpression) (*domain.FirstImpression, error)
	// AttachSignature performs the draft → signed transition.
	AttachSignature(ctx context.Context, agentID, id, imagePayload string) (*domain.FirstImpression, error)
	// Complete performs the signed → completed transition.
	Complete(ctx context.Context, agentID, id string) (*domain.FirstImpression, error)
	// Cancel abandons a record from draft or signed.
	Cancel(ctx context.Context, agentID, id string) (*domain.FirstImpression, error)
	// Delete removes a record while it is still a draft.
	Delete(ctx context.Context, agentID, id string) error
	// Stats returns the agent's per-status record counts.
	Stats(ctx context.Context, agentID string) (map[domain.Status]int64, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for first-impression records.
// It depends on an abstract service interface to keep transport concerns
// separate from business logic.
type Handlers struct {
	impSvc  ImpressionService
	idemTTL time.Duration
}

// New constructs a Handlers instance bound to the given service. ttl
// controls how long a create's Idempotency-Key replays the original
// record.
func New(impSvc ImpressionService, ttl time.Duration) *Handlers {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Handlers{impSvc: impSvc, idemTTL: ttl}
}

// agentID extracts the authenticated agent id from Gin context (set by
// upstream middleware). If absent, it falls back to the "X-Agent-ID" header
// (the trusted-backend deployment and tests use it), and finally to
// "demo-agent". Tolerates a nil context and a nil request.
func agentID(c *gin.Context) string {
	if c == nil {
		return "demo-agent"
	}
	if v, ok := c.Get("agentID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-Agent-ID")); h != "" {
			return h
		}
	}
	return "demo-agent"
}

// db exposes the service's GORM handle for conditional-response and
// idempotency lookups. Best effort: nil when the service is not the
// concrete implementation (tests with fakes skip those paths).
func (h *Handlers) db() *gorm.DB {
	if svc, ok := h.impSvc.(*services.ImpressionService); ok {
		return svc.DB
	}
	return nil
}

//
// DTOs
//

// RecordPayload is the JSON body for creating or updating a record. It
// carries only client-settable fields: id, owner, status, signature, and
// timestamps are server-assigned and have no representation here.
type RecordPayload struct {
	ClientName       string `json:"client_name" example:"Amigo de Maria"`
	ClientPhone      string `json:"client_phone"`
	ClientEmail      string `json:"client_email"`
	ClientReferredBy string `json:"client_referred_by"`

	CadastralArticle  string   `json:"cadastral_article"`
	Typology          string   `json:"typology" example:"T3"`
	ConservationState string   `json:"conservation_state"`
	GrossArea         *float64 `json:"gross_area"`
	UsableArea        *float64 `json:"usable_area"`
	EstimatedValue    *float64 `json:"estimated_value"`

	AddressText string   `json:"address_text"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`

	Photos       []string `json:"photos"`
	Observations string   `json:"observations"`
}

// record converts the payload into the domain model. Server-assigned
// fields are left zero; the repository enforces that regardless.
func (p RecordPayload) record() *domain.FirstImpression {
	return &domain.FirstImpression{
		ClientName:        p.ClientName,
		ClientPhone:       p.ClientPhone,
		ClientEmail:       p.ClientEmail,
		ClientReferredBy:  p.ClientReferredBy,
		CadastralArticle:  p.CadastralArticle,
		Typology:          p.Typology,
		ConservationState: p.ConservationState,
		GrossArea:         p.GrossArea,
		UsableArea:        p.UsableArea,
		EstimatedValue:    p.EstimatedValue,
		AddressText:       p.AddressText,
		Latitude:          p.Latitude,
		Longitude:         p.Longitude,
		Photos:            p.Photos,
		Observations:      p.Observations,
	}
}

// SignatureRequest is the JSON body for the signature endpoint.
type SignatureRequest struct {
	// SignatureImage is the encoded signature canvas (e.g. base64 PNG).
	SignatureImage string `json:"signature_image"`
}

// RecordSummary is the compact list representation of a record.
type RecordSummary struct {
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

// summarize maps a full record to its list row.
func summarize(rec domain.FirstImpression) RecordSummary {
	s := RecordSummary{
		ID:          rec.ID,
		ClientName:  rec.ClientName,
		AddressText: rec.AddressText,
		Status:      rec.Status,
		PhotoCount:  len(rec.Photos),
		SignedAt:    rec.SignedAt,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
	if len(rec.Photos) > 0 {
		s.CoverPhoto = rec.Photos[0]
	}
	return s
}

//
// Helpers
//

// clampListing parses and bounds skip and limit query params, returning
// (skip, limit) within sane limits.
func clampListing(c *gin.Context) (skip, limit int) {
	const (
		defaultLimit = 20
		maxLimit     = 100
	)
	skip = utils.AtoiDefault(c.Query("skip"), 0)
	if skip < 0 {
		skip = 0
	}
	limit = utils.AtoiDefault(c.Query("limit"), defaultLimit)
	if limit < 1 {
		limit = 1
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return
}

// failService maps service sentinel errors to HTTP responses. fallback
// names the code used for unexpected errors (500).
func failService(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrRecordNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "record not found")
	case errors.Is(err, services.ErrNameRequired):
		failFields(c, http.StatusUnprocessableEntity, ErrCodeValidationFailed,
			"client name is required", map[string]string{"client_name": "required"})
	case errors.Is(err, services.ErrPartialLocation):
		failFields(c, http.StatusUnprocessableEntity, ErrCodeValidationFailed,
			"latitude and longitude must be provided together",
			map[string]string{"latitude": "incomplete pair", "longitude": "incomplete pair"})
	case errors.Is(err, services.ErrEmptySignature):
		failFields(c, http.StatusUnprocessableEntity, ErrCodeValidationFailed,
			"signature image is empty", map[string]string{"signature_image": "required"})
	case errors.Is(err, services.ErrTooManyPhotos):
		failFields(c, http.StatusUnprocessableEntity, ErrCodeValidationFailed,
			"too many photos", map[string]string{"photos": "exceeds the photo limit"})
	case errors.Is(err, services.ErrInvalidTransition):
		fail(c, http.StatusConflict, ErrCodeInvalidState, "status transition not allowed")
	case errors.Is(err, services.ErrNotDraft):
		fail(c, http.StatusConflict, ErrCodeInvalidState, "record is no longer a draft")
	default:
		fail(c, http.StatusInternalServerError, fallback, err.Error())
	}
}

//
// Handlers
//

// CreateImpression godoc
// @ID          createImpression
// @Summary     Create a first-impression draft
// @Description Creates a draft record for the current agent. When the request
// @Description carries an Idempotency-Key already seen for this agent, the
// @Description originally created record is returned instead of a duplicate.
// @Tags        FirstImpressions
// @Accept      json
// @Produce     json
//
// @Param       X-Agent-ID       header  string  false "Agent ID (trusted header)"  example(agent-17)
// @Param       Idempotency-Key  header  string  false "Create deduplication key"
// @Param       body             body    handlers.RecordPayload  true  "Record payload"
//
// @Success     201  {object}  domain.FirstImpression
// @Success     200  {object}  domain.FirstImpression  "Idempotent replay"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     422  {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /first-impressions [post]
func (h *Handlers) CreateImpression(c *gin.Context) {
	var req RecordPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	ctx := c.Request.Context()
	aid := agentID(c)

	// Idempotent replay: a key we have already fulfilled returns the
	// original record rather than creating a twin draft.
	key, hasKey := middleware.GetIdempotencyKey(c)
	db := h.db()
	if hasKey && db != nil {
		if prior, err := repo.GetIdempotency(ctx, db, aid, key, time.Now().UTC()); err == nil {
			if rec, err := h.impSvc.Get(ctx, aid, prior.RecordID); err == nil {
				ok(c, http.StatusOK, rec)
				return
			}
		}
	}

	rec, err := h.impSvc.Create(ctx, aid, req.record())
	if err != nil {
		failService(c, err, ErrCodeCreateFailed)
		return
	}

	if hasKey && db != nil {
		// Best effort; a duplicate here means a concurrent retry already
		// recorded the same key.
		_, _ = repo.CreateIdempotency(ctx, db, aid, key, rec.ID, http.StatusCreated, h.idemTTL)
	}

	ok(c, http.StatusCreated, rec)
}

// ListImpressions godoc
// @ID          listImpressions
// @Summary     List first-impression records (paginated)
// @Description Returns one page of the agent's records as compact summaries,
// @Description newest first. Supports status and free-text search filters and
// @Description a weak ETag via If-None-Match (may return 304). The total match
// @Description count is exposed via X-Total-Count.
// @Tags        FirstImpressions
// @Produce     json
//
// @Param       X-Agent-ID     header  string  false "Agent ID (trusted header)"   example(agent-17)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       status         query   string  false "Lifecycle state filter"      Enums(draft, signed, completed, cancelled)
// @Param       search         query   string  false "Free-text search (accent-insensitive)"
// @Param       skip           query   int     false "Records to skip"             minimum(0) default(0)
// @Param       limit          query   int     false "Page size"                   minimum(1) maximum(100) default(20)
//
// @Success     200  {array}  handlers.RecordSummary
// @Header      200  {string} ETag           "Weak ETag for current result"
// @Header      200  {string} X-Total-Count  "Total records matching the filter"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /first-impressions [get]
func (h *Handlers) ListImpressions(c *gin.Context) {
	ctx := c.Request.Context()
	aid := agentID(c)
	skip, limit := clampListing(c)

	f := repo.ImpressionFilter{Search: strings.TrimSpace(c.Query("search"))}
	if s := c.Query("status"); s != "" {
		st := domain.Status(s)
		if !st.Valid() {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown status filter")
			return
		}
		f.Status = st
	}

	// ETag pre-check (best effort). The tag covers the agent's record set
	// and the query shape, so any write or a different filter busts it.
	if db := h.db(); db != nil {
		count, maxTS, err := repo.ImpressionsStats(ctx, db, aid)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"impressions:%s:%d:%d:%s:%s:%d:%d"`,
				aid, count, ts, f.Status, f.Search, skip, limit)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.impSvc.List(ctx, aid, f, skip, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	summaries := make([]RecordSummary, 0, len(items))
	for _, rec := range items {
		summaries = append(summaries, summarize(rec))
	}
	c.Header("X-Total-Count", fmt.Sprintf("%d", total))
	ok(c, http.StatusOK, summaries)
}

// GetImpression godoc
// @ID          getImpression
// @Summary     Fetch a record
// @Description Returns the full record, used to hydrate edit mode.
// @Tags        FirstImpressions
// @Produce     json
//
// @Param       X-Agent-ID  header  string  false "Agent ID (trusted header)"  example(agent-17)
// @Param       id          path    string  true  "Record ID (UUID)"           format(uuid)
//
// @Success     200  {object} domain.FirstImpression
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Record not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /first-impressions/{id} [get]
func (h *Handlers) GetImpression(c *gin.Context) {
	id, okID := recordID(c)
	if !okID {
		return
	}
	rec, err := h.impSvc.Get(c.Request.Context(), agentID(c), id)
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, rec)
}

// UpdateImpression godoc
// @ID          updateImpression
// @Summary     Update a draft record
// @Description Overwrites the record's mutable fields (last write wins).
// @Description Records that have left the draft state are frozen and reject
// @Description the update with 409 invalid_state.
// @Tags        FirstImpressions
// @Accept      json
// @Produce     json
//
// @Param       X-Agent-ID  header  string  false "Agent ID (trusted header)"  example(agent-17)
// @Param       id          path    string  true  "Record ID (UUID)"           format(uuid)
// @Param       body        body    handlers.RecordPayload  true  "Record payload"
//
// @Success     200  {object} domain.FirstImpression
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Record not found"
// @Failure     409  {object} handlers.ErrorResponse "Record is not a draft"
// @Failure     422  {object} handlers.ErrorResponse "Validation failed"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /first-impressions/{id} [put]
func (h *Handlers) UpdateImpression(c *gin.Context) {
	id, okID := recordID(c)
	if !okID {
		return
	}
	var req RecordPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	rec, err := h.impSvc.Update(c.Request.Context(), agentID(c), id, req.record())
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, rec)
}

// AttachSignature godoc
// @ID          attachSignature
// @Summary     Attach the client's signature
// @Description Stores the encoded signature image and moves the record
// @Description draft → signed. Signing any other state returns 409.
// @Tags        FirstImpressions
// @Accept      json
// @Produce     json
//
// @Param       X-Agent-ID  header  string  false "Agent ID (trusted header)"  example(agent-17)
// @Param       id          path    string  true  "Record ID (UUID)"           format(uuid)
// @Param       body        body    handlers.SignatureRequest  true  "Signature payload"
//
// @Success     200  {object} domain.FirstImpression
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Record not found"
// @Failure     409  {object} handlers.ErrorResponse "Transition not allowed"
// @Failure     422  {object} handlers.ErrorResponse "Empty signature"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /first-impressions/{id}/signature [post]
func (h *Handlers) AttachSignature(c *gin.Context) {
	id, okID := recordID(c)
	if !okID {
		return
	}
	var req SignatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	rec, err := h.impSvc.AttachSignature(c.Request.Context(), agentID(c), id, req.SignatureImage)
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, rec)
}

// CompleteImpression godoc
// @ID          completeImpression
// @Summary     Complete a signed record
// @Description Moves the record signed → completed once the back-office
// @Description workflow has delivered the generated document.
// @Tags        FirstImpressions
// @Produce     json
//
// @Param       X-Agent-ID  header  string  false "Agent ID (trusted header)"  example(agent-17)
// @Param       id          path    string  true  "Record ID (UUID)"           format(uuid)
//
// @Success     200  {object} domain.FirstImpression
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Record not found"
// @Failure     409  {object} handlers.ErrorResponse "Transition not allowed"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /first-impressions/{id}/complete [post]
func (h *Handlers) CompleteImpression(c *gin.Context) {
	id, okID := recordID(c)
	if !okID {
		return
	}
	rec, err := h.impSvc.Complete(c.Request.Context(), agentID(c), id)
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, rec)
}

// CancelImpression godoc
// @ID          cancelImpression
// @Summary     Cancel a record
// @Description Abandons the record from draft or signed. Cancelled is
// @Description terminal; the record is retained for history.
// @Tags        FirstImpressions
// @Produce     json
//
// @Param       X-Agent-ID  header  string  false "Agent ID (trusted header)"  example(agent-17)
// @Param       id          path    string  true  "Record ID (UUID)"           format(uuid)
//
// @Success     200  {object} domain.FirstImpression
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Record not found"
// @Failure     409  {object} handlers.ErrorResponse "Transition not allowed"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /first-impressions/{id}/cancel [post]
func (h *Handlers) CancelImpression(c *gin.Context) {
	id, okID := recordID(c)
	if !okID {
		return
	}
	rec, err := h.impSvc.Cancel(c.Request.Context(), agentID(c), id)
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, rec)
}

// DeleteImpression godoc
// @ID          deleteImpression
// @Summary     Delete a draft record
// @Description Removes a record that is still a draft. Anything further in
// @Description the lifecycle is retained for audit and returns 409.
// @Tags        FirstImpressions
// @Produce     json
//
// @Param       X-Agent-ID  header  string  false "Agent ID (trusted header)"  example(agent-17)
// @Param       id          path    string  true  "Record ID (UUID)"           format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Record not found"
// @Failure     409  {object} handlers.ErrorResponse "Record is not a draft"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /first-impressions/{id} [delete]
func (h *Handlers) DeleteImpression(c *gin.Context) {
	id, okID := recordID(c)
	if !okID {
		return
	}
	if err := h.impSvc.Delete(c.Request.Context(), agentID(c), id); err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	noContent(c)
}

// ImpressionStats godoc
// @ID          impressionStats
// @Summary     Per-status record counts
// @Description Returns the agent's record counts per lifecycle state. All
// @Description four states are always present, zero-filled.
// @Tags        FirstImpressions
// @Produce     json
//
// @Param       X-Agent-ID  header  string  false "Agent ID (trusted header)"  example(agent-17)
//
// @Success     200  {object} map[string]int64
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /first-impressions/stats [get]
func (h *Handlers) ImpressionStats(c *gin.Context) {
	counts, err := h.impSvc.Stats(c.Request.Context(), agentID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, counts)
}

// recordID validates the :id path parameter as a UUID, writing the 400
// response itself when it is not.
func recordID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "record id must be a UUID")
		return "", false
	}
	return id, true
}
