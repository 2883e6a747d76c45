// Package domain defines the persistence models for first-impression
// intake records. These types are mapped with GORM and form the core
// data layer of the intake backend.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Status is the lifecycle state of a first-impression record.
//
// Allowed transitions move forward only:
//
//	draft → signed → completed
//	draft → cancelled
//	signed → cancelled
//
// There is no backward transition, and a record is deletable only
// while it is still a draft.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSigned    Status = "signed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSigned, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether a record in state s may move to state
// to. Self-transitions are not permitted; completed and cancelled are
// terminal.
func (s Status) CanTransition(to Status) bool {
	switch s {
	case StatusDraft:
		return to == StatusSigned || to == StatusCancelled
	case StatusSigned:
		return to == StatusCompleted || to == StatusCancelled
	}
	return false
}

// Deletable reports whether a record in state s may be hard-deleted.
func (s Status) Deletable() bool { return s == StatusDraft }

// GeoPoint is a single latitude/longitude location fix.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// FirstImpression represents a field agent's intake record for a
// prospective client and property: client identity, cadastral (CMI)
// data, location, photos, free-text observations, and — once the
// signature step completes — a digital signature.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - AgentID: owner; assigned by the server from the authenticated
//     caller, never taken from the request body. Indexed.
//   - ClientName: required, non-empty before any create/update is
//     accepted. A generic placeholder ("Amigo de Maria") is allowed —
//     the tool explicitly supports indirect referrals.
//   - GrossArea / UsableArea / EstimatedValue: nullable numerics.
//     Inputs arrive as free text on the form; by the time they reach
//     this model they have been parsed (see intake/field).
//   - Latitude / Longitude: present together or not at all; a single
//     immutable pair per record version (re-acquiring in edit mode
//     overwrites, never merges).
//   - Photos: ordered opaque references (local URIs before upload,
//     remote URLs after); the first entry is the cover photo. Stored
//     as a JSON array. Duplicates are accepted.
//   - SignatureImage / SignedAt: present iff Status is signed or
//     completed.
//   - SearchText: normalized (lowercase, accent-folded) index text
//     maintained on every write; backs the list search filter.
//   - DeletedAt: soft deletion marker (retains row for audit/history).
type FirstImpression struct {
	ID      string `json:"id"       gorm:"type:char(36);primaryKey"`
	AgentID string `json:"agent_id" gorm:"type:varchar(64);not null;index:idx_agent_impressions"`

	ClientName       string `json:"client_name"        gorm:"type:varchar(255);not null"`
	ClientPhone      string `json:"client_phone"       gorm:"type:varchar(64)"`
	ClientEmail      string `json:"client_email"       gorm:"type:varchar(255)"`
	ClientReferredBy string `json:"client_referred_by" gorm:"type:varchar(255)"`

	CadastralArticle  string   `json:"cadastral_article"  gorm:"type:varchar(64);index"`
	Typology          string   `json:"typology"           gorm:"type:varchar(32)"`
	ConservationState string   `json:"conservation_state" gorm:"type:varchar(64)"`
	GrossArea         *float64 `json:"gross_area,omitempty"`
	UsableArea        *float64 `json:"usable_area,omitempty"`
	EstimatedValue    *float64 `json:"estimated_value,omitempty"`

	AddressText string   `json:"address_text" gorm:"type:text"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`

	Photos       []string `json:"photos" gorm:"type:text;serializer:json"`
	Observations string   `json:"observations" gorm:"type:text"`

	SignatureImage string     `json:"signature_image,omitempty" gorm:"type:text"`
	SignedAt       *time.Time `json:"signed_at,omitempty"`

	Status Status `json:"status" gorm:"type:varchar(16);not null;default:'draft';index;check:status IN ('draft','signed','completed','cancelled')"`

	SearchText string `json:"-" gorm:"type:text;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the database table name for FirstImpression.
func (FirstImpression) TableName() string { return "first_impressions" }

// Coordinates returns the record's location fix, if one was captured.
func (fi *FirstImpression) Coordinates() (GeoPoint, bool) {
	if fi.Latitude == nil || fi.Longitude == nil {
		return GeoPoint{}, false
	}
	return GeoPoint{Latitude: *fi.Latitude, Longitude: *fi.Longitude}, true
}

// Signed reports whether a signature is attached. By invariant this is
// equivalent to Status ∈ {signed, completed}.
func (fi *FirstImpression) Signed() bool {
	return fi.SignatureImage != "" && fi.SignedAt != nil
}
