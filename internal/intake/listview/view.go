// Package listview adapts the record listing API to a scrollable list
// surface. The view owns a row snapshot refreshed on demand; it is the
// entry point into the capture flow, handing out form coordinators for
// "new record" and "open existing record".
package listview

import (
	"context"

	"github.com/pcosta/go-intake-backend/internal/client"
	"github.com/pcosta/go-intake-backend/internal/domain"
	"github.com/pcosta/go-intake-backend/internal/intake/form"
	"github.com/pcosta/go-intake-backend/internal/intake/geo"
)

// Row is one rendered list entry.
type Row struct {
	ID         string
	Title      string
	Subtitle   string
	Status     domain.Status
	PhotoCount int
	CoverPhoto string
	Signed     bool
}

// Filter narrows what Refresh fetches.
type Filter struct {
	Status domain.Status
	Search string
}

// View drives the record list screen. Not safe for concurrent use; it
// belongs to the UI event loop like the form coordinator it hands out.
type View struct {
	lc    *client.Lifecycle
	probe geo.Probe
	rows  []Row
}

// NewView returns a list view backed by the given lifecycle client. The
// probe is passed through to the coordinators the view opens.
func NewView(lc *client.Lifecycle, probe geo.Probe) *View {
	return &View{lc: lc, probe: probe}
}

// Refresh replaces the row snapshot with a fresh listing. On error the
// previous snapshot is kept, so a failed pull-to-refresh does not blank
// the screen.
func (v *View) Refresh(ctx context.Context, f Filter) error {
	it := v.lc.List(client.ListFilter{Status: f.Status, Search: f.Search})

	var rows []Row
	for it.Next(ctx) {
		rows = append(rows, rowFromSummary(it.Summary()))
	}
	if err := it.Err(); err != nil {
		return err
	}
	v.rows = rows
	return nil
}

// Rows returns the current snapshot.
func (v *View) Rows() []Row {
	out := make([]Row, len(v.rows))
	copy(out, v.rows)
	return out
}

// Len returns the number of rows in the snapshot.
func (v *View) Len() int { return len(v.rows) }

// OpenCreate starts a fresh draft. The location failure, if any, is
// returned alongside a usable coordinator — see form.NewCreate.
func (v *View) OpenCreate(ctx context.Context) (*form.Coordinator, error) {
	return form.NewCreate(ctx, v.lc, v.probe)
}

// OpenEdit opens the record behind a row for editing, hydrated from the
// server rather than from the possibly stale row snapshot.
func (v *View) OpenEdit(ctx context.Context, id string) (*form.Coordinator, error) {
	return form.NewEdit(ctx, v.lc, v.probe, id)
}

func rowFromSummary(s client.Summary) Row {
	return Row{
		ID:         s.ID,
		Title:      s.ClientName,
		Subtitle:   s.AddressText,
		Status:     s.Status,
		PhotoCount: s.PhotoCount,
		CoverPhoto: s.CoverPhoto,
		Signed:     s.SignedAt != nil,
	}
}
