package domain

import (
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:domain_models?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

func TestStatus_Valid(t *testing.T) {
	for _, s := range []Status{StatusDraft, StatusSigned, StatusCompleted, StatusCancelled} {
		if !s.Valid() {
			t.Fatalf("%q should be valid", s)
		}
	}
	for _, s := range []Status{"", "unknown", "DRAFT", "Signed"} {
		if s.Valid() {
			t.Fatalf("%q should be invalid", s)
		}
	}
}

// TestStatus_TransitionMatrix pins the full lifecycle matrix: status only
// advances forward, cancelled is reachable from draft or signed, and the
// terminal states allow nothing.
func TestStatus_TransitionMatrix(t *testing.T) {
	all := []Status{StatusDraft, StatusSigned, StatusCompleted, StatusCancelled}
	allowed := map[Status]map[Status]bool{
		StatusDraft:  {StatusSigned: true, StatusCancelled: true},
		StatusSigned: {StatusCompleted: true, StatusCancelled: true},
	}
	for _, from := range all {
		for _, to := range all {
			want := allowed[from][to]
			if got := from.CanTransition(to); got != want {
				t.Errorf("CanTransition(%s → %s) = %v; want %v", from, to, got, want)
			}
		}
	}
}

func TestStatus_Deletable(t *testing.T) {
	if !StatusDraft.Deletable() {
		t.Fatalf("draft must be deletable")
	}
	for _, s := range []Status{StatusSigned, StatusCompleted, StatusCancelled} {
		if s.Deletable() {
			t.Fatalf("%q must not be deletable", s)
		}
	}
}

func TestFirstImpression_Coordinates(t *testing.T) {
	var fi FirstImpression
	if _, ok := fi.Coordinates(); ok {
		t.Fatalf("coordinates should be absent on a fresh record")
	}

	lat, lon := 38.7169, -9.1399
	fi.Latitude, fi.Longitude = &lat, &lon
	pt, ok := fi.Coordinates()
	if !ok {
		t.Fatalf("coordinates should be present")
	}
	if pt.Latitude != lat || pt.Longitude != lon {
		t.Fatalf("unexpected point: %+v", pt)
	}

	// Half a pair is not a fix.
	fi.Longitude = nil
	if _, ok := fi.Coordinates(); ok {
		t.Fatalf("latitude alone must not count as a fix")
	}
}

func TestFirstImpression_Signed(t *testing.T) {
	var fi FirstImpression
	if fi.Signed() {
		t.Fatalf("fresh record must not report signed")
	}
	now := time.Now().UTC()
	fi.SignatureImage = "iVBORw0KGgo="
	fi.SignedAt = &now
	if !fi.Signed() {
		t.Fatalf("record with payload and timestamp must report signed")
	}
}

func TestMigrations_Tables_AndIndexes(t *testing.T) {
	db := newDomainDB(t)

	if err := db.AutoMigrate(&FirstImpression{}, &Idempotency{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	m := db.Migrator()

	if (FirstImpression{}).TableName() != "first_impressions" {
		t.Fatalf("unexpected table name %q", (FirstImpression{}).TableName())
	}
	for _, tbl := range []any{&FirstImpression{}, &Idempotency{}} {
		if !m.HasTable(tbl) {
			t.Fatalf("expected table for %T to exist", tbl)
		}
	}
	if !m.HasIndex(&FirstImpression{}, "idx_agent_impressions") {
		t.Fatalf("expected index idx_agent_impressions on first_impressions")
	}
	if !m.HasIndex(&Idempotency{}, "ux_agent_key") {
		t.Fatalf("expected unique index ux_agent_key on idempotency")
	}

	// Photos round-trip through the JSON serializer preserving order.
	now := time.Now().UTC()
	rec := &FirstImpression{
		ID:         "fi-1",
		AgentID:    "a1",
		ClientName: "Amigo de Maria",
		Photos:     []string{"file:///p/cover.jpg", "file:///p/2.jpg", "file:///p/3.jpg"},
		Status:     StatusDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := db.Create(rec).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
	var got FirstImpression
	if err := db.First(&got, "id = ?", "fi-1").Error; err != nil {
		t.Fatalf("readback: %v", err)
	}
	if len(got.Photos) != 3 || got.Photos[0] != "file:///p/cover.jpg" {
		t.Fatalf("photos did not round-trip in order: %+v", got.Photos)
	}
	if got.Status != StatusDraft {
		t.Fatalf("status = %q; want draft", got.Status)
	}
}

func TestIdempotency_UniquePerAgentAndKey(t *testing.T) {
	db := newDomainDB(t)
	if err := db.AutoMigrate(&Idempotency{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	now := time.Now().UTC()
	mk := func(id, agent, key string) *Idempotency {
		return &Idempotency{
			ID: id, AgentID: agent, Key: key, RecordID: "r1", Status: 201,
			CreatedAt: now, ExpiresAt: now.Add(time.Hour),
		}
	}
	if err := db.Create(mk("i1", "a1", "k1")).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := db.Create(mk("i2", "a1", "k1")).Error; err == nil {
		t.Fatalf("expected UNIQUE violation on (agent_id, key)")
	}
	// Same key under a different agent is fine.
	if err := db.Create(mk("i3", "a2", "k1")).Error; err != nil {
		t.Fatalf("insert for other agent: %v", err)
	}
}
