package geo

import (
	"context"
	"errors"
	"testing"

	"github.com/pcosta/go-intake-backend/internal/domain"
)

func TestStatic(t *testing.T) {
	p := Static(domain.GeoPoint{Latitude: 38.7169, Longitude: -9.1399})
	pt, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if pt.Latitude != 38.7169 || pt.Longitude != -9.1399 {
		t.Fatalf("unexpected point: %+v", pt)
	}
}

func TestStatic_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Static(domain.GeoPoint{}).Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled acquire should surface ctx error, got %v", err)
	}
}

func TestDenied_IsIdempotent(t *testing.T) {
	p := Denied()
	for i := 0; i < 3; i++ {
		if _, err := p.Acquire(context.Background()); !errors.Is(err, ErrPermissionDenied) {
			t.Fatalf("call %d: want ErrPermissionDenied, got %v", i, err)
		}
	}
}

func TestRecoverable(t *testing.T) {
	if !Recoverable(ErrPermissionDenied) || !Recoverable(ErrUnavailable) {
		t.Fatalf("sentinel errors must be recoverable")
	}
	if Recoverable(context.Canceled) || Recoverable(nil) {
		t.Fatalf("cancellation is not a retryable probe failure")
	}
}
