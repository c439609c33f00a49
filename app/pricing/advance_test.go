package pricing

import (
	"testing"

	"github.com/vibast-solutions/ms-go-reservations/app/entity"
	"github.com/vibast-solutions/ms-go-reservations/app/types"
)

func TestAdvanceCentsSaleUsesPriceShare(t *testing.T) {
	p := &entity.Property{ListingKind: int32(types.ListingKindSale), PriceCents: 1_000_000}
	if got := AdvanceCents(p); got != 20_000 {
		t.Fatalf("expected 20000, got %d", got)
	}
}

func TestAdvanceCentsRentalFallsBackToRentShare(t *testing.T) {
	p := &entity.Property{ListingKind: int32(types.ListingKindRental), MonthlyRentCents: 1_000}
	if got := AdvanceCents(p); got != 200 {
		t.Fatalf("expected 200, got %d", got)
	}
}

func TestAdvanceCentsRentalPrefersDeposit(t *testing.T) {
	p := &entity.Property{
		ListingKind:        int32(types.ListingKindRental),
		MonthlyRentCents:   1_000,
		RentalDepositCents: 50_000,
	}
	if got := AdvanceCents(p); got != 50_000 {
		t.Fatalf("expected deposit 50000, got %d", got)
	}
}

func TestAdvanceCentsExplicitAdvanceWins(t *testing.T) {
	p := &entity.Property{
		ListingKind:        int32(types.ListingKindRental),
		MonthlyRentCents:   1_000,
		RentalDepositCents: 50_000,
		AdvanceCents:       12_345,
	}
	if got := AdvanceCents(p); got != 12_345 {
		t.Fatalf("expected explicit advance 12345, got %d", got)
	}
}

func TestAdvanceCentsRoundsHalfUp(t *testing.T) {
	// 2% of 1025 cents is 20.5 cents, rounds to 21.
	p := &entity.Property{ListingKind: int32(types.ListingKindSale), PriceCents: 1_025}
	if got := AdvanceCents(p); got != 21 {
		t.Fatalf("expected 21, got %d", got)
	}
}

func TestAdvanceCentsZeroWhenUnpriced(t *testing.T) {
	if got := AdvanceCents(&entity.Property{ListingKind: int32(types.ListingKindSale)}); got != 0 {
		t.Fatalf("expected 0 for unpriced sale, got %d", got)
	}
	if got := AdvanceCents(&entity.Property{ListingKind: int32(types.ListingKindRental)}); got != 0 {
		t.Fatalf("expected 0 for unpriced rental, got %d", got)
	}
	if got := AdvanceCents(nil); got != 0 {
		t.Fatalf("expected 0 for nil property, got %d", got)
	}
}
