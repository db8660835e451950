package domain

import (
	"strings"
	"time"
)

// Reservation is one user's claim on a category for the current round.
// Slot1/Slot2/ExtraPick hold reserved item names; empty string means unset.
type Reservation struct {
	ID          string
	UserID      string
	CategoryKey string
	// SubCategory is set exactly once for sub-categorized categories and
	// is immutable afterwards except through an admin full cancel.
	SubCategory string
	Slot1       string
	Slot2       string
	// ExtraPick is the category-specific bonus choice, orthogonal to the
	// two main slots.
	ExtraPick    string
	ChannelRange string
	// SlotLimit is how many of the two slots this claimant may fill: the
	// category's per-claimant count normally, 1 for a split claimant.
	SlotLimit int
	CreatedAt time.Time
}

// Items returns the non-empty item values held by the reservation.
func (r Reservation) Items() []string {
	var items []string
	for _, it := range []string{r.Slot1, r.Slot2, r.ExtraPick} {
		if it != "" {
			items = append(items, it)
		}
	}
	return items
}

// HoldsItem reports whether the reservation holds the item, ignoring case.
func (r Reservation) HoldsItem(item string) bool {
	for _, it := range r.Items() {
		if strings.EqualFold(it, item) {
			return true
		}
	}
	return false
}

// SlotsFull reports whether every slot the claimant is entitled to is set.
func (r Reservation) SlotsFull() bool {
	if r.Slot1 == "" {
		return false
	}
	return r.SlotLimit < 2 || r.Slot2 != ""
}

// ReservationItems is the full item state written back to a reservation.
type ReservationItems struct {
	Slot1     string
	Slot2     string
	ExtraPick string
}
