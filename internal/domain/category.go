package domain

// BlockTiming controls when a non-standard sub-category starts blocking the
// standard variant (and vice versa).
type BlockTiming string

const (
	// BlockOnClaim blocks as soon as the conflicting sub-category exists.
	BlockOnClaim BlockTiming = "on_claim"
	// BlockOnFirstAssign blocks only once the conflicting holder has
	// assigned their first item.
	BlockOnFirstAssign BlockTiming = "on_first_assign"
)

// SubCategoryStandard is the variant that excludes all named variants.
const SubCategoryStandard = "standard"

// SubCategory is one mutually-exclusive variant within a category. Each
// variant has capacity 1.
type SubCategory struct {
	Name string
	// AllowsItems marks variants whose holder may assign items. Variants
	// without it are complete once chosen.
	AllowsItems bool
	// UnlocksBonus marks variants whose holder gets the extra pick after
	// their slots are filled.
	UnlocksBonus bool
}

// Category is the static configuration for one claimable category.
type Category struct {
	Key          string
	DisplayName  string
	ChannelRange string
	// Capacity is the maximum number of concurrent claimants.
	Capacity int
	// SlotsPerClaimant is 1 or 2 and applies to non-split claimants.
	SlotsPerClaimant int
	// AllowsSplit lets a second claimant take the remaining slot once the
	// first holder has filled slot 1 only. The split claimant is limited
	// to a single slot.
	AllowsSplit bool
	// RequiresRole names a capability tag the claimant must carry, if any.
	RequiresRole string
	// BoosterGated categories can only be claimed while the round's
	// booster gate is open.
	BoosterGated  bool
	SubCategories []SubCategory
	// BlockTiming applies to categories with sub-categories.
	BlockTiming BlockTiming
	// HasBonusPick enables the extra pick once slots are filled. For
	// sub-categorized categories the chosen variant must also unlock it.
	HasBonusPick bool
	// BonusRequired makes the extra pick part of the mandatory
	// progression: the reservation blocks new claims elsewhere until both
	// slot 1 and the extra pick are set.
	BonusRequired bool
}

// HasSubCategories reports whether claiming this category requires a
// sub-category choice before items can be assigned.
func (c Category) HasSubCategories() bool {
	return len(c.SubCategories) > 0
}

// SubCategory resolves a variant by name.
func (c Category) SubCategory(name string) (SubCategory, bool) {
	for _, sc := range c.SubCategories {
		if sc.Name == name {
			return sc, true
		}
	}
	return SubCategory{}, false
}
