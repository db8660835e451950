package domain

// Registry is the fixed category table, loaded once at process start. It is
// immutable after construction.
type Registry struct {
	order      []string
	categories map[string]Category
}

// NewRegistry builds a registry from the default category table.
func NewRegistry() *Registry {
	return newRegistry(defaultCategories)
}

func newRegistry(categories []Category) *Registry {
	r := &Registry{categories: make(map[string]Category, len(categories))}
	for _, c := range categories {
		r.order = append(r.order, c.Key)
		r.categories[c.Key] = c
	}
	return r
}

// Resolve looks up a category by key.
func (r *Registry) Resolve(key string) (Category, error) {
	c, ok := r.categories[key]
	if !ok {
		return Category{}, ErrCategoryNotFound
	}
	return c, nil
}

// All returns every category in table order.
func (r *Registry) All() []Category {
	out := make([]Category, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.categories[key])
	}
	return out
}

var regionalSubCategories = []SubCategory{
	{Name: SubCategoryStandard, AllowsItems: true, UnlocksBonus: true},
	{Name: "galarian", AllowsItems: true, UnlocksBonus: true},
	{Name: "alolan"},
	{Name: "hisuian"},
}

var defaultCategories = []Category{
	{Key: "rares", DisplayName: "Rares", ChannelRange: "1-23", Capacity: 1, SlotsPerClaimant: 1},
	{
		Key:              "regionals",
		DisplayName:      "Regionals",
		ChannelRange:     "24-43",
		Capacity:         len(regionalSubCategories),
		SlotsPerClaimant: 1,
		SubCategories:    regionalSubCategories,
		BlockTiming:      BlockOnClaim,
		HasBonusPick:     true,
	},
	{
		Key:              "gmax",
		DisplayName:      "Gmax",
		ChannelRange:     "44-59",
		Capacity:         1,
		SlotsPerClaimant: 2,
		HasBonusPick:     true,
		BonusRequired:    true,
	},
	{Key: "eevos", DisplayName: "Eevos", ChannelRange: "60-67", Capacity: 1, SlotsPerClaimant: 1},
	{Key: "choice1", DisplayName: "Choice 1", ChannelRange: "68-74", Capacity: 1, SlotsPerClaimant: 1},
	{Key: "choice2", DisplayName: "Choice 2", ChannelRange: "75-81", Capacity: 1, SlotsPerClaimant: 1},
	{
		Key:              "missingno",
		DisplayName:      "MissingNo",
		ChannelRange:     "82-88",
		Capacity:         1,
		SlotsPerClaimant: 1,
		RequiresRole:     "booster",
		BoosterGated:     true,
	},
	{Key: "reserve1", DisplayName: "Reserve 1", ChannelRange: "89-92", Capacity: 2, SlotsPerClaimant: 2, AllowsSplit: true},
	{Key: "reserve2", DisplayName: "Reserve 2", ChannelRange: "93-96", Capacity: 2, SlotsPerClaimant: 2, AllowsSplit: true},
	{Key: "reserve3", DisplayName: "Reserve 3", ChannelRange: "97-100", Capacity: 2, SlotsPerClaimant: 2, AllowsSplit: true},
}
