package core

// SeedCategory is one entry of the fixed bootstrap set created for an owner on
// first use. System categories keep their name forever; only the color may
// change.
type SeedCategory struct {
	Name     string
	Color    string
	IsSystem bool
}

// DefaultCategories returns the bootstrap category set.
func DefaultCategories() []SeedCategory {
	return []SeedCategory{
		{Name: "Uncategorized", Color: "#6B7280", IsSystem: true},
		{Name: "Income", Color: "#10B981", IsSystem: true},
		{Name: "Transfer", Color: "#3B82F6", IsSystem: true},
		{Name: "Groceries", Color: "#F59E0B"},
		{Name: "Dining", Color: "#EF4444"},
		{Name: "Transportation", Color: "#8B5CF6"},
		{Name: "Shopping", Color: "#EC4899"},
		{Name: "Entertainment", Color: "#14B8A6"},
		{Name: "Bills", Color: "#F97316"},
		{Name: "Healthcare", Color: "#06B6D4"},
	}
}
