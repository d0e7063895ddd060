package model

// Categories supported by the remote source's topic filter.
const (
	CategoryGeneral       = "general"
	CategoryBusiness      = "business"
	CategoryTechnology    = "technology"
	CategorySports        = "sports"
	CategoryHealth        = "health"
	CategoryScience       = "science"
	CategoryEntertainment = "entertainment"
)

// CountryNone omits the country filter.
const CountryNone = "none"

// Option is a selectable filter value with a display name.
type Option struct {
	ID   string
	Name string
}

// Categories returns the enumerated category set in display order.
func Categories() []Option {
	return []Option{
		{ID: CategoryGeneral, Name: "General"},
		{ID: CategoryBusiness, Name: "Business"},
		{ID: CategoryTechnology, Name: "Tech"},
		{ID: CategorySports, Name: "Sports"},
		{ID: CategoryHealth, Name: "Health"},
		{ID: CategoryScience, Name: "Science"},
		{ID: CategoryEntertainment, Name: "Entertainment"},
	}
}

// Countries returns the selectable countries in display order.
func Countries() []Option {
	return []Option{
		{ID: "us", Name: "United States"},
		{ID: "gb", Name: "United Kingdom"},
		{ID: "in", Name: "India"},
		{ID: "au", Name: "Australia"},
		{ID: "ca", Name: "Canada"},
		{ID: "de", Name: "Germany"},
		{ID: "fr", Name: "France"},
		{ID: "jp", Name: "Japan"},
		{ID: "br", Name: "Brazil"},
		{ID: "ng", Name: "Nigeria"},
		{ID: CountryNone, Name: "Worldwide"},
	}
}

// ValidCategory reports whether id is one of the enumerated categories.
func ValidCategory(id string) bool {
	for _, c := range Categories() {
		if c.ID == id {
			return true
		}
	}
	return false
}

// fallbackImages maps categories to default article images.
var fallbackImages = map[string]string{
	CategoryTechnology:    "https://images.unsplash.com/photo-1518709268805-4e9042af2176?w=400&h=200&fit=crop",
	CategoryBusiness:      "https://images.unsplash.com/photo-1444653614773-995cb1ef9efa?w=400&h=200&fit=crop",
	CategorySports:        "https://images.unsplash.com/photo-1461896836934-ffe607ba8211?w=400&h=200&fit=crop",
	CategoryHealth:        "https://images.unsplash.com/photo-1559757148-5c350d0d3c56?w=400&h=200&fit=crop",
	CategoryScience:       "https://images.unsplash.com/photo-1532094349884-543bc11b234d?w=400&h=200&fit=crop",
	CategoryEntertainment: "https://images.unsplash.com/photo-1489599809505-f2d4cac355af?w=400&h=200&fit=crop",
	CategoryGeneral:       "https://images.unsplash.com/photo-1586339949916-3e9457bef6d3?w=400&h=200&fit=crop",
}

// FallbackImage returns the default image for a category. Unknown categories
// get the general image.
func FallbackImage(category string) string {
	if img, ok := fallbackImages[category]; ok {
		return img
	}
	return fallbackImages[CategoryGeneral]
}

// Cycle returns the option after (or before, when step is negative) current.
// Unknown values restart at the first option.
func Cycle(opts []Option, current string, step int) string {
	if len(opts) == 0 {
		return current
	}
	for i, o := range opts {
		if o.ID == current {
			n := ((i+step)%len(opts) + len(opts)) % len(opts)
			return opts[n].ID
		}
	}
	return opts[0].ID
}

// NameOf returns the display name for id, or id itself when unknown.
func NameOf(opts []Option, id string) string {
	for _, o := range opts {
		if o.ID == id {
			return o.Name
		}
	}
	return id
}
