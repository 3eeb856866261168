package entry

import "git.home.luguber.info/inful/notebinder/internal/foundation/normalization"

// Category is the closed set of entry kinds.
type Category string

const (
	CategoryCompatibility Category = "compatibility"
	CategoryFeature       Category = "feature"
	CategoryImprovement   Category = "improvement"
	CategoryPerformance   Category = "performance"
	CategoryBugfix        Category = "bugfix"
	CategorySecurity      Category = "security"
	CategoryDeprecation   Category = "deprecation"
	CategoryDocumentation Category = "documentation"
)

var allCategories = []Category{
	CategoryCompatibility,
	CategoryFeature,
	CategoryImprovement,
	CategoryPerformance,
	CategoryBugfix,
	CategorySecurity,
	CategoryDeprecation,
	CategoryDocumentation,
}

var categoryNormalizer = normalization.NewNormalizer(map[string]Category{
	"compatibility": CategoryCompatibility,
	"feature":       CategoryFeature,
	"improvement":   CategoryImprovement,
	"performance":   CategoryPerformance,
	"bugfix":        CategoryBugfix,
	"security":      CategorySecurity,
	"deprecation":   CategoryDeprecation,
	"documentation": CategoryDocumentation,
}, "")

// Categories returns the closed category set in canonical order.
func Categories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

// ParseCategory maps raw (case-insensitive, trimmed) onto the closed set.
func ParseCategory(raw string) (Category, bool) {
	return categoryNormalizer.Lookup(raw)
}

// CategoryNames lists the accepted spellings, for error messages.
func CategoryNames() []string {
	return categoryNormalizer.ValidKeys()
}
