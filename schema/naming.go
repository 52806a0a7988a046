package schema

import (
	"github.com/go-openapi/inflect"
)

var rules = ruleset()

func ruleset() *inflect.Ruleset {
	r := inflect.NewDefaultRuleset()
	// Common irregulars that the default ruleset mishandles.
	for _, w := range []string{"equipment", "information", "metadata"} {
		r.AddUncountable(w)
	}
	return r
}

// TableName derives the conventional table name from a model name:
// snake_case and pluralized, e.g. "BlogPost" becomes "blog_posts".
func TableName(model string) string {
	return rules.Pluralize(rules.Underscore(model))
}

// ColumnName derives the conventional column name from a field name,
// e.g. "CreatedAt" becomes "created_at".
func ColumnName(field string) string {
	return rules.Underscore(field)
}
