// internal/discovery/expansion/expander.go
package expansion

import (
	"regexp"
	"strings"

	"contact-discovery/internal/models"
)

var placeholderPattern = regexp.MustCompile(`\{(query|category|beat|country|language)\}`)

var whitespacePattern = regexp.MustCompile(`\s+`)

// Expander substitutes criteria values into template placeholders, producing
// literal candidate query strings.
type Expander struct {
	dimensionCap int
}

// NewExpander creates an expander with a per-dimension value cap. The cap
// bounds the cross-product when a dimension has many values.
func NewExpander(dimensionCap int) *Expander {
	if dimensionCap <= 0 {
		dimensionCap = 5
	}
	return &Expander{dimensionCap: dimensionCap}
}

// Expand produces every bounded combination of criteria values substituted
// into the template. A template whose placeholder has no matching criteria
// value expands to zero queries; that is not an error.
func (e *Expander) Expand(tpl models.QueryTemplate, originalQuery string, criteria models.SearchCriteria) []string {
	placeholders := e.placeholdersIn(tpl.Template)
	if len(placeholders) == 0 {
		return []string{normalizeWhitespace(tpl.Template)}
	}

	valueSets := make([][]string, 0, len(placeholders))
	for _, name := range placeholders {
		values := e.valuesFor(name, originalQuery, criteria)
		if len(values) == 0 {
			return nil
		}
		if len(values) > e.dimensionCap {
			values = values[:e.dimensionCap]
		}
		valueSets = append(valueSets, values)
	}

	combos := crossProduct(valueSets)
	queries := make([]string, 0, len(combos))
	for _, combo := range combos {
		query := tpl.Template
		for i, name := range placeholders {
			query = strings.ReplaceAll(query, "{"+name+"}", combo[i])
		}
		query = normalizeWhitespace(query)
		if query != "" {
			queries = append(queries, query)
		}
	}
	return queries
}

// placeholdersIn returns the distinct placeholder names in template order.
func (e *Expander) placeholdersIn(template string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(template, -1)
	seen := map[string]bool{}
	var names []string
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

func (e *Expander) valuesFor(name, originalQuery string, criteria models.SearchCriteria) []string {
	switch name {
	case "query":
		q := strings.TrimSpace(originalQuery)
		if q == "" {
			return nil
		}
		return []string{q}
	case "category":
		return criteria.Categories
	case "beat":
		return criteria.Beats
	case "country":
		return criteria.Countries
	case "language":
		return criteria.Languages
	}
	return nil
}

// crossProduct walks value sets in order so output is deterministic for a
// given template and criteria.
func crossProduct(sets [][]string) [][]string {
	if len(sets) == 0 {
		return nil
	}

	result := [][]string{{}}
	for _, set := range sets {
		var next [][]string
		for _, combo := range result {
			for _, value := range set {
				extended := make([]string, len(combo)+1)
				copy(extended, combo)
				extended[len(combo)] = value
				next = append(next, extended)
			}
		}
		result = next
	}
	return result
}

func normalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}
