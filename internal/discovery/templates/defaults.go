// internal/discovery/templates/defaults.go
package templates

import (
	"time"

	"contact-discovery/internal/models"

	"github.com/google/uuid"
)

// DefaultTemplates returns the canonical seed set inserted when the store is
// empty. Every template starts at the neutral 0.5 confidence.
func DefaultTemplates() []models.QueryTemplate {
	now := time.Now().UTC()

	build := func(name, template string, tplType models.TemplateType, priority int) models.QueryTemplate {
		return models.QueryTemplate{
			ID:                uuid.NewString(),
			Name:              name,
			Template:          template,
			Type:              tplType,
			Priority:          priority,
			IsActive:          true,
			AverageConfidence: 0.5,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
	}

	templates := []models.QueryTemplate{
		build("base-journalist-contacts", "{query} journalists contact email", models.TemplateTypeBase, 10),
		build("base-editorial-staff", "{query} reporters editorial staff directory", models.TemplateTypeBase, 9),
		build("base-press-contacts", "{query} press media contacts", models.TemplateTypeBase, 8),
		build("category-writers", "{query} {category} writers contributors contact", models.TemplateTypeCategorySpecific, 8),
		build("category-correspondents", "{category} correspondents covering {query}", models.TemplateTypeCategorySpecific, 7),
		build("beat-reporters", "{query} {beat} beat reporters", models.TemplateTypeBeatSpecific, 8),
		build("beat-columnists", "{beat} columnists writing about {query}", models.TemplateTypeBeatSpecific, 7),
		build("country-media", "{query} journalists {country} media outlets", models.TemplateTypeCountrySpecific, 7),
		build("country-press", "{country} press contacts {query}", models.TemplateTypeCountrySpecific, 6),
		build("language-press", "{query} {language} language press contacts", models.TemplateTypeLanguageSpecific, 6),
	}

	return templates
}
