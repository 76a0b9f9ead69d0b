package expansion

import (
	"testing"

	"contact-discovery/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	expander := NewExpander(5)

	tests := []struct {
		name     string
		template string
		query    string
		criteria models.SearchCriteria
		want     []string
	}{
		{
			name:     "query only placeholder",
			template: "{query} journalists contact email",
			query:    "climate change",
			want:     []string{"climate change journalists contact email"},
		},
		{
			name:     "cross product of two dimensions",
			template: "{query} {category} writers in {country}",
			query:    "ai",
			criteria: models.SearchCriteria{
				Categories: []string{"tech", "science"},
				Countries:  []string{"US", "DE"},
			},
			want: []string{
				"ai tech writers in US",
				"ai tech writers in DE",
				"ai science writers in US",
				"ai science writers in DE",
			},
		},
		{
			name:     "missing dimension skips template",
			template: "{query} {beat} beat reporters",
			query:    "elections",
			criteria: models.SearchCriteria{Categories: []string{"politics"}},
			want:     nil,
		},
		{
			name:     "empty original query skips query templates",
			template: "{query} press contacts",
			query:    "   ",
			want:     nil,
		},
		{
			name:     "no placeholders passes through",
			template: "investigative   reporters directory",
			query:    "ignored",
			want:     []string{"investigative reporters directory"},
		},
		{
			name:     "repeated placeholder substituted everywhere",
			template: "{category} news {category} desk contacts",
			criteria: models.SearchCriteria{Categories: []string{"sports"}},
			want:     []string{"sports news sports desk contacts"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := models.QueryTemplate{Template: tt.template}
			got := expander.Expand(tpl, tt.query, tt.criteria)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandCapsDimensionValues(t *testing.T) {
	expander := NewExpander(2)

	tpl := models.QueryTemplate{Template: "{query} journalists {country}"}
	criteria := models.SearchCriteria{
		Countries: []string{"US", "DE", "FR", "JP", "BR"},
	}

	got := expander.Expand(tpl, "energy", criteria)
	require.Len(t, got, 2)
	assert.Equal(t, "energy journalists US", got[0])
	assert.Equal(t, "energy journalists DE", got[1])
}

func TestExpandIsDeterministic(t *testing.T) {
	expander := NewExpander(5)
	tpl := models.QueryTemplate{Template: "{query} {category} reporters"}
	criteria := models.SearchCriteria{Categories: []string{"tech", "finance", "health"}}

	first := expander.Expand(tpl, "startups", criteria)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, expander.Expand(tpl, "startups", criteria))
	}
}

func BenchmarkExpand(b *testing.B) {
	expander := NewExpander(5)
	tpl := models.QueryTemplate{Template: "{query} {category} writers in {country}"}
	criteria := models.SearchCriteria{
		Categories: []string{"tech", "science", "finance", "health", "sports"},
		Countries:  []string{"US", "DE", "FR", "JP", "BR"},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		expander.Expand(tpl, "benchmark", criteria)
	}
}
