package contacts

import (
	"testing"

	"contact-discovery/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagDuplicates(t *testing.T) {
	t.Run("same email flags later contact", func(t *testing.T) {
		contactList := []models.ExtractedContact{
			{ID: "1", Name: "John Smith", Email: "john@outlet.com"},
			{ID: "2", Name: "J. Smith", Email: "John@Outlet.com"},
		}

		got := FlagDuplicates(contactList)
		assert.False(t, got[0].IsDuplicate)
		assert.True(t, got[1].IsDuplicate)
	})

	t.Run("same name and domain flags later contact", func(t *testing.T) {
		contactList := []models.ExtractedContact{
			{ID: "1", Name: "Jane  Doe", SourceURL: "https://www.outlet.com/article-1"},
			{ID: "2", Name: "jane doe", SourceURL: "http://outlet.com/article-2"},
		}

		got := FlagDuplicates(contactList)
		assert.False(t, got[0].IsDuplicate)
		assert.True(t, got[1].IsDuplicate)
	})

	t.Run("same name different domain survives", func(t *testing.T) {
		contactList := []models.ExtractedContact{
			{ID: "1", Name: "Jane Doe", SourceURL: "https://outlet-a.com/x"},
			{ID: "2", Name: "Jane Doe", SourceURL: "https://outlet-b.com/y"},
		}

		got := FlagDuplicates(contactList)
		assert.False(t, got[0].IsDuplicate)
		assert.False(t, got[1].IsDuplicate)
	})

	t.Run("empty list", func(t *testing.T) {
		require.Empty(t, FlagDuplicates(nil))
	})
}

func TestDomainOf(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.outlet.com/article?id=1", "outlet.com"},
		{"http://outlet.com/path#frag", "outlet.com"},
		{"outlet.com", "outlet.com"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, domainOf(tt.url), tt.url)
	}
}
