// internal/discovery/contacts/duplicates.go
package contacts

import (
	"strings"

	"contact-discovery/internal/models"
)

// FlagDuplicates marks later contacts in the run as duplicates of earlier
// ones. Two contacts collide on the same email address, or on the same
// normalized name from the same source domain. The first occurrence is kept
// as the canonical contact.
func FlagDuplicates(contactList []models.ExtractedContact) []models.ExtractedContact {
	seenEmails := map[string]bool{}
	seenNames := map[string]bool{}

	for i := range contactList {
		c := &contactList[i]

		email := strings.ToLower(strings.TrimSpace(c.Email))
		nameKey := normalizeName(c.Name) + "|" + domainOf(c.SourceURL)

		if email != "" {
			if seenEmails[email] {
				c.IsDuplicate = true
				continue
			}
			seenEmails[email] = true
		}

		if normalizeName(c.Name) != "" {
			if seenNames[nameKey] {
				c.IsDuplicate = true
				continue
			}
			seenNames[nameKey] = true
		}
	}

	return contactList
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

func domainOf(rawURL string) string {
	url := strings.ToLower(rawURL)
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")
	url = strings.TrimPrefix(url, "www.")
	if idx := strings.IndexAny(url, "/?#"); idx != -1 {
		url = url[:idx]
	}
	return url
}
