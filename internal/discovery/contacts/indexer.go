// internal/discovery/contacts/indexer.go
package contacts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"contact-discovery/internal/common/errors"
	"contact-discovery/internal/common/logger"
	"contact-discovery/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

// Indexer writes scored contacts into the Elasticsearch contact index so the
// downstream ranking step can search over them.
type Indexer struct {
	es     *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewIndexer(es *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	return &Indexer{
		es:     es,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "contact-indexer"}),
	}
}

// Index upserts one scored contact document keyed by contact ID.
func (i *Indexer) Index(ctx context.Context, contact models.ExtractedContact) error {
	payload, err := json.Marshal(contact)
	if err != nil {
		return errors.NewContactIndexError(contact.ID, err)
	}

	res, err := i.es.Index(
		i.index,
		bytes.NewReader(payload),
		i.es.Index.WithDocumentID(contact.ID),
		i.es.Index.WithContext(ctx),
	)
	if err != nil {
		return errors.NewContactIndexError(contact.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.NewContactIndexError(contact.ID, fmt.Errorf("index response: %s", res.Status()))
	}

	i.logger.Debug("contact indexed", map[string]interface{}{
		"contactId": contact.ID,
		"index":     i.index,
	})
	return nil
}

// IndexAll indexes every contact, collecting per-contact failures instead of
// aborting the batch.
func (i *Indexer) IndexAll(ctx context.Context, contactList []models.ExtractedContact) []error {
	var failures []error
	for _, contact := range contactList {
		if err := i.Index(ctx, contact); err != nil {
			i.logger.Warn("contact index write failed", map[string]interface{}{
				"contactId": contact.ID,
				"error":     err.Error(),
			})
			failures = append(failures, err)
		}
	}
	return failures
}
