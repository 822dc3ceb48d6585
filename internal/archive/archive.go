// Package archive persists generated proposal bundles to Elasticsearch for
// later search and audit. Archiving is best-effort: a failed write is logged
// and never fails the pipeline run that produced the bundle.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"proposal-engine/internal/common/logger"
	"proposal-engine/internal/models"
)

const archiveTimeout = 10 * time.Second

// Indexer writes proposal bundles to an Elasticsearch index.
type Indexer struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewIndexer(client *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	return &Indexer{
		client: client,
		index:  index,
		logger: log.With(map[string]interface{}{"component": "archive"}),
	}
}

// Store indexes the bundle under its proposal ID.
func (i *Indexer) Store(ctx context.Context, bundle *models.ProposalBundle) error {
	data, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("marshal bundle: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: bundle.ProposalID,
		Body:       bytes.NewReader(data),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("index proposal %s: %w", bundle.ProposalID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index proposal %s: %s", bundle.ProposalID, res.Status())
	}

	i.logger.Info("proposal archived", map[string]interface{}{
		"proposalId": bundle.ProposalID,
		"requestId":  bundle.RequestID,
		"index":      i.index,
	})
	return nil
}

// StoreAsync archives in the background so the caller can return the bundle
// immediately. Errors are logged only.
func (i *Indexer) StoreAsync(bundle *models.ProposalBundle) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()
		if err := i.Store(ctx, bundle); err != nil {
			i.logger.Warn("proposal archive failed", map[string]interface{}{
				"proposalId": bundle.ProposalID,
				"error":      err.Error(),
			})
		}
	}()
}
