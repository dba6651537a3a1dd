// internal/repository/audit.go
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"

	"vacancy-workers/internal/applications"
)

// AuditDocument is one evaluation as stored in the audit index.
type AuditDocument struct {
	AuditID       string                          `json:"audit_id"`
	ApplicationID string                          `json:"application_id"`
	UnitID        string                          `json:"unit_id"`
	Status        string                          `json:"status"`
	Decision      string                          `json:"decision"`
	TotalScore    int16                           `json:"total_score"`
	Rationale     string                          `json:"rationale"`
	Outcome       *applications.EvaluationOutcome `json:"outcome"`
	IndexedAt     string                          `json:"indexed_at"`
}

// AuditIndexer writes every evaluation to Elasticsearch. Each evaluation gets
// its own document so re-evaluations keep their history.
type AuditIndexer struct {
	client *elasticsearch.Client
	index  string
	now    func() time.Time
}

func NewAuditIndexer(client *elasticsearch.Client, index string) *AuditIndexer {
	return &AuditIndexer{client: client, index: index, now: time.Now}
}

func (a *AuditIndexer) RecordOutcome(ctx context.Context, record applications.Record) error {
	doc := NewAuditDocument(record, a.now())

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("audit encode: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      a.index,
		DocumentID: doc.AuditID,
		Body:       bytes.NewReader(body),
	}

	res, err := req.Do(ctx, a.client)
	if err != nil {
		return fmt.Errorf("audit index %s: %w", a.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("audit index %s: %s", a.index, res.Status())
	}
	return nil
}

func NewAuditDocument(record applications.Record, now time.Time) AuditDocument {
	doc := AuditDocument{
		AuditID:       uuid.New().String(),
		ApplicationID: string(record.ID()),
		UnitID:        record.Profile.Listing.UnitID,
		Status:        record.Status.Label(),
		Rationale:     record.DecisionRationale(),
		Outcome:       record.Evaluation,
		IndexedAt:     now.UTC().Format(time.RFC3339),
	}
	if record.Evaluation != nil {
		doc.Decision = string(record.Evaluation.Decision.Kind)
		doc.TotalScore = record.Evaluation.TotalScore
	}
	return doc
}
