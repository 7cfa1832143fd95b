package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"curebird/internal/providers"
)

// execer is the part of pgxpool.Pool the audit repo uses.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// LLMAuditRepo stores provider-call metadata. Prompt and response content
// is never written.
type LLMAuditRepo struct {
	db execer
}

func NewLLMAuditRepo(db *DB) *LLMAuditRepo {
	return &LLMAuditRepo{db: db.Pool}
}

const insertLLMCall = `
INSERT INTO llm_calls(call_id, operation, conversation_id, provider_name, model, tier, attempt, status, error_type, latency_ms)
VALUES (COALESCE(NULLIF($1,'')::uuid, gen_random_uuid()), $2, NULLIF($3,''), $4, $5, $6, $7, $8, NULLIF($9,''), $10)`

// RecordCall satisfies router.Auditor.
func (r *LLMAuditRepo) RecordCall(ctx context.Context, rec providers.CallRecord) error {
	_, err := r.db.Exec(ctx, insertLLMCall,
		rec.CallID, rec.Operation, rec.ConversationID, rec.ProviderName, rec.Model,
		string(rec.Tier), rec.Attempt, rec.Status, string(rec.ErrorType), rec.Latency.Milliseconds())
	if err != nil {
		return fmt.Errorf("insert llm call: %w", err)
	}
	return nil
}
