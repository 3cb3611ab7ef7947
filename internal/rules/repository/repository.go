// Package repository persists scoring and assignment rules in Postgres.
// The leads core consumes it read-only through ports.RuleStore; operators
// manage rules through the rules service.
package repository

import (
	"context"
	"encoding/json"
	"errors"

	"admin_console_backend/internal/leads/domain"
	"admin_console_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements rule persistence, including ports.RuleStore.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new rules repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListActiveScoringRules returns active scoring rules ordered by score value
// descending, the order the engine reports factors in.
func (r *Repository) ListActiveScoringRules(ctx context.Context) ([]domain.ScoringRule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, rule_name, rule_type, score_value, is_active, conditions
		FROM scoring_rules
		WHERE is_active = true
		ORDER BY score_value DESC, rule_name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanScoringRules(rows)
}

// ListScoringRules returns every scoring rule for the operator console.
func (r *Repository) ListScoringRules(ctx context.Context) ([]domain.ScoringRule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, rule_name, rule_type, score_value, is_active, conditions
		FROM scoring_rules
		ORDER BY rule_name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanScoringRules(rows)
}

// CreateScoringRule inserts a new scoring rule.
func (r *Repository) CreateScoringRule(ctx context.Context, rule domain.ScoringRule) (domain.ScoringRule, error) {
	conditions, err := json.Marshal(rule.Conditions)
	if err != nil {
		return domain.ScoringRule{}, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO scoring_rules (rule_name, rule_type, score_value, is_active, conditions)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, rule_name, rule_type, score_value, is_active, conditions
	`, rule.RuleName, string(rule.RuleType), rule.ScoreValue, rule.IsActive, conditions)
	return scanScoringRule(row)
}

// UpdateScoringRule replaces a scoring rule's mutable fields.
func (r *Repository) UpdateScoringRule(ctx context.Context, rule domain.ScoringRule) (domain.ScoringRule, error) {
	conditions, err := json.Marshal(rule.Conditions)
	if err != nil {
		return domain.ScoringRule{}, err
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE scoring_rules
		SET rule_name = $2, rule_type = $3, score_value = $4, is_active = $5, conditions = $6, updated_at = now()
		WHERE id = $1
		RETURNING id, rule_name, rule_type, score_value, is_active, conditions
	`, rule.ID, rule.RuleName, string(rule.RuleType), rule.ScoreValue, rule.IsActive, conditions)
	updated, err := scanScoringRule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ScoringRule{}, apperr.NotFound("scoring rule not found")
		}
		return domain.ScoringRule{}, err
	}
	return updated, nil
}

// DeleteScoringRule removes a scoring rule.
func (r *Repository) DeleteScoringRule(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM scoring_rules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("scoring rule not found")
	}
	return nil
}

// ListActiveAssignmentRules returns active assignment rules by priority
// order, lowest first.
func (r *Repository) ListActiveAssignmentRules(ctx context.Context) ([]domain.AssignmentRule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, rule_name, rule_type, admin_pool, priority_order, is_active, conditions
		FROM assignment_rules
		WHERE is_active = true
		ORDER BY priority_order ASC, rule_name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssignmentRules(rows)
}

// ListAssignmentRules returns every assignment rule for the operator console.
func (r *Repository) ListAssignmentRules(ctx context.Context) ([]domain.AssignmentRule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, rule_name, rule_type, admin_pool, priority_order, is_active, conditions
		FROM assignment_rules
		ORDER BY priority_order ASC, rule_name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssignmentRules(rows)
}

// CreateAssignmentRule inserts a new assignment rule.
func (r *Repository) CreateAssignmentRule(ctx context.Context, rule domain.AssignmentRule) (domain.AssignmentRule, error) {
	conditions, err := json.Marshal(rule.Conditions)
	if err != nil {
		return domain.AssignmentRule{}, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO assignment_rules (rule_name, rule_type, admin_pool, priority_order, is_active, conditions)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, rule_name, rule_type, admin_pool, priority_order, is_active, conditions
	`, rule.RuleName, string(rule.RuleType), rule.AdminPool, rule.PriorityOrder, rule.IsActive, conditions)
	return scanAssignmentRule(row)
}

// UpdateAssignmentRule replaces an assignment rule's mutable fields.
func (r *Repository) UpdateAssignmentRule(ctx context.Context, rule domain.AssignmentRule) (domain.AssignmentRule, error) {
	conditions, err := json.Marshal(rule.Conditions)
	if err != nil {
		return domain.AssignmentRule{}, err
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE assignment_rules
		SET rule_name = $2, rule_type = $3, admin_pool = $4, priority_order = $5, is_active = $6, conditions = $7, updated_at = now()
		WHERE id = $1
		RETURNING id, rule_name, rule_type, admin_pool, priority_order, is_active, conditions
	`, rule.ID, rule.RuleName, string(rule.RuleType), rule.AdminPool, rule.PriorityOrder, rule.IsActive, conditions)
	updated, err := scanAssignmentRule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.AssignmentRule{}, apperr.NotFound("assignment rule not found")
		}
		return domain.AssignmentRule{}, err
	}
	return updated, nil
}

// DeleteAssignmentRule removes an assignment rule.
func (r *Repository) DeleteAssignmentRule(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM assignment_rules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("assignment rule not found")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScoringRule(row rowScanner) (domain.ScoringRule, error) {
	var (
		rule       domain.ScoringRule
		ruleType   string
		conditions []byte
	)
	if err := row.Scan(&rule.ID, &rule.RuleName, &ruleType, &rule.ScoreValue, &rule.IsActive, &conditions); err != nil {
		return domain.ScoringRule{}, err
	}
	rule.RuleType = domain.ScoringRuleType(ruleType)
	if len(conditions) > 0 {
		if err := json.Unmarshal(conditions, &rule.Conditions); err != nil {
			return domain.ScoringRule{}, err
		}
	}
	return rule, nil
}

func scanScoringRules(rows pgx.Rows) ([]domain.ScoringRule, error) {
	rules := make([]domain.ScoringRule, 0)
	for rows.Next() {
		rule, err := scanScoringRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func scanAssignmentRule(row rowScanner) (domain.AssignmentRule, error) {
	var (
		rule       domain.AssignmentRule
		ruleType   string
		conditions []byte
	)
	if err := row.Scan(&rule.ID, &rule.RuleName, &ruleType, &rule.AdminPool, &rule.PriorityOrder, &rule.IsActive, &conditions); err != nil {
		return domain.AssignmentRule{}, err
	}
	rule.RuleType = domain.AssignmentRuleType(ruleType)
	if len(conditions) > 0 {
		if err := json.Unmarshal(conditions, &rule.Conditions); err != nil {
			return domain.AssignmentRule{}, err
		}
	}
	return rule, nil
}

func scanAssignmentRules(rows pgx.Rows) ([]domain.AssignmentRule, error) {
	rules := make([]domain.AssignmentRule, 0)
	for rows.Next() {
		rule, err := scanAssignmentRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}
