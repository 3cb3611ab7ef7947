// Command seed-rules loads scoring and assignment rules from a YAML file
// into the database. Existing rules are left untouched; rules whose name is
// already present are skipped.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"admin_console_backend/internal/leads/domain"
	"admin_console_backend/internal/rules/repository"
	"admin_console_backend/platform/config"
	"admin_console_backend/platform/db"
	"admin_console_backend/platform/logger"
)

type seedFile struct {
	ScoringRules []struct {
		Name       string            `yaml:"name"`
		Type       string            `yaml:"type"`
		ScoreValue int               `yaml:"scoreValue"`
		Active     *bool             `yaml:"active"`
		Conditions map[string]string `yaml:"conditions"`
	} `yaml:"scoringRules"`
	AssignmentRules []struct {
		Name          string            `yaml:"name"`
		Type          string            `yaml:"type"`
		AdminPool     []string          `yaml:"adminPool"`
		PriorityOrder int               `yaml:"priorityOrder"`
		Active        *bool             `yaml:"active"`
		Conditions    map[string]string `yaml:"conditions"`
	} `yaml:"assignmentRules"`
}

func main() {
	var path string
	flag.StringVar(&path, "file", "rules.yaml", "path to the rules YAML file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Error("failed to read rules file", "path", path, "error", err)
		os.Exit(1)
	}

	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		log.Error("failed to parse rules file", "path", path, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo := repository.New(pool)

	existingScoring, err := repo.ListScoringRules(ctx)
	if err != nil {
		log.Error("failed to list scoring rules", "error", err)
		os.Exit(1)
	}
	scoringNames := make(map[string]bool, len(existingScoring))
	for _, rule := range existingScoring {
		scoringNames[rule.RuleName] = true
	}

	var created, skipped int
	for _, entry := range seed.ScoringRules {
		if scoringNames[entry.Name] {
			skipped++
			continue
		}
		rule := domain.ScoringRule{
			RuleName:   entry.Name,
			RuleType:   domain.ScoringRuleType(entry.Type),
			ScoreValue: entry.ScoreValue,
			IsActive:   entry.Active == nil || *entry.Active,
			Conditions: entry.Conditions,
		}
		if _, err := repo.CreateScoringRule(ctx, rule); err != nil {
			log.Error("failed to create scoring rule", "name", entry.Name, "error", err)
			os.Exit(1)
		}
		created++
	}

	existingAssignment, err := repo.ListAssignmentRules(ctx)
	if err != nil {
		log.Error("failed to list assignment rules", "error", err)
		os.Exit(1)
	}
	assignmentNames := make(map[string]bool, len(existingAssignment))
	for _, rule := range existingAssignment {
		assignmentNames[rule.RuleName] = true
	}

	for _, entry := range seed.AssignmentRules {
		if assignmentNames[entry.Name] {
			skipped++
			continue
		}
		adminPool := make([]uuid.UUID, 0, len(entry.AdminPool))
		for _, raw := range entry.AdminPool {
			id, err := uuid.Parse(raw)
			if err != nil {
				log.Error("invalid admin id in pool", "rule", entry.Name, "value", raw)
				os.Exit(1)
			}
			adminPool = append(adminPool, id)
		}
		rule := domain.AssignmentRule{
			RuleName:      entry.Name,
			RuleType:      domain.AssignmentRuleType(entry.Type),
			AdminPool:     adminPool,
			PriorityOrder: entry.PriorityOrder,
			IsActive:      entry.Active == nil || *entry.Active,
			Conditions:    entry.Conditions,
		}
		if _, err := repo.CreateAssignmentRule(ctx, rule); err != nil {
			log.Error("failed to create assignment rule", "name", entry.Name, "error", err)
			os.Exit(1)
		}
		created++
	}

	log.Info("rule seeding complete", "created", created, "skipped", skipped)
}
