// Package exports generates CSV snapshots of the lead book and stores them
// in object storage behind presigned download links.
package exports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"admin_console_backend/internal/adapters/storage"
	"admin_console_backend/internal/leads/domain"
	"admin_console_backend/internal/leads/ports"
	"admin_console_backend/platform/logger"
)

const csvContentType = "text/csv"

var csvHeader = []string{
	"id", "contact_name", "email", "phone", "organization_name",
	"status", "priority", "source", "qualification_score", "ai_score",
	"assigned_to", "converted_tenant_id", "rejection_reason", "created_at",
}

// ExportResult describes a completed export.
type ExportResult struct {
	FileKey     string    `json:"fileKey"`
	RowCount    int       `json:"rowCount"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Service builds CSV exports from the lead store.
type Service struct {
	leads  ports.LeadStore
	store  storage.ObjectStore
	bucket string
	log    *logger.Logger
}

// NewService creates a new exports service.
func NewService(leads ports.LeadStore, store storage.ObjectStore, bucket string, log *logger.Logger) *Service {
	return &Service{leads: leads, store: store, bucket: bucket, log: log}
}

// ExportLeads writes a CSV of the filtered lead book to object storage and
// returns a presigned download link.
func (s *Service) ExportLeads(ctx context.Context, filter ports.ListLeadsFilter, requestedBy uuid.UUID) (ExportResult, error) {
	leads, err := s.leads.List(ctx, filter)
	if err != nil {
		return ExportResult{}, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(csvHeader); err != nil {
		return ExportResult{}, err
	}
	for _, lead := range leads {
		if err := writer.Write(leadRow(lead)); err != nil {
			return ExportResult{}, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return ExportResult{}, err
	}

	key := fmt.Sprintf("leads/%s_%s.csv", time.Now().UTC().Format("20060102T150405Z"), uuid.New().String()[:8])
	if err := s.store.EnsureBucket(ctx, s.bucket); err != nil {
		return ExportResult{}, err
	}
	if err := s.store.UploadObject(ctx, s.bucket, key, csvContentType, &buf, int64(buf.Len())); err != nil {
		return ExportResult{}, err
	}

	presigned, err := s.store.PresignDownload(ctx, s.bucket, key)
	if err != nil {
		return ExportResult{}, err
	}

	s.log.Info("lead export created", "file_key", key, "rows", len(leads), "requested_by", requestedBy)
	return ExportResult{
		FileKey:     key,
		RowCount:    len(leads),
		DownloadURL: presigned.URL,
		ExpiresAt:   presigned.ExpiresAt,
	}, nil
}

func leadRow(lead domain.Lead) []string {
	return []string{
		lead.ID.String(),
		lead.ContactName,
		lead.Email,
		strValue(lead.Phone),
		strValue(lead.OrganizationName),
		string(lead.Status),
		string(lead.Priority),
		lead.Source,
		strconv.Itoa(lead.QualificationScore),
		intValue(lead.AIScore),
		uuidValue(lead.AssignedTo),
		uuidValue(lead.ConvertedTenantID),
		strValue(lead.RejectionReason),
		lead.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func strValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func intValue(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func uuidValue(p *uuid.UUID) string {
	if p == nil {
		return ""
	}
	return p.String()
}
