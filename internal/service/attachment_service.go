package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/complaint-desk-api/internal/dto"
	"github.com/noah-isme/complaint-desk-api/internal/models"
	appErrors "github.com/noah-isme/complaint-desk-api/pkg/errors"
	"github.com/noah-isme/complaint-desk-api/pkg/storage"
)

// sniffLen is how much of each upload is read for content-type detection.
const sniffLen = 3072

const (
	sweepPromoted = "promoted"
	sweepDeleted  = "deleted"
	sweepFailed   = "failed"
)

type attachmentIndex interface {
	FindByID(ctx context.Context, id string) (*models.Complaint, error)
	AttachmentReferenced(ctx context.Context, name string) (bool, error)
}

// AttachmentConfig tunes upload validation and the reconciliation sweep.
type AttachmentConfig struct {
	MaxFileSize  int64
	AllowedMIMEs []string
	OrphanTTL    time.Duration
	// DownloadPath is the route prefix download tokens are appended to, e.g. /api/attachments.
	DownloadPath string
}

// SweepResult summarises one reconciliation pass.
type SweepResult struct {
	Promoted int `json:"promoted"`
	Deleted  int `json:"deleted"`
	Failed   int `json:"failed"`
}

// AttachmentService stages uploads, promotes them into the content area and serves signed downloads.
type AttachmentService struct {
	staging *storage.LocalStorage
	content *storage.LocalStorage
	signer  *storage.SignedURLSigner
	index   attachmentIndex
	audit   auditLogger
	metrics *MetricsService
	logger  *zap.Logger
	cfg     AttachmentConfig
}

// NewAttachmentService constructs an AttachmentService.
func NewAttachmentService(staging, content *storage.LocalStorage, signer *storage.SignedURLSigner, index attachmentIndex, audit auditLogger, metrics *MetricsService, logger *zap.Logger, cfg AttachmentConfig) *AttachmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.OrphanTTL <= 0 {
		cfg.OrphanTTL = time.Hour
	}
	if cfg.DownloadPath == "" {
		cfg.DownloadPath = "/api/attachments"
	}
	cfg.DownloadPath = strings.TrimRight(cfg.DownloadPath, "/")
	return &AttachmentService{
		staging: staging,
		content: content,
		signer:  signer,
		index:   index,
		audit:   audit,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
	}
}

// Stage validates and writes uploads into the staging area, returning the generated names in order.
// Empty uploads are skipped. On any failure the files staged so far are removed.
func (s *AttachmentService) Stage(ctx context.Context, uploads []dto.AttachmentUpload) ([]string, error) {
	names := make([]string, 0, len(uploads))
	for _, upload := range uploads {
		if upload.Open == nil || (upload.Size == 0 && upload.Filename == "") {
			continue
		}
		name, err := s.stageOne(upload)
		if err != nil {
			s.Discard(names)
			return nil, err
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func (s *AttachmentService) stageOne(upload dto.AttachmentUpload) (string, error) {
	if s.cfg.MaxFileSize > 0 && upload.Size > s.cfg.MaxFileSize {
		return "", s.tooLarge(upload.Filename)
	}

	src, err := upload.Open()
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read attachment")
	}
	defer src.Close() //nolint:errcheck

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read attachment")
	}
	head = head[:n]
	if n == 0 {
		return "", nil
	}

	detected := mimetype.Detect(head)
	if !s.allowed(detected) {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("attachment %s has unsupported type %s", upload.Filename, detected.String()))
	}

	name := uuid.NewString() + "_" + sanitizeFilename(upload.Filename)
	if _, err := s.staging.SaveStream(name, io.MultiReader(bytes.NewReader(head), src), s.cfg.MaxFileSize); err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return "", s.tooLarge(upload.Filename)
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store attachment")
	}
	return name, nil
}

func (s *AttachmentService) tooLarge(filename string) error {
	return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("attachment %s exceeds the maximum size of %d bytes", filename, s.cfg.MaxFileSize))
}

func (s *AttachmentService) allowed(detected *mimetype.MIME) bool {
	if len(s.cfg.AllowedMIMEs) == 0 {
		return true
	}
	for m := detected; m != nil; m = m.Parent() {
		for _, allowed := range s.cfg.AllowedMIMEs {
			if m.Is(allowed) {
				return true
			}
		}
	}
	return false
}

// Promote moves staged files into the content area. Failures are logged; the sweep retries them.
func (s *AttachmentService) Promote(ctx context.Context, names []string) {
	for _, name := range names {
		if err := s.staging.MoveTo(name, s.content); err != nil {
			s.logger.Warn("attachment promotion failed", zap.String("name", name), zap.Error(err))
		}
	}
}

// Discard removes staged files.
func (s *AttachmentService) Discard(names []string) {
	for _, name := range names {
		if err := s.staging.Delete(name); err != nil {
			s.logger.Warn("failed to discard staged attachment", zap.String("name", name), zap.Error(err))
		}
	}
}

// Links issues a signed download URL for every attachment of the complaint.
func (s *AttachmentService) Links(complaint *models.Complaint) ([]dto.AttachmentLink, error) {
	names := complaint.Attachments()
	links := make([]dto.AttachmentLink, 0, len(names))
	for _, name := range names {
		token, err := s.signer.Generate(complaint.ID, name)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign attachment url")
		}
		links = append(links, dto.AttachmentLink{
			Name:      name,
			URL:       s.cfg.DownloadPath + "/" + token.Value,
			ExpiresAt: token.ExpiresAt.UTC().Format(time.RFC3339),
		})
	}
	return links, nil
}

// Download is an opened attachment. The caller closes File.
type Download struct {
	File        *os.File
	Name        string
	ContentType string
	Size        int64
}

// Open verifies a download token and opens the attachment it names.
func (s *AttachmentService) Open(ctx context.Context, token string) (*Download, error) {
	claims, err := s.signer.Parse(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "download link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download link")
	}

	complaint, err := s.index.FindByID(ctx, claims.ResourceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attachment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load complaint")
	}
	if !complaint.HasAttachment(claims.Name) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "attachment not found")
	}

	file, err := s.content.Open(claims.Name)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "attachment not found")
	}
	info, err := file.Stat()
	if err != nil {
		file.Close() //nolint:errcheck
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat attachment")
	}
	contentType := "application/octet-stream"
	if detected, err := mimetype.DetectReader(file); err == nil {
		contentType = detected.String()
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close() //nolint:errcheck
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read attachment")
	}
	return &Download{File: file, Name: claims.Name, ContentType: contentType, Size: info.Size()}, nil
}

// Sweep reconciles staged files older than the orphan TTL: referenced files are promoted, the rest deleted.
func (s *AttachmentService) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult
	files, err := s.staging.ListOlderThan(s.cfg.OrphanTTL)
	if err != nil {
		return result, err
	}
	for _, file := range files {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		outcome := s.reconcile(ctx, file.Name)
		switch outcome {
		case sweepPromoted:
			result.Promoted++
		case sweepDeleted:
			result.Deleted++
		default:
			result.Failed++
		}
		s.metrics.SweepFile(outcome)
	}
	if len(files) > 0 {
		s.logger.Info("attachment sweep finished",
			zap.Int("promoted", result.Promoted),
			zap.Int("deleted", result.Deleted),
			zap.Int("failed", result.Failed))
	}
	return result, nil
}

func (s *AttachmentService) reconcile(ctx context.Context, name string) string {
	referenced, err := s.index.AttachmentReferenced(ctx, name)
	if err != nil {
		s.logger.Warn("attachment reference check failed", zap.String("name", name), zap.Error(err))
		return sweepFailed
	}
	if referenced {
		if err := s.staging.MoveTo(name, s.content); err != nil {
			s.logger.Warn("attachment promotion failed", zap.String("name", name), zap.Error(err))
			return sweepFailed
		}
		return sweepPromoted
	}
	if err := s.staging.Delete(name); err != nil {
		s.logger.Warn("orphan attachment delete failed", zap.String("name", name), zap.Error(err))
		return sweepFailed
	}
	if s.audit != nil {
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			Action:     models.AuditActionAttachmentDelete,
			Resource:   "attachment",
			ResourceID: &name,
		}); err != nil {
			s.logger.Warn("failed to record audit log", zap.String("action", models.AuditActionAttachmentDelete), zap.Error(err))
		}
	}
	return sweepDeleted
}

func sanitizeFilename(raw string) string {
	base := filepath.Base(strings.ReplaceAll(raw, `\`, "/"))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name := strings.Trim(b.String(), ".")
	if name == "" {
		return "file"
	}
	if len(name) > 100 {
		name = name[len(name)-100:]
	}
	return name
}
