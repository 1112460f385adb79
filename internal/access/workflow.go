package access

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/itm-platform/itm-access/internal/metrics"
	"github.com/itm-platform/itm-access/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SubmitInput describes a guest access application.
type SubmitInput struct {
	LoginID        string
	DepartmentCode string
	DepartmentName string
	Reason         string
}

// SubmitResult carries the stored request and whether it already existed.
type SubmitResult struct {
	Request        models.GuestRequest
	AlreadyPending bool
}

// ApproveInput describes an approval decision.
type ApproveInput struct {
	ReqID      uint64
	ValidUntil time.Time
	Role       string
	ApproverID string
}

// Workflow drives guest requests through PENDING -> APPROVED | REJECTED.
type Workflow struct {
	db      *gorm.DB
	now     func() time.Time
	metrics *metrics.Metrics
}

// NewWorkflow constructs a Workflow.
func NewWorkflow(db *gorm.DB, m *metrics.Metrics) *Workflow {
	return &Workflow{db: db, now: time.Now, metrics: m}
}

// Submit creates a PENDING request, or returns the existing pending request for the same
// login id with AlreadyPending set.
func (w *Workflow) Submit(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	loginID := strings.TrimSpace(in.LoginID)
	key := models.LoginKey(loginID)
	if key == "" {
		return SubmitResult{}, fmt.Errorf("%w: login id is required", ErrInvalidInput)
	}

	existing, errFind := w.pending(ctx, key)
	if errFind != nil {
		return SubmitResult{}, fmt.Errorf("submit guest request: %w", errFind)
	}
	if existing != nil {
		return SubmitResult{Request: *existing, AlreadyPending: true}, nil
	}

	now := w.now().UTC()
	req := models.GuestRequest{
		LoginID:        loginID,
		DepartmentCode: strings.TrimSpace(in.DepartmentCode),
		DepartmentName: strings.TrimSpace(in.DepartmentName),
		Reason:         strings.TrimSpace(in.Reason),
		Status:         models.GuestRequestPending,
		PendingKey:     &key,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	errTx := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errCreate := tx.Create(&req).Error; errCreate != nil {
			return errCreate
		}
		return appendEvent(tx, req.ReqID, "", models.GuestRequestPending, loginID, map[string]any{
			"deptCode": req.DepartmentCode,
			"deptName": req.DepartmentName,
			"reason":   req.Reason,
		})
	})
	if errTx != nil {
		// The unique pending_key index rejects a concurrent duplicate; report the winner.
		if winner, errWinner := w.pending(ctx, key); errWinner == nil && winner != nil {
			return SubmitResult{Request: *winner, AlreadyPending: true}, nil
		}
		return SubmitResult{}, fmt.Errorf("submit guest request: %w", errTx)
	}

	w.metrics.ObserveTransition(models.GuestRequestPending)
	log.Infof("guest request %d submitted by %s", req.ReqID, loginID)
	return SubmitResult{Request: req}, nil
}

// Approve grants guest access for the request's login id and marks it APPROVED. The grant
// upsert, the status transition and the audit event commit in one transaction.
func (w *Workflow) Approve(ctx context.Context, in ApproveInput) (*models.GuestRequest, error) {
	if in.ValidUntil.IsZero() {
		return nil, fmt.Errorf("%w: valid until is required", ErrInvalidInput)
	}
	approver := strings.TrimSpace(in.ApproverID)
	if approver == "" {
		return nil, fmt.Errorf("%w: approver is required", ErrInvalidInput)
	}
	now := w.now().UTC()
	var out models.GuestRequest
	var grant *models.GuestGrant
	errTx := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req, errLoad := loadRequest(tx, in.ReqID)
		if errLoad != nil {
			return errLoad
		}
		if errTransition := transition(tx, req, models.GuestRequestApproved, approver, now); errTransition != nil {
			return errTransition
		}
		var errGrant error
		grant, errGrant = upsertGrant(tx, GrantInput{
			LoginID:        req.LoginID,
			Role:           in.Role,
			ValidUntil:     in.ValidUntil,
			DepartmentCode: req.DepartmentCode,
			DepartmentName: req.DepartmentName,
			Reason:         req.Reason,
		}, now)
		if errGrant != nil {
			return errGrant
		}
		if errEvent := appendEvent(tx, req.ReqID, models.GuestRequestPending, models.GuestRequestApproved, approver, map[string]any{
			"grantedRole": grant.GrantedRole,
			"validUntil":  grant.ValidUntil,
		}); errEvent != nil {
			return errEvent
		}
		out = *req
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}

	w.metrics.ObserveTransition(models.GuestRequestApproved)
	log.Infof("guest request %d approved by %s (role=%s until=%s)", out.ReqID, approver, grant.GrantedRole, in.ValidUntil.UTC().Format(time.RFC3339))
	return &out, nil
}

// Reject marks a PENDING request REJECTED. Guest grants are left untouched.
func (w *Workflow) Reject(ctx context.Context, reqID uint64, approverID string) (*models.GuestRequest, error) {
	approver := strings.TrimSpace(approverID)
	if approver == "" {
		return nil, fmt.Errorf("%w: approver is required", ErrInvalidInput)
	}

	now := w.now().UTC()
	var out models.GuestRequest
	errTx := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req, errLoad := loadRequest(tx, reqID)
		if errLoad != nil {
			return errLoad
		}
		if errTransition := transition(tx, req, models.GuestRequestRejected, approver, now); errTransition != nil {
			return errTransition
		}
		if errEvent := appendEvent(tx, req.ReqID, models.GuestRequestPending, models.GuestRequestRejected, approver, nil); errEvent != nil {
			return errEvent
		}
		out = *req
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}

	w.metrics.ObserveTransition(models.GuestRequestRejected)
	log.Infof("guest request %d rejected by %s", out.ReqID, approver)
	return &out, nil
}

// Latest returns the most recently created request for loginID, or nil.
func (w *Workflow) Latest(ctx context.Context, loginID string) (*models.GuestRequest, error) {
	var req models.GuestRequest
	errFind := w.db.WithContext(ctx).
		Where("login_key = ?", models.LoginKey(loginID)).
		Order("created_at DESC").
		Order("req_id DESC").
		Take(&req).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if errFind != nil {
		return nil, errFind
	}
	return &req, nil
}

// Get returns a request by id.
func (w *Workflow) Get(ctx context.Context, reqID uint64) (*models.GuestRequest, error) {
	return loadRequest(w.db.WithContext(ctx), reqID)
}

// List returns requests newest first, optionally filtered by status.
func (w *Workflow) List(ctx context.Context, status string) ([]models.GuestRequest, error) {
	q := w.db.WithContext(ctx).Model(&models.GuestRequest{})
	if status = strings.ToUpper(strings.TrimSpace(status)); status != "" {
		q = q.Where("status = ?", status)
	}
	var rows []models.GuestRequest
	if errFind := q.Order("created_at DESC").Order("req_id DESC").Find(&rows).Error; errFind != nil {
		return nil, errFind
	}
	return rows, nil
}

// Events returns the audit trail of a request in order.
func (w *Workflow) Events(ctx context.Context, reqID uint64) ([]models.GuestRequestEvent, error) {
	var rows []models.GuestRequestEvent
	if errFind := w.db.WithContext(ctx).Where("req_id = ?", reqID).Order("id ASC").Find(&rows).Error; errFind != nil {
		return nil, errFind
	}
	return rows, nil
}

func (w *Workflow) pending(ctx context.Context, key string) (*models.GuestRequest, error) {
	var req models.GuestRequest
	errFind := w.db.WithContext(ctx).Where("pending_key = ?", key).Take(&req).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if errFind != nil {
		return nil, errFind
	}
	return &req, nil
}

func loadRequest(tx *gorm.DB, reqID uint64) (*models.GuestRequest, error) {
	var req models.GuestRequest
	errFind := tx.Where("req_id = ?", reqID).Take(&req).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrRequestNotFound, reqID)
	}
	if errFind != nil {
		return nil, errFind
	}
	return &req, nil
}

// transition moves req out of PENDING with a conditional update, so a concurrent transition
// that committed first leaves zero affected rows.
func transition(tx *gorm.DB, req *models.GuestRequest, to, actor string, now time.Time) error {
	if req.Terminal() {
		return fmt.Errorf("%w: request %d is already %s", ErrInvalidStateTransition, req.ReqID, req.Status)
	}
	res := tx.Model(&models.GuestRequest{}).
		Where("req_id = ? AND status = ?", req.ReqID, models.GuestRequestPending).
		UpdateColumns(map[string]any{
			"status":       to,
			"pending_key":  nil,
			"processed_by": actor,
			"processed_at": now,
			"updated_at":   now,
		})
	if res.Error != nil {
		return fmt.Errorf("transition guest request %d: %w", req.ReqID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: request %d changed concurrently", ErrInvalidStateTransition, req.ReqID)
	}
	req.Status = to
	req.PendingKey = nil
	req.ProcessedBy = actor
	req.ProcessedAt = &now
	req.UpdatedAt = now
	return nil
}

func appendEvent(tx *gorm.DB, reqID uint64, from, to, actor string, detail map[string]any) error {
	event := models.GuestRequestEvent{ReqID: reqID, FromStatus: from, ToStatus: to, Actor: actor}
	if len(detail) > 0 {
		raw, errMarshal := json.Marshal(detail)
		if errMarshal != nil {
			return fmt.Errorf("marshal guest request event: %w", errMarshal)
		}
		event.Detail = datatypes.JSON(raw)
	}
	if errCreate := tx.Create(&event).Error; errCreate != nil {
		return fmt.Errorf("record guest request event: %w", errCreate)
	}
	return nil
}
