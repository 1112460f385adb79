package access

import (
	"context"
	"time"

	"github.com/itm-platform/itm-access/internal/identity"
	"github.com/itm-platform/itm-access/internal/metrics"
	"github.com/itm-platform/itm-access/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Service is the entry point used by the transport layer. Every call re-reads state from
// the store.
type Service struct {
	db     *gorm.DB
	policy Policy

	Ledger   *identity.Ledger
	Codes    *CodeRegistry
	Roles    *RoleTable
	Grants   *GrantStore
	Requests *Workflow
	Contexts *ContextStore
	Resolver *Resolver
}

// NewService wires the stores and the resolver on one database handle.
func NewService(db *gorm.DB, policy Policy, m *metrics.Metrics) *Service {
	s := &Service{
		db:       db,
		policy:   policy,
		Ledger:   identity.NewLedger(db),
		Codes:    NewCodeRegistry(db),
		Roles:    NewRoleTable(db),
		Grants:   NewGrantStore(db),
		Requests: NewWorkflow(db, m),
		Contexts: NewContextStore(db),
	}
	s.Resolver = NewResolver(Sources{
		Whitelist: s.Codes,
		Roles:     s.Roles,
		Grants:    s.Grants,
		Requests:  s.Requests,
		Contexts:  s.Contexts,
	}, policy, m)
	return s
}

// ResolveSession records the login and resolves access for the principal. A ledger failure
// does not abort the decision; the presented login id is used instead.
func (s *Service) ResolveSession(ctx context.Context, p identity.Principal) Decision {
	canonical, errSync := s.Ledger.SyncLogin(ctx, p.LoginID)
	if errSync != nil {
		log.WithError(errSync).WithField("login", p.LoginID).Warn("access: login ledger unavailable, using presented id")
	}
	return s.Resolver.Resolve(ctx, p, canonical)
}

// SubmitGuestRequest files a guest request, or returns the one already pending.
func (s *Service) SubmitGuestRequest(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	return s.Requests.Submit(ctx, in)
}

// ApproveGuestRequest approves a pending request and grants access until validUntil.
func (s *Service) ApproveGuestRequest(ctx context.Context, reqID uint64, validUntil time.Time, role, approverID string) (*models.GuestRequest, error) {
	return s.Requests.Approve(ctx, ApproveInput{ReqID: reqID, ValidUntil: validUntil, Role: role, ApproverID: approverID})
}

// RejectGuestRequest rejects a pending request.
func (s *Service) RejectGuestRequest(ctx context.Context, reqID uint64, approverID string) (*models.GuestRequest, error) {
	return s.Requests.Reject(ctx, reqID, approverID)
}

// SaveUserContext stores the user's selected site and sdwt.
func (s *Service) SaveUserContext(ctx context.Context, loginID, site, sdwt string) (*models.UserContext, error) {
	return s.Contexts.SaveContext(ctx, loginID, site, sdwt)
}
