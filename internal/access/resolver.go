// Package access decides whether a federated principal may enter, which role it holds, and
// runs the guest request workflow for principals that may not.
package access

import (
	"context"
	"strings"

	"github.com/itm-platform/itm-access/internal/identity"
	"github.com/itm-platform/itm-access/internal/metrics"
	"github.com/itm-platform/itm-access/internal/models"
	log "github.com/sirupsen/logrus"
)

// Denial reasons carried on a Decision.
const (
	ReasonAccessDenied    = "AccessDenied"
	ReasonPendingApproval = "PendingApproval"
	ReasonAccessRejected  = "AccessRejected"
	ReasonUnavailable     = "Unavailable"
)

// Names of the lookups that may degrade.
const (
	checkWhitelist = "whitelist"
	checkAdmin     = "admin"
	checkGuest     = "guest"
	checkRequests  = "requests"
	checkContext   = "context"
)

// Whitelist answers the organization code gate.
type Whitelist interface {
	IsWhitelisted(ctx context.Context, companyCode, departmentCode string) (bool, error)
}

// RoleSource returns admin role assignments.
type RoleSource interface {
	Assignment(ctx context.Context, loginID string) (*models.AdminAssignment, error)
}

// GrantSource returns unexpired guest grants.
type GrantSource interface {
	ActiveGrant(ctx context.Context, loginID string) (*models.GuestGrant, error)
}

// RequestHistory returns the latest guest request of a login id.
type RequestHistory interface {
	Latest(ctx context.Context, loginID string) (*models.GuestRequest, error)
}

// ContextSource returns the last operating context of a login id.
type ContextSource interface {
	LastContext(ctx context.Context, loginID string) (*models.Sdwt, error)
}

// Sources bundles the lookups consulted by a Resolver.
type Sources struct {
	Whitelist Whitelist
	Roles     RoleSource
	Grants    GrantSource
	Requests  RequestHistory
	Contexts  ContextSource
}

// Session is the finalized principal handed to the token issuer.
type Session struct {
	UserID         string   `json:"userId"`
	Email          string   `json:"email"`
	Name           string   `json:"name"`
	Department     string   `json:"department"`
	DepartmentName string   `json:"departmentName"`
	CompanyCode    string   `json:"companyCode"`
	CompanyName    string   `json:"companyName"`
	Groups         []string `json:"groups"`
	Role           string   `json:"role"`
	Site           string   `json:"site"`
	Sdwt           string   `json:"sdwt"`
}

// Decision is the outcome of a resolution. Exactly one of Session and Reason is set.
type Decision struct {
	// LoginID is the canonical login id the decision was made for.
	LoginID   string
	Allowed   bool
	Session   *Session
	Reason    string
	RequestID uint64
	// Degraded lists the lookups that failed and were treated as negative.
	Degraded []string
}

// Err maps a denial to its sentinel error; allowed decisions return nil.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case ReasonPendingApproval:
		return ErrPendingApproval
	case ReasonAccessRejected:
		return ErrAccessRejected
	case ReasonUnavailable:
		return ErrAccessUnavailable
	default:
		return ErrAccessDenied
	}
}

// Resolver evaluates the access gates for one principal. It keeps no state between calls.
type Resolver struct {
	src     Sources
	policy  Policy
	metrics *metrics.Metrics
}

// NewResolver constructs a Resolver.
func NewResolver(src Sources, policy Policy, m *metrics.Metrics) *Resolver {
	return &Resolver{src: src, policy: policy, metrics: m}
}

// Resolve always returns a decision. Lookup failures are logged and treated as negative,
// unless the policy is fail-closed, in which case they deny with ReasonUnavailable.
func (r *Resolver) Resolve(ctx context.Context, p identity.Principal, canonicalID string) Decision {
	if strings.TrimSpace(canonicalID) == "" {
		canonicalID = p.LoginID
	}
	t := &trace{login: canonicalID, metrics: r.metrics}

	whitelisted, errWhitelist := r.src.Whitelist.IsWhitelisted(ctx, p.CompanyCode, p.DepartmentCode)
	if errWhitelist != nil {
		t.fail(checkWhitelist, errWhitelist)
		whitelisted = false
	}

	role := ""
	assignment, errAssignment := r.src.Roles.Assignment(ctx, canonicalID)
	if errAssignment != nil {
		t.fail(checkAdmin, errAssignment)
		assignment = nil
	}
	if assignment != nil {
		role = models.NormalizeRole(assignment.Role)
	}
	if role == "" {
		role = r.policy.groupRole(p.Groups)
	}
	if role == "" {
		grant, errGrant := r.src.Grants.ActiveGrant(ctx, canonicalID)
		if errGrant != nil {
			t.fail(checkGuest, errGrant)
			grant = nil
		}
		if grant != nil {
			role = models.NormalizeRole(grant.GrantedRole)
			if role == "" {
				role = models.RoleGuest
			}
		}
	}

	if r.policy.FailClosed && len(t.failed) > 0 {
		log.WithField("login", canonicalID).Warnf("access: denied, checks unavailable: %s", strings.Join(t.failed, ","))
		return r.finish(t, Decision{Reason: ReasonUnavailable, Degraded: t.failed})
	}

	if !whitelisted && role == "" {
		return r.finish(t, r.deny(ctx, t))
	}
	if role == "" {
		role = models.RoleUser
	}

	session := &Session{
		UserID:         canonicalID,
		Email:          p.Email,
		Name:           p.DisplayName,
		Department:     p.DepartmentCode,
		DepartmentName: p.DepartmentName,
		CompanyCode:    p.CompanyCode,
		CompanyName:    p.CompanyName,
		Groups:         p.Groups,
		Role:           role,
	}
	if session.Groups == nil {
		session.Groups = []string{}
	}
	last, errContext := r.src.Contexts.LastContext(ctx, canonicalID)
	if errContext != nil {
		t.fail(checkContext, errContext)
	} else if last != nil {
		session.Site = last.Site
		session.Sdwt = last.Sdwt
	}

	log.WithFields(log.Fields{"login": canonicalID, "role": role}).Info("access: allowed")
	return r.finish(t, Decision{Allowed: true, Session: session, Degraded: t.failed})
}

// deny builds the denial from the latest guest request.
func (r *Resolver) deny(ctx context.Context, t *trace) Decision {
	d := Decision{Reason: ReasonAccessDenied}
	latest, errLatest := r.src.Requests.Latest(ctx, t.login)
	if errLatest != nil {
		t.fail(checkRequests, errLatest)
		latest = nil
	}
	if latest != nil {
		switch latest.Status {
		case models.GuestRequestPending:
			d.Reason = ReasonPendingApproval
			d.RequestID = latest.ReqID
		case models.GuestRequestRejected:
			d.Reason = ReasonAccessRejected
			d.RequestID = latest.ReqID
		}
	}
	d.Degraded = t.failed
	log.WithFields(log.Fields{"login": t.login, "reason": d.Reason, "reqId": d.RequestID}).Info("access: denied")
	return d
}

// trace collects the lookups that failed during one resolution.
type trace struct {
	login   string
	failed  []string
	metrics *metrics.Metrics
}

func (t *trace) fail(check string, err error) {
	t.failed = append(t.failed, check)
	t.metrics.ObserveDegraded(check)
	log.WithError(err).WithField("login", t.login).Warnf("access: %s check inconclusive", check)
}

func (r *Resolver) finish(t *trace, d Decision) Decision {
	d.LoginID = t.login
	outcome := "allowed"
	if !d.Allowed {
		outcome = d.Reason
	}
	r.metrics.ObserveDecision(outcome)
	return d
}
