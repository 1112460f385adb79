package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/itm-platform/itm-access/internal/access"
	"github.com/itm-platform/itm-access/internal/identity"
	"github.com/itm-platform/itm-access/internal/security"
	log "github.com/sirupsen/logrus"
)

// relayStateCookie pins the SAML relay state to the browser that started the login.
const relayStateCookie = "itm_relay_state"

// AssertionReader is the federation binding used by the login endpoints.
type AssertionReader interface {
	AuthURL(relayState string) (string, error)
	ReadAssertion(encodedResponse string) (identity.Assertion, error)
	Metadata() ([]byte, error)
}

// SessionResolver resolves principals into access decisions.
type SessionResolver interface {
	ResolveSession(ctx context.Context, p identity.Principal) access.Decision
}

// AuthHandler serves the federated login flow.
type AuthHandler struct {
	resolver    SessionResolver
	issuer      *security.Issuer
	sp          AssertionReader
	normalizer  *identity.Normalizer
	frontendURL string
}

// NewAuthHandler constructs an AuthHandler. sp may be nil when SAML is not configured.
func NewAuthHandler(resolver SessionResolver, issuer *security.Issuer, sp AssertionReader, normalizer *identity.Normalizer, frontendURL string) *AuthHandler {
	return &AuthHandler{resolver: resolver, issuer: issuer, sp: sp, normalizer: normalizer, frontendURL: frontendURL}
}

// Login redirects the browser to the identity provider.
func (h *AuthHandler) Login(c *gin.Context) {
	if h.sp == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sso not configured"})
		return
	}
	state, errState := security.GenerateRandomString(32)
	if errState != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "generate state failed"})
		return
	}
	authURL, errURL := h.sp.AuthURL(state)
	if errURL != nil {
		log.WithError(errURL).Error("build sso redirect failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "build sso redirect failed"})
		return
	}
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(relayStateCookie, state, 600, "/v0/auth", "", true, true)
	c.Redirect(http.StatusFound, authURL)
}

// Callback consumes the IdP response, resolves access and redirects to the front end.
func (h *AuthHandler) Callback(c *gin.Context) {
	if h.sp == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sso not configured"})
		return
	}
	if expected, errCookie := c.Cookie(relayStateCookie); errCookie == nil && expected != "" {
		if c.PostForm("RelayState") != expected {
			h.redirectError(c, "InvalidState", nil)
			return
		}
	}
	c.SetCookie(relayStateCookie, "", -1, "/v0/auth", "", true, true)

	assertion, errRead := h.sp.ReadAssertion(c.PostForm("SAMLResponse"))
	if errRead != nil {
		log.WithError(errRead).Warn("sso assertion rejected")
		h.redirectError(c, "AuthenticationFailed", nil)
		return
	}
	principal, errNormalize := h.normalizer.Normalize(assertion)
	if errNormalize != nil {
		log.WithError(errNormalize).Warn("sso assertion without subject")
		h.redirectError(c, "AuthenticationFailed", nil)
		return
	}

	decision := h.resolver.ResolveSession(c.Request.Context(), principal)
	if !decision.Allowed {
		h.redirectDenied(c, principal, decision)
		return
	}

	session := decision.Session
	token, errToken := h.issuer.IssueSession(security.SessionClaims{
		UserID:      session.UserID,
		Name:        session.Name,
		Email:       session.Email,
		Role:        session.Role,
		Groups:      session.Groups,
		Department:  session.Department,
		CompanyCode: session.CompanyCode,
		Site:        session.Site,
		Sdwt:        session.Sdwt,
	})
	if errToken != nil {
		log.WithError(errToken).Error("issue session token failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "issue token failed"})
		return
	}
	userJSON, errMarshal := json.Marshal(session)
	if errMarshal != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "encode session failed"})
		return
	}
	query := url.Values{}
	query.Set("token", token)
	query.Set("user", string(userJSON))
	c.Redirect(http.StatusFound, h.frontendRedirect(query))
}

// Metadata serves the SP metadata document.
func (h *AuthHandler) Metadata(c *gin.Context) {
	if h.sp == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sso not configured"})
		return
	}
	body, errMetadata := h.sp.Metadata()
	if errMetadata != nil {
		log.WithError(errMetadata).Error("generate sp metadata failed")
		c.String(http.StatusInternalServerError, "Failed to generate metadata")
		return
	}
	c.Data(http.StatusOK, "application/xml", body)
}

// redirectDenied sends the denial reason and, unless storage was unavailable, a ticket
// for filing a guest request.
func (h *AuthHandler) redirectDenied(c *gin.Context, principal identity.Principal, decision access.Decision) {
	extra := url.Values{}
	if decision.RequestID != 0 {
		extra.Set("reqId", strconv.FormatUint(decision.RequestID, 10))
	}
	if decision.Reason != access.ReasonUnavailable {
		ticket, errTicket := h.issuer.IssueTicket(security.TicketClaims{
			LoginID:        decision.LoginID,
			DepartmentCode: principal.DepartmentCode,
			DepartmentName: principal.DepartmentName,
		})
		if errTicket != nil {
			log.WithError(errTicket).Error("issue request ticket failed")
		} else {
			extra.Set("ticket", ticket)
		}
	}
	h.redirectError(c, decision.Reason, extra)
}

func (h *AuthHandler) redirectError(c *gin.Context, reason string, extra url.Values) {
	query := url.Values{}
	for k, v := range extra {
		query[k] = v
	}
	query.Set("error", reason)
	c.Redirect(http.StatusFound, h.frontendRedirect(query))
}

// frontendRedirect appends query to the configured front-end URL.
func (h *AuthHandler) frontendRedirect(query url.Values) string {
	base := strings.TrimSpace(h.frontendURL)
	if base == "" {
		base = "/"
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + query.Encode()
}
