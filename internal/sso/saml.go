// Package sso binds SAML 2.0 to raw identity assertions.
package sso

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"github.com/itm-platform/itm-access/internal/config"
	"github.com/itm-platform/itm-access/internal/identity"
	saml2 "github.com/russellhaering/gosaml2"
	dsig "github.com/russellhaering/goxmldsig"
)

// Routes served by the front-end auth group.
const (
	CallbackPath = "/v0/auth/callback"
	MetadataPath = "/v0/auth/metadata"
)

// ErrMissingResponse indicates a callback without a SAMLResponse form value.
var ErrMissingResponse = errors.New("missing SAMLResponse")

// ServiceProvider validates IdP responses and builds login redirects.
type ServiceProvider struct {
	sp *saml2.SAMLServiceProvider
}

// NewServiceProvider builds a service provider from configuration.
func NewServiceProvider(cfg config.SAMLConfig) (*ServiceProvider, error) {
	if strings.TrimSpace(cfg.SSOURL) == "" {
		return nil, fmt.Errorf("saml: sso-url is required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("saml: base-url is required")
	}
	idpCert, errCert := parseCertificate(cfg.IDPCertificate)
	if errCert != nil {
		return nil, fmt.Errorf("saml: idp certificate: %w", errCert)
	}

	var keyStore dsig.X509KeyStore
	if cfg.SPCertificate != "" || cfg.SPPrivateKey != "" {
		pair, errPair := tls.X509KeyPair([]byte(cfg.SPCertificate), []byte(cfg.SPPrivateKey))
		if errPair != nil {
			return nil, fmt.Errorf("saml: sp key pair: %w", errPair)
		}
		store := dsig.TLSCertKeyStore(pair)
		keyStore = &store
	} else if cfg.SignRequests {
		return nil, fmt.Errorf("saml: sign-requests needs sp-certificate and sp-private-key")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	entityID := strings.TrimSpace(cfg.EntityID)
	if entityID == "" {
		entityID = baseURL + MetadataPath
	}
	sp := &saml2.SAMLServiceProvider{
		IdentityProviderSSOURL:      cfg.SSOURL,
		ServiceProviderIssuer:       entityID,
		AssertionConsumerServiceURL: baseURL + CallbackPath,
		AudienceURI:                 entityID,
		SignAuthnRequests:           cfg.SignRequests,
		IDPCertificateStore:         &dsig.MemoryX509CertificateStore{Roots: []*x509.Certificate{idpCert}},
		SPKeyStore:                  keyStore,
	}
	if cfg.NameIDFormat != "" {
		sp.NameIdFormat = cfg.NameIDFormat
	}
	return &ServiceProvider{sp: sp}, nil
}

// AuthURL returns the IdP redirect carrying relayState.
func (p *ServiceProvider) AuthURL(relayState string) (string, error) {
	authURL, err := p.sp.BuildAuthURL(relayState)
	if err != nil {
		return "", fmt.Errorf("saml: build auth url: %w", err)
	}
	return authURL, nil
}

// ReadAssertion validates a base64 SAMLResponse and returns its raw assertion.
func (p *ServiceProvider) ReadAssertion(encodedResponse string) (identity.Assertion, error) {
	if strings.TrimSpace(encodedResponse) == "" {
		return identity.Assertion{}, ErrMissingResponse
	}
	info, err := p.sp.RetrieveAssertionInfo(encodedResponse)
	if err != nil {
		return identity.Assertion{}, fmt.Errorf("saml: validate response: %w", err)
	}
	if info.WarningInfo != nil {
		if info.WarningInfo.InvalidTime {
			return identity.Assertion{}, fmt.Errorf("saml: assertion has invalid time")
		}
		if info.WarningInfo.NotInAudience {
			return identity.Assertion{}, fmt.Errorf("saml: assertion not in expected audience")
		}
	}
	return assertionFromInfo(info), nil
}

// Metadata returns the SP metadata document.
func (p *ServiceProvider) Metadata() ([]byte, error) {
	descriptor, err := p.sp.Metadata()
	if err != nil {
		return nil, fmt.Errorf("saml: metadata: %w", err)
	}
	body, err := xml.MarshalIndent(descriptor, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("saml: marshal metadata: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

// assertionFromInfo copies attributes under both their Name and FriendlyName.
func assertionFromInfo(info *saml2.AssertionInfo) identity.Assertion {
	out := identity.Assertion{
		Subject:      strings.TrimSpace(info.NameID),
		SessionIndex: info.SessionIndex,
		Attributes:   make(map[string]any, len(info.Values)),
	}
	for _, attr := range info.Values {
		values := make([]string, 0, len(attr.Values))
		for _, v := range attr.Values {
			values = append(values, v.Value)
		}
		if attr.Name != "" {
			out.Attributes[attr.Name] = values
		}
		if attr.FriendlyName != "" {
			if _, taken := out.Attributes[attr.FriendlyName]; !taken {
				out.Attributes[attr.FriendlyName] = values
			}
		}
	}
	return out
}

func parseCertificate(pemText string) (*x509.Certificate, error) {
	block, _ := pem.Decode([]byte(pemText))
	if block == nil {
		return nil, fmt.Errorf("decode pem")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return cert, nil
}
