package model

import "encoding/json"

// ServiceSubject identifies the process itself when it acts without a caller.
const ServiceSubject = "service"

// Claims is the verified identity of the caller. It is bound to every database
// transaction so row-level security policies can evaluate it.
type Claims struct {
	Subject string `json:"sub"`
	Email   string `json:"email,omitempty"`
	Role    Role   `json:"app_role,omitempty"`
	Service bool   `json:"-"`
}

// ServiceClaims returns the claims used by webhooks and other trusted server-side flows.
func ServiceClaims() Claims {
	return Claims{Subject: ServiceSubject, Role: RoleAdmin, Service: true}
}

// Authenticated reports whether the claims carry a subject.
func (c Claims) Authenticated() bool {
	return c.Subject != ""
}

// JSON renders the claims in the shape read by current_setting('request.jwt.claims').
func (c Claims) JSON() (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
