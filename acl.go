package txui

import (
	"context"
	"slices"
)

// PermissionAccess is the capability checked before a page is served.
const PermissionAccess = "access"

// Everyone is the principal every request carries.
const Everyone = "system.Everyone"

// AnyCapability matches every capability in an ACL rule.
const AnyCapability = "*"

// Authorizer answers yes/no capability checks. How permissions are computed
// is up to the implementation; subject is the page type for page access and
// the component for guarded handlers.
type Authorizer interface {
	HasPermission(ctx context.Context, capability string, subject any) bool
}

// AuthorizerFunc adapts a function to Authorizer.
type AuthorizerFunc func(ctx context.Context, capability string, subject any) bool

func (f AuthorizerFunc) HasPermission(ctx context.Context, capability string, subject any) bool {
	return f(ctx, capability, subject)
}

// AllowAll grants every capability.
func AllowAll() Authorizer {
	return AuthorizerFunc(func(context.Context, string, any) bool { return true })
}

// ACLRule grants or denies capabilities to one principal.
type ACLRule struct {
	Allow        bool
	Principal    string
	Capabilities []string
}

// Allow builds a granting rule.
func Allow(principal string, capabilities ...string) ACLRule {
	return ACLRule{Allow: true, Principal: principal, Capabilities: capabilities}
}

// Deny builds a denying rule.
func Deny(principal string, capabilities ...string) ACLRule {
	return ACLRule{Principal: principal, Capabilities: capabilities}
}

func (r ACLRule) matches(capability string, principals []string) bool {
	if !slices.Contains(principals, r.Principal) {
		return false
	}
	return slices.Contains(r.Capabilities, capability) || slices.Contains(r.Capabilities, AnyCapability)
}

// ACL is an ordered rule list. The first rule matching one of the request's
// principals and the capability decides; without a match Default applies.
//
//	acl := &txui.ACL{Rules: []txui.ACLRule{
//	    txui.Deny("role:guest", "edit"),
//	    txui.Allow(txui.Everyone, txui.AnyCapability),
//	}}
type ACL struct {
	Rules   []ACLRule
	Default bool
}

// HasPermission implements Authorizer.
func (a *ACL) HasPermission(ctx context.Context, capability string, subject any) bool {
	principals := Principals(ctx)
	for _, rule := range a.Rules {
		if rule.matches(capability, principals) {
			return rule.Allow
		}
	}
	return a.Default
}

type principalsKey struct{}

// WithPrincipals attaches principals to ctx.
func WithPrincipals(ctx context.Context, principals ...string) context.Context {
	prev := Principals(ctx)
	out := make([]string, 0, len(prev)+len(principals))
	out = append(out, prev...)
	for _, p := range principals {
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return context.WithValue(ctx, principalsKey{}, out)
}

// Principals returns the principals of ctx. Everyone is always included.
func Principals(ctx context.Context) []string {
	if ps, ok := ctx.Value(principalsKey{}).([]string); ok {
		return ps
	}
	return []string{Everyone}
}

// HasPermission consults the app's Authorizer.
func (p *Page) HasPermission(ctx context.Context, capability string, subject any) bool {
	return p.app.authorizer.HasPermission(ctx, capability, subject)
}

// RequirePermission guards h with capability. When the check fails, fail
// runs instead, or ErrForbidden is returned when fail is nil.
//
//	c.On("delete", c.RequirePermission("edit", c.handleDelete, nil))
func (b *Base) RequirePermission(capability string, h Handler, fail Handler) Handler {
	return func(ctx context.Context, params Params) error {
		if b.page != nil && b.page.HasPermission(ctx, capability, b) {
			return h(ctx, params)
		}
		if fail != nil {
			return fail(ctx, params)
		}
		return ErrForbidden
	}
}
