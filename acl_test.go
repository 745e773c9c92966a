package txui

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestACL_FirstMatchWins(t *testing.T) {
	acl := &ACL{Rules: []ACLRule{
		Deny("role:guest", "edit"),
		Allow(Everyone, AnyCapability),
	}}

	guest := WithPrincipals(context.Background(), "role:guest")
	anon := context.Background()

	assert.False(t, acl.HasPermission(guest, "edit", nil))
	assert.True(t, acl.HasPermission(guest, "view", nil))
	assert.True(t, acl.HasPermission(anon, "edit", nil))
}

func TestACL_Default(t *testing.T) {
	acl := &ACL{Rules: []ACLRule{Allow("role:admin", "edit")}}
	ctx := context.Background()

	assert.False(t, acl.HasPermission(ctx, "edit", nil))
	acl.Default = true
	assert.True(t, acl.HasPermission(ctx, "edit", nil))
}

func TestPrincipals(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, []string{Everyone}, Principals(ctx))

	ctx = WithPrincipals(ctx, "user:1", "role:admin")
	ctx = WithPrincipals(ctx, "role:admin", "team:x")
	assert.Equal(t, []string{Everyone, "user:1", "role:admin", "team:x"}, Principals(ctx))
}

func TestRequirePermission(t *testing.T) {
	acl := &ACL{Rules: []ACLRule{
		Allow("role:editor", "edit"),
	}}
	app := NewApp(WithAuthorizer(acl))
	p := &Page{app: app}
	b := &Base{cid: "a", page: p}

	called := false
	h := b.RequirePermission("edit", func(ctx context.Context, params Params) error {
		called = true
		return nil
	}, nil)

	err := h(context.Background(), nil)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.False(t, called)

	require.NoError(t, h(WithPrincipals(context.Background(), "role:editor"), nil))
	assert.True(t, called)

	failed := false
	guarded := b.RequirePermission("edit", h, func(ctx context.Context, params Params) error {
		failed = true
		return nil
	})
	require.NoError(t, guarded(context.Background(), nil))
	assert.True(t, failed)
}

func TestPageAccess_PrincipalsFromRequest(t *testing.T) {
	acl := &ACL{Rules: []ACLRule{
		Allow("role:member", PermissionAccess),
	}}
	app, home := newTestApp(t,
		WithAuthorizer(acl),
		WithPrincipalsFunc(func(r *http.Request) []string {
			if r.Header.Get("X-Role") == "member" {
				return []string{"role:member"}
			}
			return nil
		}),
	)

	res, _ := TestFullPage(app, home, "")
	assert.True(t, res.HasStatus(http.StatusForbidden))

	req, err := http.NewRequest(http.MethodGet, home.Path(), nil)
	require.NoError(t, err)
	req.Header.Set("X-Role", "member")
	res = serveTest(app, home, req)
	assert.True(t, res.IsOK(), res.Body)
}
