package access_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/komplek-api/internal/application/access"
	"github.com/jhoicas/komplek-api/internal/domain"
	"github.com/jhoicas/komplek-api/internal/domain/entity"
	"github.com/jhoicas/komplek-api/internal/domain/permission"
	"github.com/jhoicas/komplek-api/internal/infrastructure/memory"
)

func newResolver() (*access.Resolver, *memory.Store) {
	st := memory.New()
	st.AddCluster(entity.Cluster{ID: "c1", Name: "Griya Asri"})
	st.AddCluster(entity.Cluster{ID: "c2", Name: "Taman Sari"})
	st.AddProfile(entity.Profile{ID: "admin-1", ClusterID: "c1", Name: "Pak RT"})
	st.AddProfile(entity.Profile{ID: "A", ClusterID: "c1", Name: "Warga A"})
	st.AddPermission(entity.UserPermission{ProfileID: "admin-1", ClusterID: "c1", Scope: entity.ScopeClusterAdmin})
	st.AddPermission(entity.UserPermission{ProfileID: "A", ClusterID: "c1", ResidentID: "A", Scope: entity.ScopeSelf})
	return access.NewResolver(st.Profiles(), st.Permissions()), st
}

func TestResolve(t *testing.T) {
	r, _ := newResolver()
	ctx := context.Background()

	actor, err := r.Resolve(ctx, "admin-1", "c1")
	require.NoError(t, err)
	assert.True(t, permission.IsClusterAdmin(actor, "c1"))

	actor, err = r.Resolve(ctx, "A", "c1")
	require.NoError(t, err)
	require.Len(t, actor.Permissions, 1)
	assert.Equal(t, entity.ScopeSelf, actor.Permissions[0].Scope)
	assert.False(t, permission.IsClusterAdmin(actor, "c1"))
	assert.True(t, permission.IsMember(actor, "c1"))
}

func TestResolve_Errores(t *testing.T) {
	r, st := newResolver()
	ctx := context.Background()

	_, err := r.Resolve(ctx, "nadie", "c1")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = r.Resolve(ctx, "A", "c2")
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	st.SetFaultHook(func(op string) error {
		if op == "permissions.list" {
			return domain.ErrTransientStore
		}
		return nil
	})
	_, err = r.Resolve(ctx, "A", "c1")
	assert.ErrorIs(t, err, domain.ErrTransientStore)
}
