package repository

import (
	"testing"

	"github.com/dnzakizamani/simple-login/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Role{}, &model.Permission{}, &model.Menu{},
		&model.UserRole{}, &model.RolePermission{}, &model.MenuPermission{},
	))
	return db
}

func newUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		ID:       uuid.New().String(),
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
		Status:   "active",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newRole(t *testing.T, db *gorm.DB, name string) *model.Role {
	t.Helper()
	role := &model.Role{ID: uuid.New().String(), Name: name}
	require.NoError(t, db.Create(role).Error)
	return role
}

func newPermission(t *testing.T, db *gorm.DB, name string) *model.Permission {
	t.Helper()
	perm := &model.Permission{ID: uuid.New().String(), Name: name}
	require.NoError(t, db.Create(perm).Error)
	return perm
}

func TestUserRepository_FindByIdentifier(t *testing.T) {
	db := setupDB(t)
	repo := NewUserRepository(db)
	newUser(t, db, "alice")

	byName, err := repo.FindByIdentifier("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", byName.Username)

	byEmail, err := repo.FindByIdentifier("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, byName.ID, byEmail.ID)

	_, err = repo.FindByIdentifier("nobody")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_FindPaged(t *testing.T) {
	db := setupDB(t)
	repo := NewUserRepository(db)
	newUser(t, db, "alice")
	newUser(t, db, "alicia")
	newUser(t, db, "bob")

	users, total, err := repo.FindPaged(1, 10, "ali")
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, users, 2)

	users, total, err = repo.FindPaged(1, 2, "")
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, users, 2)

	users, _, err = repo.FindPaged(2, 2, "")
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserRepository_ReplaceRoles(t *testing.T) {
	db := setupDB(t)
	repo := NewUserRepository(db)
	user := newUser(t, db, "alice")
	r1 := newRole(t, db, "editor")
	r2 := newRole(t, db, "viewer")
	r3 := newRole(t, db, "auditor")

	require.NoError(t, repo.ReplaceRoles(user.ID, []string{r1.ID, r2.ID}))
	roles, err := repo.GetUserRoles(user.ID)
	require.NoError(t, err)
	assert.Len(t, roles, 2)

	// 替换语义：旧集合整体被新集合覆盖
	require.NoError(t, repo.ReplaceRoles(user.ID, []string{r3.ID}))
	roles, err = repo.GetUserRoles(user.ID)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, "auditor", roles[0].Name)

	// 空集合表示清空
	require.NoError(t, repo.ReplaceRoles(user.ID, nil))
	roles, err = repo.GetUserRoles(user.ID)
	require.NoError(t, err)
	assert.Empty(t, roles)
}

func TestUserRepository_DeleteCleansJoins(t *testing.T) {
	db := setupDB(t)
	repo := NewUserRepository(db)
	user := newUser(t, db, "alice")
	role := newRole(t, db, "editor")
	require.NoError(t, repo.ReplaceRoles(user.ID, []string{role.ID}))

	require.NoError(t, repo.Delete(user.ID))

	var count int64
	require.NoError(t, db.Model(&model.UserRole{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRoleRepository_GetPermissionsForRoles_Distinct(t *testing.T) {
	db := setupDB(t)
	repo := NewRoleRepository(db)
	r1 := newRole(t, db, "editor")
	r2 := newRole(t, db, "viewer")
	shared := newPermission(t, db, "post:read")
	only1 := newPermission(t, db, "post:write")

	require.NoError(t, repo.ReplacePermissions(r1.ID, []string{shared.ID, only1.ID}))
	require.NoError(t, repo.ReplacePermissions(r2.ID, []string{shared.ID}))

	perms, err := repo.GetPermissionsForRoles([]string{r1.ID, r2.ID})
	require.NoError(t, err)
	assert.Len(t, perms, 2, "共享权限只返回一次")

	perms, err = repo.GetPermissionsForRoles(nil)
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestRoleRepository_GetPermissionsByRole_GroupsByRole(t *testing.T) {
	db := setupDB(t)
	repo := NewRoleRepository(db)
	r1 := newRole(t, db, "editor")
	r2 := newRole(t, db, "viewer")
	r3 := newRole(t, db, "empty")
	shared := newPermission(t, db, "post:read")
	only1 := newPermission(t, db, "post:write")

	require.NoError(t, repo.ReplacePermissions(r1.ID, []string{shared.ID, only1.ID}))
	require.NoError(t, repo.ReplacePermissions(r2.ID, []string{shared.ID}))

	// 一次查询取回全部角色的权限，按角色分组
	byRole, err := repo.GetPermissionsByRole([]string{r1.ID, r2.ID, r3.ID})
	require.NoError(t, err)
	assert.Len(t, byRole[r1.ID], 2)
	require.Len(t, byRole[r2.ID], 1)
	assert.Equal(t, "post:read", byRole[r2.ID][0].Name)
	assert.Empty(t, byRole[r3.ID])

	byRole, err = repo.GetPermissionsByRole(nil)
	require.NoError(t, err)
	assert.Empty(t, byRole)
}

func TestRoleRepository_CountMembers(t *testing.T) {
	db := setupDB(t)
	roleRepo := NewRoleRepository(db)
	userRepo := NewUserRepository(db)
	role := newRole(t, db, "editor")
	u1 := newUser(t, db, "alice")
	u2 := newUser(t, db, "bob")

	require.NoError(t, userRepo.ReplaceRoles(u1.ID, []string{role.ID}))
	require.NoError(t, userRepo.ReplaceRoles(u2.ID, []string{role.ID}))

	count, err := roleRepo.CountMembers(role.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestPermissionRepository_CountRoleRefs(t *testing.T) {
	db := setupDB(t)
	permRepo := NewPermissionRepository(db)
	roleRepo := NewRoleRepository(db)
	perm := newPermission(t, db, "post:read")
	role := newRole(t, db, "editor")

	count, err := permRepo.CountRoleRefs(perm.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, roleRepo.ReplacePermissions(role.ID, []string{perm.ID}))
	count, err = permRepo.CountRoleRefs(perm.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestPermissionRepository_DeleteCleansMenuJoins(t *testing.T) {
	db := setupDB(t)
	permRepo := NewPermissionRepository(db)
	menuRepo := NewMenuRepository(db)
	perm := newPermission(t, db, "menu:read")
	menu := &model.Menu{ID: uuid.New().String(), Name: "系统管理"}
	require.NoError(t, db.Create(menu).Error)
	require.NoError(t, menuRepo.ReplacePermissions(menu.ID, []string{perm.ID}))

	require.NoError(t, permRepo.Delete(perm.ID))

	var count int64
	require.NoError(t, db.Model(&model.MenuPermission{}).Where("permission_id = ?", perm.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestMenuRepository_CountChildren(t *testing.T) {
	db := setupDB(t)
	repo := NewMenuRepository(db)
	parent := &model.Menu{ID: uuid.New().String(), Name: "系统管理"}
	require.NoError(t, db.Create(parent).Error)
	child := &model.Menu{ID: uuid.New().String(), Name: "用户管理", ParentID: parent.ID}
	require.NoError(t, db.Create(child).Error)

	count, err := repo.CountChildren(parent.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	count, err = repo.CountChildren(child.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMenuRepository_GetPermissionNamesByMenu(t *testing.T) {
	db := setupDB(t)
	repo := NewMenuRepository(db)
	perm := newPermission(t, db, "user:read")
	menu := &model.Menu{ID: uuid.New().String(), Name: "用户管理"}
	require.NoError(t, db.Create(menu).Error)
	public := &model.Menu{ID: uuid.New().String(), Name: "仪表盘"}
	require.NoError(t, db.Create(public).Error)
	require.NoError(t, repo.ReplacePermissions(menu.ID, []string{perm.ID}))

	names, err := repo.GetPermissionNamesByMenu()
	require.NoError(t, err)
	assert.Equal(t, []string{"user:read"}, names[menu.ID])
	_, ok := names[public.ID]
	assert.False(t, ok, "公开菜单没有权限映射")
}
