package access

import (
	"sort"

	"github.com/dnzakizamani/simple-login/internal/apperr"
	"github.com/dnzakizamani/simple-login/internal/model"
	"github.com/dnzakizamani/simple-login/internal/repository"
)

// AccessService 授权解析核心：角色解析、权限聚合、菜单过滤
// 全部基于数据库实时数据，角色或权限变更对下一个请求立即生效
type AccessService struct {
	userRepo *repository.UserRepository
	roleRepo *repository.RoleRepository
	menuRepo *repository.MenuRepository
}

func NewAccessService(
	userRepo *repository.UserRepository,
	roleRepo *repository.RoleRepository,
	menuRepo *repository.MenuRepository,
) *AccessService {
	return &AccessService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		menuRepo: menuRepo,
	}
}

// GetUserRoles 查找用户的角色列表，无角色时返回空切片
func (s *AccessService) GetUserRoles(userID string) ([]model.Role, error) {
	roles, err := s.userRepo.GetUserRoles(userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "查询用户角色失败", err)
	}
	if roles == nil {
		roles = []model.Role{}
	}
	return roles, nil
}

// HasRole 判断用户是否持有指定名称的角色（精确匹配）
func (s *AccessService) HasRole(userID, roleName string) (bool, error) {
	roles, err := s.GetUserRoles(userID)
	if err != nil {
		return false, err
	}
	for _, role := range roles {
		if role.Name == roleName {
			return true, nil
		}
	}
	return false, nil
}

// PermissionSetForUser 聚合用户全部角色的权限并集
// 返回权限名集合，同一权限来自多个角色时只计一次
func (s *AccessService) PermissionSetForUser(userID string) (map[string]struct{}, error) {
	roles, err := s.GetUserRoles(userID)
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{})
	if len(roles) == 0 {
		return set, nil
	}

	roleIDs := make([]string, 0, len(roles))
	for _, role := range roles {
		roleIDs = append(roleIDs, role.ID)
	}

	perms, err := s.roleRepo.GetPermissionsForRoles(roleIDs)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "查询角色权限失败", err)
	}
	for _, p := range perms {
		set[p.Name] = struct{}{}
	}
	return set, nil
}

// PermissionsForUser 聚合用户的权限名并集，按名称排序后返回
func (s *AccessService) PermissionsForUser(userID string) ([]string, error) {
	set, err := s.PermissionSetForUser(userID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// VisibleMenus 计算用户可见的菜单树
// 可见性规则：菜单未绑定任何权限则对所有登录用户可见；
// 否则用户持有绑定权限中的任意一个即可见（逻辑或）。
// 父菜单不可见时整棵子树都不出现在结果中。
func (s *AccessService) VisibleMenus(userID string) ([]model.Menu, error) {
	permSet, err := s.PermissionSetForUser(userID)
	if err != nil {
		return nil, err
	}

	menus, err := s.menuRepo.FindAll()
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "查询菜单失败", err)
	}

	menuPerms, err := s.menuRepo.GetPermissionNamesByMenu()
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "查询菜单权限失败", err)
	}

	visible := make([]model.Menu, 0, len(menus))
	for _, menu := range menus {
		if menuVisible(menuPerms[menu.ID], permSet) {
			menu.Icon = model.ResolveIcon(menu.Icon)
			visible = append(visible, menu)
		}
	}

	return BuildTree(visible), nil
}

// menuVisible 单个菜单的可见性判定
func menuVisible(required []string, permSet map[string]struct{}) bool {
	if len(required) == 0 {
		return true
	}
	for _, name := range required {
		if _, ok := permSet[name]; ok {
			return true
		}
	}
	return false
}

// BuildTree 按 ParentID 把扁平菜单列表组装成树
// 输入需已按 sort, created_at 升序排列，组装过程保持顺序。
// 父节点不在输入中的菜单不会出现在树里（父不可见则子整体隐藏）。
func BuildTree(menus []model.Menu) []model.Menu {
	nodes := make(map[string]*model.Menu, len(menus))
	for i := range menus {
		m := menus[i]
		m.Children = nil
		nodes[m.ID] = &m
	}

	childIDs := make(map[string][]string, len(menus))
	for _, m := range menus {
		if m.ParentID == "" {
			continue
		}
		if _, ok := nodes[m.ParentID]; ok {
			childIDs[m.ParentID] = append(childIDs[m.ParentID], m.ID)
		}
	}

	// 自底向上物化子树，保证深层子节点先于父节点完成组装
	var materialize func(id string) model.Menu
	materialize = func(id string) model.Menu {
		node := *nodes[id]
		for _, cid := range childIDs[id] {
			node.Children = append(node.Children, materialize(cid))
		}
		return node
	}

	roots := make([]model.Menu, 0)
	for _, m := range menus {
		if m.ParentID == "" {
			roots = append(roots, materialize(m.ID))
		}
	}
	return roots
}
