package authz

import (
	"core-api-base/app/server/claims"
	"core-api-base/app/server/models"
)

// Policy 命名的角色集合，持有其中任意一个角色即可通过
type Policy struct {
	Name  string
	Roles []models.Role
}

var (
	AdminOnly   = Policy{Name: "AdminOnly", Roles: []models.Role{models.RoleAdmin}}
	UserOrAdmin = Policy{Name: "UserOrAdmin", Roles: []models.Role{models.RoleUser, models.RoleAdmin}}
)

// Allows 在角色重新校验之后执行，读取到的角色即数据库中的当前角色
func (p Policy) Allows(principal *claims.Principal) bool {
	if principal == nil {
		return false
	}
	for _, r := range p.Roles {
		if principal.HasRole(string(r)) {
			return true
		}
	}
	return false
}
