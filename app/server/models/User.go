package models

import (
	"github.com/google/uuid"
	"time"
)

type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`

	// 基础信息
	Username    string `gorm:"column:username;size:50;not null;uniqueIndex"` // 用户名，全局唯一
	Email       string `gorm:"column:email;size:100;not null;uniqueIndex"`   // 邮箱，全局唯一
	DisplayName string `gorm:"column:display_name;size:100;not null"`        // 显示名称
	Role        Role   `gorm:"column:role;size:16;not null;default:User"`    // 角色，以数据库为准，令牌中的角色只作参考

	// 登录与授权认证相关
	PasswordHash  string `gorm:"column:password_hash;size:255;not null"`  // 密码，使用 bcrypt 储存
	SecurityStamp string `gorm:"column:security_stamp;size:36;not null"` // 安全戳，变化后旧令牌全部失效
}

// RefreshSecurityStamp 重新生成安全戳，使之前签发的所有令牌失效
func (u *User) RefreshSecurityStamp() {
	u.SecurityStamp = uuid.NewString()
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
