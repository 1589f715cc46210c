package types

import (
	"core-api-base/app/server/models"
	"time"
)

// UserInfo 对外返回的用户信息，不包含密码和安全戳
type UserInfo struct {
	ID          uint        `json:"id"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	DisplayName string      `json:"displayName"`
	Role        models.Role `json:"role"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

func UserInfoFromModel(user *models.User) UserInfo {
	return UserInfo{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

type UserListResponse struct {
	Limit   int        `json:"limit"`
	PageMax int64      `json:"pageMax"`
	List    []UserInfo `json:"list"`
}

type UserCreateRequest struct {
	Username    string      `json:"username" validate:"required,max=50"`
	Email       string      `json:"email" validate:"required,email,max=100"`
	Password    string      `json:"password" validate:"required,min=6,maxbytes=72"`
	DisplayName string      `json:"displayName" validate:"max=100"`
	Role        models.Role `json:"role" validate:"omitempty,oneof=User Admin"`
}

type UserUpdateRequest struct {
	Username    *string `json:"username" validate:"omitempty,max=50"`
	Email       *string `json:"email" validate:"omitempty,email,max=100"`
	DisplayName *string `json:"displayName" validate:"omitempty,max=100"`
}

type UserPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
}

type UserRoleRequest struct {
	Role models.Role `json:"role" validate:"required,oneof=User Admin"`
}
