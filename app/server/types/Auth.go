package types

type RegisterRequest struct {
	Username    string `json:"username" validate:"required,max=50"`
	Email       string `json:"email" validate:"required,email,max=100"`
	Password    string `json:"password" validate:"required,min=6,maxbytes=72"`
	DisplayName string `json:"displayName" validate:"max=100"`
}

// LoginRequest 中的 username 也可以填写邮箱
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token   string   `json:"token"`
	User    UserInfo `json:"user"`
	Message string   `json:"message"`
}

type TokenInfo struct {
	UserID        uint   `json:"userId"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	SecurityStamp string `json:"securityStamp"`
	IsAdmin       bool   `json:"isAdmin"`
	HasUserRole   bool   `json:"hasUserRole"`
	HasAdminRole  bool   `json:"hasAdminRole"`
}

type RevokeResponse struct {
	Message string `json:"message"`
	UserID  uint   `json:"userId"`
}
