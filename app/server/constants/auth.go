package constants

const (
	DefaultBcryptCost         = 12 // bcrypt 计算成本
	DefaultTokenExpiryMinutes = 60 // 令牌有效期（分钟）
)

// 分页
const (
	DefaultPageLimit = 100
)
