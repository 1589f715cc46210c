package password

import (
	"core-api-base/app/server/constants"
	"errors"
	"fmt"
	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
	"strings"
)

// ErrMalformedHash 存储的 hash 无法解析，通常意味着数据损坏
var ErrMalformedHash = errors.New("malformed password hash")

const argon2idPrefix = "$argon2id$"

type Hasher struct {
	cost int
}

// New 创建 bcrypt 哈希器， cost 不在有效范围内时使用默认值 12
func New(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = constants.DefaultBcryptCost
	}
	return &Hasher{cost: cost}
}

// Hash 生成自描述的加盐 hash （算法、成本、盐和摘要编码在一起）
func (h *Hasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("generate bcrypt hash: %w", err)
	}
	return string(hash), nil
}

// Verify 密码不一致时返回 false ，只有 hash 本身无效时才返回错误
func (h *Hasher) Verify(password string, hash string) (bool, error) {
	// 早期部署使用 argon2id 储存的密码仍然可以登录
	if strings.HasPrefix(hash, argon2idPrefix) {
		match, _, err := argon2id.CheckHash(password, hash)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
		}
		return match, nil
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
}

// NeedsRehash 是否应该在下次成功登录后用当前算法和成本重新计算
func (h *Hasher) NeedsRehash(hash string) bool {
	if strings.HasPrefix(hash, argon2idPrefix) {
		return true
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return false
	}
	return cost != h.cost
}
