package jwt

import (
	"core-api-base/app/server/models"
	"errors"
	"fmt"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"strconv"
	"time"
)

const MinKeyLength = 32

// 令牌中的自定义声明名称
const (
	ClaimName          = "name"
	ClaimEmail         = "email"
	ClaimSecurityStamp = "security_stamp"
)

var ErrInvalidToken = errors.New("invalid token")

type JWT struct {
	key      []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// Claims 签发时写入的声明。角色不写入令牌，每次请求从数据库重新读取
type Claims struct {
	jwt.RegisteredClaims
	Name          string `json:"name"`
	Email         string `json:"email"`
	SecurityStamp string `json:"security_stamp"`
}

func New(key string, issuer string, audience string, ttl time.Duration) (*JWT, error) {
	if len(key) < MinKeyLength {
		return nil, fmt.Errorf("key must be at least %d characters", MinKeyLength)
	}
	if issuer == "" || audience == "" {
		return nil, errors.New("issuer and audience are required")
	}
	if ttl <= 0 {
		return nil, errors.New("ttl must be positive")
	}

	return &JWT{
		key:      []byte(key),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

func (j *JWT) TTL() time.Duration {
	return j.ttl
}

func (j *JWT) SignToken(user *models.User) (string, error) {
	now := j.now()

	// 创建声明
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(), // 同一秒内签发的令牌也互不相同
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    j.issuer,
			Audience:  jwt.ClaimStrings{j.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
		Name:          user.Username,
		Email:         user.Email,
		SecurityStamp: user.SecurityStamp,
	}

	// 创建令牌
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	// 签名并返回
	return token.SignedString(j.key)
}

// ParseToken 校验签名、签发者、受众和有效期，返回完整的声明集合
func (j *JWT) ParseToken(tokenString string) (jwt.MapClaims, error) {
	// 检查是否有效
	if len(tokenString) == 0 {
		return nil, errors.New("token string is empty")
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return j.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithAudience(j.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parse jwt failed: %w", err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
