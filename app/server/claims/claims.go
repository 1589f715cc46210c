// Package claims 提供对已认证请求声明集合的只读访问。
// 声明缺失时返回零值（id=0、空字符串、false），调用方应把 id=0 视为未认证并拒绝。
package claims

import (
	"core-api-base/app/server/models"
	"fmt"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"sort"
	"strconv"
)

// 声明类型
const (
	TypeUserID        = "sub"
	TypeNameID        = "nameid" // 旧版令牌的用户 ID
	TypeUsername      = "name"
	TypeEmail         = "email"
	TypeSecurityStamp = "security_stamp"
	TypeRole          = "role"
)

// ContextKey echo 上下文中保存 Principal 的键
const ContextKey = "principal"

type Claim struct {
	Type  string
	Value string
}

type Principal struct {
	claims []Claim
}

func New(claims ...Claim) *Principal {
	return &Principal{claims: append([]Claim(nil), claims...)}
}

// FromMapClaims 把令牌声明展开为声明列表，数组值展开为多条同类型声明
func FromMapClaims(m jwt.MapClaims) *Principal {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	p := &Principal{}
	for _, k := range keys {
		switch v := m[k].(type) {
		case []interface{}:
			for _, item := range v {
				p.claims = append(p.claims, Claim{Type: k, Value: stringify(item)})
			}
		case []string:
			for _, item := range v {
				p.claims = append(p.claims, Claim{Type: k, Value: item})
			}
		case nil:
		default:
			p.claims = append(p.claims, Claim{Type: k, Value: stringify(v)})
		}
	}
	return p
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func (p *Principal) Claims() []Claim {
	if p == nil {
		return nil
	}
	return append([]Claim(nil), p.claims...)
}

// Find 返回第一个匹配类型的声明值
func (p *Principal) Find(claimType string) (string, bool) {
	if p == nil {
		return "", false
	}
	for _, c := range p.claims {
		if c.Type == claimType {
			return c.Value, true
		}
	}
	return "", false
}

func (p *Principal) value(claimType string) string {
	v, _ := p.Find(claimType)
	return v
}

// UserID 优先读取 sub ，其次 nameid ，无法解析时为 0
func (p *Principal) UserID() uint {
	raw, ok := p.Find(TypeUserID)
	if !ok {
		raw, ok = p.Find(TypeNameID)
	}
	if !ok {
		return 0
	}
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil {
		return 0
	}
	return uint(id)
}

func (p *Principal) Username() string {
	return p.value(TypeUsername)
}

func (p *Principal) Email() string {
	return p.value(TypeEmail)
}

func (p *Principal) SecurityStamp() string {
	return p.value(TypeSecurityStamp)
}

func (p *Principal) HasRole(role string) bool {
	if p == nil {
		return false
	}
	for _, c := range p.claims {
		if c.Type == TypeRole && c.Value == role {
			return true
		}
	}
	return false
}

func (p *Principal) IsAdmin() bool {
	return p.HasRole(string(models.RoleAdmin))
}

// WithRole 复制除角色以外的所有声明，再加入唯一的角色声明
func (p *Principal) WithRole(role models.Role) *Principal {
	next := &Principal{}
	if p != nil {
		for _, c := range p.claims {
			if c.Type != TypeRole {
				next.claims = append(next.claims, c)
			}
		}
	}
	next.claims = append(next.claims, Claim{Type: TypeRole, Value: string(role)})
	return next
}

// Get 读取请求中的 Principal ，未认证时为 nil
func Get(c echo.Context) *Principal {
	p, _ := c.Get(ContextKey).(*Principal)
	return p
}

func Set(c echo.Context, p *Principal) {
	c.Set(ContextKey, p)
}
