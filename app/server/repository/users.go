package repository

import (
	"context"
	"core-api-base/app/server/constants"
	"core-api-base/app/server/models"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"time"
)

// Users 用户仓库。配置了 Redis 时按 id 读取会经过缓存，写操作会清理缓存
type Users struct {
	*Repository[models.User]
	rdb *redis.Client // 可为 nil
	l   *zap.Logger
}

func NewUsers(db *gorm.DB, rdb *redis.Client, l *zap.Logger, timeout time.Duration) *Users {
	return &Users{
		Repository: New[models.User](db, timeout),
		rdb:        rdb,
		l:          l,
	}
}

func cacheKey(id uint) string {
	return fmt.Sprintf(constants.CacheKeyUserInfo, id)
}

// GetByID 先查缓存，未命中再查数据库并回填。
// 缓存可能落后于数据库，只用于展示，鉴权和写回前的读取用 Get
func (u *Users) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if u.rdb != nil {
		if cacheBytes, err := u.rdb.Get(ctx, cacheKey(id)).Bytes(); err != nil {
			if !errors.Is(err, redis.Nil) {
				u.l.Error("failed to query cache for user info", zap.Uint("id", id), zap.Error(err))
			}
		} else {
			var user models.User
			if err = json.Unmarshal(cacheBytes, &user); err != nil {
				u.l.Error("failed to unmarshal user info", zap.Uint("id", id), zap.ByteString("cacheBytes", cacheBytes), zap.Error(err))
				// 可能是无效的缓存，清理掉
				u.rdb.Del(ctx, cacheKey(id))
			} else {
				return &user, nil
			}
		}
	}

	user, err := u.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// 格式化并加入缓存，方便下一次查询
	if u.rdb != nil {
		if cacheBytes, err := json.Marshal(user); err != nil {
			u.l.Error("failed to marshal user info", zap.Uint("id", id), zap.Error(err))
		} else if err = u.rdb.Set(ctx, cacheKey(id), cacheBytes, constants.CacheExpireUserInfo).Err(); err != nil {
			u.l.Error("failed to cache user info", zap.Uint("id", id), zap.Error(err))
		}
	}

	return user, nil
}

// FindByLogin 按用户名或邮箱查找
func (u *Users) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	ctx, cancel := u.withTimeout(ctx)
	defer cancel()

	var user models.User
	if err := u.db.WithContext(ctx).First(&user, "username = ? OR email = ?", login, login).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// Taken 检查用户名或邮箱是否已被 exceptID 以外的用户占用。
// 登录时两者可以互换，所以用户名和邮箱要交叉比较
func (u *Users) Taken(ctx context.Context, username string, email string, exceptID uint) (bool, error) {
	ctx, cancel := u.withTimeout(ctx)
	defer cancel()

	logins := []string{username, email}

	var count int64
	if err := u.db.WithContext(ctx).Model(&models.User{}).
		Where("(username IN ? OR email IN ?) AND id <> ?", logins, logins, exceptID).
		Count(&count).Error; err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (u *Users) Count(ctx context.Context) (int64, error) {
	ctx, cancel := u.withTimeout(ctx)
	defer cancel()

	var count int64
	if err := u.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, translate(err)
	}
	return count, nil
}

func (u *Users) Update(ctx context.Context, user *models.User) error {
	if err := u.Repository.Update(ctx, user); err != nil {
		return err
	}
	u.invalidate(ctx, user.ID)
	return nil
}

func (u *Users) Delete(ctx context.Context, id uint) error {
	if err := u.Repository.Delete(ctx, id); err != nil {
		return err
	}
	u.invalidate(ctx, id)
	return nil
}

func (u *Users) invalidate(ctx context.Context, id uint) {
	if u.rdb == nil {
		return
	}
	if err := u.rdb.Del(ctx, cacheKey(id)).Err(); err != nil {
		u.l.Error("failed to invalidate user cache", zap.Uint("id", id), zap.Error(err))
	}
}
