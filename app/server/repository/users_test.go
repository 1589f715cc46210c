package repository

import (
	"context"
	"core-api-base/app/server/models"
	"encoding/json"
	"fmt"
	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库每个连接相互独立
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func newTestUser(name string) *models.User {
	u := &models.User{
		Username:     name,
		Email:        name + "@x.com",
		DisplayName:  name,
		Role:         models.RoleUser,
		PasswordHash: "hash",
	}
	u.RefreshSecurityStamp()
	return u
}

func TestRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := New[models.User](newTestDB(t), time.Second)

	alice := newTestUser("alice")
	require.NoError(t, repo.Create(ctx, alice))
	assert.NotZero(t, alice.ID)

	got, err := repo.Get(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, alice.SecurityStamp, got.SecurityStamp)

	got.DisplayName = "Alice"
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.Get(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.DisplayName)

	exists, err := repo.Exists(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.Delete(ctx, alice.ID))
	_, err = repo.Get(ctx, alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, alice.ID), ErrNotFound)

	exists, err = repo.Exists(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepository_UpdateMissing(t *testing.T) {
	repo := New[models.User](newTestDB(t), 0)
	ghost := newTestUser("ghost")
	ghost.ID = 99
	assert.ErrorIs(t, repo.Update(context.Background(), ghost), ErrNotFound)
}

func TestRepository_Conflict(t *testing.T) {
	ctx := context.Background()
	repo := New[models.User](newTestDB(t), 0)

	require.NoError(t, repo.Create(ctx, newTestUser("alice")))

	dup := newTestUser("bob")
	dup.Username = "alice"
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrConflict)
}

func TestRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := New[models.User](newTestDB(t), 0)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, newTestUser(fmt.Sprintf("user%d", i))))
	}

	list, count, err := repo.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
	require.Len(t, list, 2)
	assert.Equal(t, "user2", list[0].Username)
	assert.Equal(t, "user3", list[1].Username)

	list, count, err = repo.List(ctx, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
	assert.Len(t, list, 5)
}

func TestUsers_FindByLoginAndTaken(t *testing.T) {
	ctx := context.Background()
	users := NewUsers(newTestDB(t), nil, zap.NewNop(), 0)

	alice := newTestUser("alice")
	require.NoError(t, users.Create(ctx, alice))

	byName, err := users.FindByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byName.ID)

	byEmail, err := users.FindByLogin(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byEmail.ID)

	_, err = users.FindByLogin(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	taken, err := users.Taken(ctx, "alice", "other@x.com", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = users.Taken(ctx, "other", "alice@x.com", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	// 用户名与他人的邮箱相同也算占用，反之亦然
	taken, err = users.Taken(ctx, "alice@x.com", "mallory@x.com", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = users.Taken(ctx, "mallory", "alice", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	// 用户自身不算占用
	taken, err = users.Taken(ctx, "alice", "alice@x.com", alice.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	count, err := users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestUsers_Cache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	users := NewUsers(newTestDB(t), rdb, zap.NewNop(), 0)

	alice := newTestUser("alice")
	require.NoError(t, users.Create(ctx, alice))

	// 首次读取回填缓存
	got, err := users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.True(t, mr.Exists(cacheKey(alice.ID)))
	assert.Equal(t, 10*time.Minute, mr.TTL(cacheKey(alice.ID)))

	// 命中缓存时不访问数据库
	cached := *got
	cached.DisplayName = "from cache"
	raw, err := json.Marshal(&cached)
	require.NoError(t, err)
	require.NoError(t, mr.Set(cacheKey(alice.ID), string(raw)))

	got, err = users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "from cache", got.DisplayName)
	assert.Equal(t, alice.SecurityStamp, got.SecurityStamp)

	// Get 始终读数据库
	direct, err := users.Get(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", direct.DisplayName)

	// 写操作清理缓存
	got.DisplayName = "Alice"
	got.RefreshSecurityStamp()
	require.NoError(t, users.Update(ctx, got))
	assert.False(t, mr.Exists(cacheKey(alice.ID)))

	fresh, err := users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, got.SecurityStamp, fresh.SecurityStamp)

	require.NoError(t, users.Delete(ctx, alice.ID))
	assert.False(t, mr.Exists(cacheKey(alice.ID)))
	_, err = users.GetByID(ctx, alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUsers_BrokenCacheEntry(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	users := NewUsers(newTestDB(t), rdb, zap.NewNop(), 0)

	alice := newTestUser("alice")
	require.NoError(t, users.Create(ctx, alice))
	require.NoError(t, mr.Set(cacheKey(alice.ID), "{not json"))

	got, err := users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
}
