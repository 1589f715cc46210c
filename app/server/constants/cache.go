package constants

import "time"

const (
	CacheKeyUserInfo = "core:user:info:%d" // %d -> user id
)

const (
	CacheExpireUserInfo = 10 * time.Minute
)
