package config

const (
	maskConfigured = "***CONFIGURED***"
	maskNotSet     = "***NOT SET***"
)

func mask(v string) string {
	if v == "" {
		return maskNotSet
	}
	return maskConfigured
}

// 以下 Summary 用于健康检查输出，敏感字段全部掩码

func (j JWT) Summary() map[string]any {
	return map[string]any{
		"SecretKey":       mask(j.SecretKey),
		"SecretKeyLength": len(j.SecretKey),
		"Issuer":          j.Issuer,
		"Audience":        j.Audience,
		"ExpiryMinutes":   j.ExpiryMinutes,
	}
}

func (d Database) Summary() map[string]any {
	return map[string]any{
		"Driver":                d.Driver,
		"ConnectionString":      mask(d.ConnectionString),
		"CommandTimeoutSeconds": d.CommandTimeoutSeconds,
		"AutoMigrate":           d.AutoMigrate,
		"LogLevel":              d.LogLevel,
	}
}

func (r Redis) Summary() map[string]any {
	return map[string]any{
		"ConnectionString": mask(r.ConnectionString),
		"Enabled":          r.ConnectionString != "",
	}
}

func (c Cors) Summary() map[string]any {
	return map[string]any{
		"AllowedOrigins":   c.AllowedOrigins,
		"AllowedMethods":   c.AllowedMethods,
		"AllowedHeaders":   c.AllowedHeaders,
		"AllowCredentials": c.AllowCredentials,
		"MaxAge":           c.MaxAge,
	}
}
