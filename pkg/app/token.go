package app

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// 默认 Token 签发者
const DefaultTokenIssuer = "ecrit-note-service"

// ContextUserKey gin.Context 中保存用户信息的键
const ContextUserKey = "user_token"

// TokenConfig 定义 Token 管理器的配置
type TokenConfig struct {
	SecretKey string        `yaml:"secret-key"` // JWT 签名密钥
	Expiry    time.Duration `yaml:"expiry"`     // Token 过期时间，默认 7 天
	Issuer    string        `yaml:"issuer"`     // Token 签发者
}

// TokenManager 定义 Token 管理接口
type TokenManager interface {
	Generate(uid string, nickname, ip string) (string, error)
	Parse(token string) (*UserEntity, error)
	Validate(token string) error
}

// tokenManager 实现 TokenManager 接口
type tokenManager struct {
	config TokenConfig
}

// NewTokenManager 创建一个新的 TokenManager 实例
func NewTokenManager(cfg TokenConfig) TokenManager {
	// 设置默认值
	if cfg.Expiry == 0 {
		cfg.Expiry = 7 * 24 * time.Hour // 默认 7 天
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultTokenIssuer
	}
	return &tokenManager{config: cfg}
}

// UserEntity represents the user data stored in the JWT.
// UID comes from the identity provider and is trusted as-is.
type UserEntity struct {
	UID      string `json:"uid"`
	Nickname string `json:"nickname"`
	IP       string `json:"ip"`
	jwt.RegisteredClaims
}

// Generate 生成一个新的 JWT Token
func (t *tokenManager) Generate(uid string, nickname, ip string) (string, error) {
	if uid == "" {
		return "", fmt.Errorf("empty uid")
	}
	now := time.Now()
	claims := &UserEntity{
		UID:      uid,
		Nickname: nickname,
		IP:       ip,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.config.Expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    t.config.Issuer,
			Subject:   "user-token",
			ID:        uid,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(t.config.SecretKey))
}

// Parse 解析 JWT Token 并返回用户信息
func (t *tokenManager) Parse(token string) (*UserEntity, error) {
	return ParseTokenWithKey(token, t.config.SecretKey)
}

// Validate 验证 Token 是否有效
func (t *tokenManager) Validate(token string) error {
	_, err := t.Parse(token)
	return err
}

// ParseTokenWithKey 使用指定密钥解析 Token
func ParseTokenWithKey(tokenString string, secretKey string) (*UserEntity, error) {
	claims := &UserEntity{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid || claims.UID == "" {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// GetUID extracts the user ID from the request context.
func GetUID(ctx *gin.Context) (out string) {
	user, exist := ctx.Get(ContextUserKey)
	if exist {
		if userEntity, ok := user.(*UserEntity); ok {
			out = userEntity.UID
		}
	}
	return
}

// GetIP extracts the user IP from the request context.
func GetIP(ctx *gin.Context) (out string) {
	user, exist := ctx.Get(ContextUserKey)
	if exist {
		if userEntity, ok := user.(*UserEntity); ok {
			out = userEntity.IP
		}
	}
	return
}

// SetTokenToContext 解析 Token 并写入 Context
func SetTokenToContext(ctx *gin.Context, tm TokenManager, tokenString string) error {
	user, err := tm.Parse(tokenString)
	if err != nil {
		return err
	}
	ctx.Set(ContextUserKey, user)
	return nil
}
