package util

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost bcrypt cost
const PasswordCost = 10

// GeneratePasswordHash generates bcrypt hash of a password
// GeneratePasswordHash 生成密码的bcrypt哈希值
// password: original password string // 原始密码字符串
// return: hashed password string, and possible error info // 返回值: 哈希后的密码字符串，以及可能的错误信息
func GeneratePasswordHash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	return string(bytes), err
}

// CheckPasswordHash verifies whether password matches the hash
// CheckPasswordHash 验证密码与哈希值是否匹配
// hash: stored hash value // 存储的哈希值
// password: password to be verified // 待验证的密码
// return: true if password matches, false otherwise // 返回值: 如果密码匹配返回true，否则返回false
func CheckPasswordHash(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// CheckPasswordAgainstNothing spends the same bcrypt work as CheckPasswordHash and always returns false
// CheckPasswordAgainstNothing 执行与 CheckPasswordHash 相同代价的 bcrypt 比较，始终返回 false
// 用于目标不存在时保持响应耗时一致
func CheckPasswordAgainstNothing(password string) bool {
	dummyHashOnce.Do(func() {
		h, _ := bcrypt.GenerateFromPassword([]byte("ecrit-placeholder"), PasswordCost)
		dummyHash = string(h)
	})
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
	return false
}
