package service

import (
	"crypto/rand"
	"math/big"
)

const (
	base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	defaultSlugLength  = 6
	defaultSlugRetries = 10
)

// GenerateShortCode 生成指定长度的随机 base62 短码
func GenerateShortCode(length int) (string, error) {
	if length <= 0 {
		length = defaultSlugLength
	}

	result := make([]byte, length)
	max := big.NewInt(int64(len(base62Chars)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		result[i] = base62Chars[n.Int64()]
	}
	return string(result), nil
}
