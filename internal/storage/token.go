package storage

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"path/filepath"
	"strings"
)

const (
	FolderImages = "images"
	FolderIcons  = "icons"

	TokenLength = 16

	tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// RandomToken returns n characters drawn uniformly from [a-zA-Z0-9].
func RandomToken(n int) (string, error) {
	max := big.NewInt(int64(len(tokenAlphabet)))

	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("ошибка генерации случайного токена: %w", err)
		}
		b.WriteByte(tokenAlphabet[idx.Int64()])
	}

	return b.String(), nil
}

// ObjectKey namespaces an uploaded file so equal file names never collide.
// The basename is reduced to [A-Za-z0-9._-] so the key is also a valid URL
// path segment.
func ObjectKey(folder, token, fileName string) string {
	base := cleanBaseName(filepath.Base(strings.ReplaceAll(fileName, "\\", "/")))
	return fmt.Sprintf("%s/%s_%s", folder, token, base)
}

func cleanBaseName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '_', r == '-':
			return r
		}
		return '_'
	}, name)

	if strings.Trim(cleaned, "._") == "" {
		return "file"
	}
	return cleaned
}
