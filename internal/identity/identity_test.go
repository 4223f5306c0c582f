// Package identity 的单元测试
// 测试内容哈希、URLKey派生和文件名清洗的确定性行为
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestHash 测试内容哈希计算
func TestHash(t *testing.T) {
	t.Run("哈希值与标准库一致", func(t *testing.T) {
		data := []byte("hello fontbase")
		sum := sha256.Sum256(data)

		hash, size := Hash(data)
		assert.Equal(t, hex.EncodeToString(sum[:]), hash)
		assert.Equal(t, int64(len(data)), size)
	})

	t.Run("相同内容哈希相同", func(t *testing.T) {
		h1, _ := Hash([]byte("abc"))
		h2, _ := Hash([]byte("abc"))
		assert.Equal(t, h1, h2)
	})

	t.Run("不同内容哈希不同", func(t *testing.T) {
		h1, _ := Hash([]byte("abc"))
		h2, _ := Hash([]byte("abd"))
		assert.NotEqual(t, h1, h2)
	})

	t.Run("空内容", func(t *testing.T) {
		hash, size := Hash(nil)
		assert.Len(t, hash, 64)
		assert.Equal(t, int64(0), size)
	})
}

// TestURLKey 测试公开访问键派生
func TestURLKey(t *testing.T) {
	t.Run("哈希前缀加清洗后文件名", func(t *testing.T) {
		hash, _ := Hash([]byte("font bytes"))
		key := URLKey(hash, "Inter-Regular.ttf")

		assert.True(t, strings.HasPrefix(key, hash[:12]+"-"))
		assert.Equal(t, hash[:12]+"-Inter-Regular.ttf", key)
	})

	t.Run("相同输入结果确定", func(t *testing.T) {
		hash, _ := Hash([]byte("font bytes"))
		assert.Equal(t, URLKey(hash, "a.ttf"), URLKey(hash, "a.ttf"))
	})

	t.Run("内容不同键不同", func(t *testing.T) {
		h1, _ := Hash([]byte("font one"))
		h2, _ := Hash([]byte("font two"))
		assert.NotEqual(t, URLKey(h1, "same.ttf"), URLKey(h2, "same.ttf"))
	})

	t.Run("短哈希不截断", func(t *testing.T) {
		assert.Equal(t, "abc-f.ttf", URLKey("abc", "f.ttf"))
	})
}

// TestSanitizeFilename 测试文件名清洗
func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"安全字符保留", "Inter-Regular.ttf", "Inter-Regular.ttf"},
		{"空格替换为下划线", "Source Sans Pro.otf", "Source_Sans_Pro.otf"},
		{"中文替换为下划线", "思源黑体.ttf", "____.ttf"},
		{"特殊字符替换", "a/b\\c:d.woff", "a_b_c_d.woff"},
		{"空文件名", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}
