// Package identity 提供文件内容指纹与公开访问键的纯函数计算
// 内容哈希用于变更检测和跨文件去重，URLKey用于对外静态服务时隐藏真实路径
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
)

// urlKeyHashLen URLKey中使用的哈希前缀长度（十六进制字符数）
const urlKeyHashLen = 12

// unsafeChars 文件名中需要替换的非URL安全字符
var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// Hash 计算文件内容的SHA256哈希
// 参数:
//   data - 文件完整字节内容
// 返回:
//   string - 十六进制小写哈希字符串
//   int64 - 内容字节数
func Hash(data []byte) (string, int64) {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), int64(len(data))
}

// URLKey 根据内容哈希和文件名派生公开访问键
// 对同一(哈希, 文件名)组合结果确定且唯一，可安全用于URL和文件系统
// 参数:
//   contentHash - 十六进制内容哈希
//   filename - 原始文件名
// 返回:
//   string - 形如 "a1b2c3d4e5f6-Inter-Regular.ttf" 的访问键
func URLKey(contentHash, filename string) string {
	prefix := contentHash
	if len(prefix) > urlKeyHashLen {
		prefix = prefix[:urlKeyHashLen]
	}
	return prefix + "-" + SanitizeFilename(filename)
}

// SanitizeFilename 清洗文件名中的非URL安全字符
// 字母、数字、点和连字符保留，其余字符替换为下划线
func SanitizeFilename(filename string) string {
	return unsafeChars.ReplaceAllString(filename, "_")
}
