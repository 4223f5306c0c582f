// Package fontparse 提供字体容器文件的解析能力
// 打开一个字体容器文件并返回其中的逻辑字型描述符：
// - 单字型容器（ttf/otf）返回一个描述符
// - 集合容器（ttc）按字型数量返回多个描述符
// - woff容器先解包为sfnt再解析
// 解析失败返回ParseError，调用方将文件视为不可索引并跳过
package fontparse

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/image/font/sfnt"
)

// FaceInfo 单个逻辑字型的描述符
// 固定形状结构，调度层可在编译期校验字段完整性
type FaceInfo struct {
	Family         string // 字族名
	Subfamily      string // 子族/样式名
	PostscriptName string // PostScript名称，可为空
	Weight         int    // 数字字重 (100-900)
	Italic         bool   // 是否斜体
	Stretch        string // 宽度类别，可为空
	Version        string // 版本字符串，可为空
	FullName       string // 完整名称，可为空
}

// ParseError 字体解析错误
// 表示单个文件无法作为受支持的字体容器解码，属于可恢复的逐文件错误
type ParseError struct {
	Path string // 出错文件路径
	Err  error  // 底层错误
}

// Error 实现error接口
func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse font container %s: %v", e.Path, e.Err)
}

// Unwrap 返回底层错误
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parser 字体容器解析器接口
// 扫描器以能力形式消费该接口，测试中可注入替身实现
type Parser interface {
	// Parse 解析内存中的字体容器字节
	// 参数:
	//   data - 容器完整字节内容
	//   path - 文件路径，仅用于错误信息
	// 返回:
	//   []FaceInfo - 容器内的全部字型描述符
	//   error - 内容无法解码时返回*ParseError
	Parse(data []byte, path string) ([]FaceInfo, error)
}

// sfntParser 基于golang.org/x/image/font/sfnt的解析器实现
type sfntParser struct{}

// NewParser 创建字体容器解析器实例
func NewParser() Parser {
	return &sfntParser{}
}

// Parse 解析内存中的字体容器字节
func (p *sfntParser) Parse(data []byte, path string) ([]FaceInfo, error) {
	return Parse(data, path)
}

// ParseFile 解析指定路径的字体容器文件
func ParseFile(path string) ([]FaceInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return Parse(data, path)
}

// Parse 解析内存中的字体容器字节
// woff容器先解包；woff2需要brotli解压与表重建，目前不支持，按解析失败处理
func Parse(data []byte, path string) ([]FaceInfo, error) {
	if len(data) < 4 {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("file too short (%d bytes)", len(data))}
	}

	switch string(data[:4]) {
	case "wOF2":
		return nil, &ParseError{Path: path, Err: fmt.Errorf("woff2 containers are not supported")}
	case "wOFF":
		sfntData, err := unpackWOFF(data)
		if err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}
		data = sfntData
	}

	// ParseCollection同时接受单字型容器和ttc集合容器
	col, err := sfnt.ParseCollection(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	faces := make([]FaceInfo, 0, col.NumFonts())
	for i := 0; i < col.NumFonts(); i++ {
		f, err := col.Font(i)
		if err != nil {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("font %d of %d: %w", i, col.NumFonts(), err)}
		}
		faces = append(faces, describeFace(f))
	}

	return faces, nil
}

// describeFace 从已解析的字体中提取字型描述符
func describeFace(f *sfnt.Font) FaceInfo {
	var buf sfnt.Buffer

	// name表中的条目可能缺失或使用不支持的编码，缺失时回退为空串
	name := func(id sfnt.NameID) string {
		s, err := f.Name(&buf, id)
		if err != nil {
			return ""
		}
		return s
	}

	family := name(sfnt.NameIDFamily)
	if family == "" {
		family = "Unknown"
	}
	subfamily := name(sfnt.NameIDSubfamily)
	if subfamily == "" {
		subfamily = "Regular"
	}

	// sfnt包不暴露OS/2表，斜体取post表角度，样式名作为兜底
	italic := styleSuggestsItalic(subfamily)
	if post := f.PostTable(); post != nil && post.ItalicAngle != 0 {
		italic = true
	}

	return FaceInfo{
		Family:         family,
		Subfamily:      subfamily,
		PostscriptName: name(sfnt.NameIDPostScript),
		Weight:         WeightFromStyle(subfamily),
		Italic:         italic,
		Stretch:        StretchFromStyle(subfamily),
		Version:        name(sfnt.NameIDVersion),
		FullName:       name(sfnt.NameIDFull),
	}
}

// weightNames 样式名到数字字重的映射，长词在前避免子串误匹配
var weightNames = []struct {
	token  string
	weight int
}{
	{"extralight", 200},
	{"ultralight", 200},
	{"extrabold", 800},
	{"ultrabold", 800},
	{"semibold", 600},
	{"demibold", 600},
	{"medium", 500},
	{"black", 900},
	{"heavy", 900},
	{"light", 300},
	{"thin", 100},
	{"demi", 600},
	{"bold", 700},
}

// WeightFromStyle 根据子族样式名推断数字字重
// 无法识别时返回常规字重400
func WeightFromStyle(style string) int {
	s := normalizeStyle(style)
	for _, w := range weightNames {
		if strings.Contains(s, w.token) {
			return w.weight
		}
	}
	return 400
}

// stretchNames 样式名到宽度类别的映射，长词在前避免子串误匹配
var stretchNames = []string{
	"ultracondensed",
	"extracondensed",
	"semicondensed",
	"ultraexpanded",
	"extraexpanded",
	"semiexpanded",
	"condensed",
	"expanded",
	"narrow",
}

// StretchFromStyle 根据子族样式名推断宽度类别
// 无法识别时返回空串（常规宽度）
func StretchFromStyle(style string) string {
	s := normalizeStyle(style)
	for _, name := range stretchNames {
		if strings.Contains(s, name) {
			return name
		}
	}
	return ""
}

// styleSuggestsItalic 样式名是否表明斜体
func styleSuggestsItalic(style string) bool {
	s := normalizeStyle(style)
	return strings.Contains(s, "italic") || strings.Contains(s, "oblique")
}

// normalizeStyle 样式名归一化：小写并去除空格和连字符
func normalizeStyle(style string) string {
	s := strings.ToLower(style)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	return s
}
