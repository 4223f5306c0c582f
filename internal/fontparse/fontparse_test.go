// Package fontparse 的单元测试
// 测试样式名推断逻辑和容器解析的错误路径
package fontparse

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWeightFromStyle 测试样式名到数字字重的推断
func TestWeightFromStyle(t *testing.T) {
	tests := []struct {
		style    string
		expected int
	}{
		{"Regular", 400},
		{"Bold", 700},
		{"Bold Italic", 700},
		{"Light", 300},
		{"ExtraLight", 200},
		{"Ultra Light", 200},
		{"Extra-Bold", 800},
		{"SemiBold", 600},
		{"Demi Bold", 600},
		{"Medium", 500},
		{"Black", 900},
		{"Heavy", 900},
		{"Thin", 100},
		{"Italic", 400},
		{"", 400},
		{"Oblique", 400},
	}

	for _, tt := range tests {
		t.Run(tt.style, func(t *testing.T) {
			assert.Equal(t, tt.expected, WeightFromStyle(tt.style))
		})
	}
}

// TestWeightFromStyleLongTokenFirst 复合样式名不被子串误判
func TestWeightFromStyleLongTokenFirst(t *testing.T) {
	// "ExtraBold"包含"bold"子串，必须按长词匹配到800而不是700
	assert.Equal(t, 800, WeightFromStyle("ExtraBold"))
	// "UltraLight"包含"light"子串
	assert.Equal(t, 200, WeightFromStyle("UltraLight"))
	// "SemiBold"包含"bold"子串
	assert.Equal(t, 600, WeightFromStyle("SemiBold Italic"))
}

// TestStretchFromStyle 测试样式名到宽度类别的推断
func TestStretchFromStyle(t *testing.T) {
	tests := []struct {
		style    string
		expected string
	}{
		{"Condensed Bold", "condensed"},
		{"Semi Condensed", "semicondensed"},
		{"Ultra-Condensed", "ultracondensed"},
		{"Expanded", "expanded"},
		{"Extra Expanded", "extraexpanded"},
		{"Narrow", "narrow"},
		{"Regular", ""},
		{"Bold Italic", ""},
	}

	for _, tt := range tests {
		t.Run(tt.style, func(t *testing.T) {
			assert.Equal(t, tt.expected, StretchFromStyle(tt.style))
		})
	}
}

// TestStyleSuggestsItalic 测试样式名的斜体判断
func TestStyleSuggestsItalic(t *testing.T) {
	assert.True(t, styleSuggestsItalic("Italic"))
	assert.True(t, styleSuggestsItalic("Bold Italic"))
	assert.True(t, styleSuggestsItalic("Oblique"))
	assert.False(t, styleSuggestsItalic("Regular"))
	assert.False(t, styleSuggestsItalic("Bold"))
}

// TestParseErrors 测试解析错误路径
// 合法字体的解析覆盖依赖真实字体文件，错误路径可以用构造的字节验证
func TestParseErrors(t *testing.T) {
	t.Run("过短数据", func(t *testing.T) {
		_, err := Parse([]byte{0x00}, "/tmp/short.ttf")
		require.Error(t, err)

		var parseErr *ParseError
		require.True(t, errors.As(err, &parseErr))
		assert.Equal(t, "/tmp/short.ttf", parseErr.Path)
	})

	t.Run("woff2不支持", func(t *testing.T) {
		data := append([]byte("wOF2"), make([]byte, 64)...)
		_, err := Parse(data, "/tmp/font.woff2")
		require.Error(t, err)

		var parseErr *ParseError
		require.True(t, errors.As(err, &parseErr))
		assert.Contains(t, parseErr.Error(), "woff2")
	})

	t.Run("损坏的woff头", func(t *testing.T) {
		// 魔数正确但头部长度不足
		data := append([]byte("wOFF"), make([]byte, 8)...)
		_, err := Parse(data, "/tmp/broken.woff")
		require.Error(t, err)
	})

	t.Run("非字体数据", func(t *testing.T) {
		_, err := Parse([]byte("this is definitely not a font container"), "/tmp/junk.ttf")
		require.Error(t, err)
	})

	t.Run("文件不存在", func(t *testing.T) {
		_, err := ParseFile("/nonexistent/path/font.ttf")
		require.Error(t, err)

		var parseErr *ParseError
		require.True(t, errors.As(err, &parseErr))
	})
}

// TestParseErrorUnwrap 测试ParseError的错误链
func TestParseErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &ParseError{Path: "/a/b.ttf", Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "/a/b.ttf")
}
