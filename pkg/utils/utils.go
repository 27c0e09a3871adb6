// Package utils 提供指针与字符串辅助函数
package utils

// StringPtr 返回字符串指针
func StringPtr(s string) *string {
	return &s
}

// BoolPtr 返回布尔指针
func BoolPtr(b bool) *bool {
	return &b
}

// DerefString 解引用字符串指针，nil 返回空串
func DerefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// DerefBool 解引用布尔指针，nil 返回 false
func DerefBool(b *bool) bool {
	if b == nil {
		return false
	}
	return *b
}

// IsEmpty 判断字符串是否为空
func IsEmpty(s string) bool {
	return len(s) == 0
}
