package tui

import (
	"strings"
	"unicode"
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindNumber
	kindChoice
	kindToggle
	kindButton
)

type formField struct {
	key     string
	label   string
	kind    fieldKind
	value   string
	choices []string
	checked bool
}

// form 纵向排列的一组输入项，按钮也是可聚焦项
type form struct {
	fields []formField
	focus  int
}

func (f *form) index(key string) int {
	for i := range f.fields {
		if f.fields[i].key == key {
			return i
		}
	}
	return -1
}

func (f *form) get(key string) *formField {
	if i := f.index(key); i >= 0 {
		return &f.fields[i]
	}
	return nil
}

func (f *form) value(key string) string {
	if fld := f.get(key); fld != nil {
		return fld.value
	}
	return ""
}

func (f *form) checked(key string) bool {
	if fld := f.get(key); fld != nil {
		return fld.checked
	}
	return false
}

func (f *form) focused() *formField {
	if f.focus < 0 || f.focus >= len(f.fields) {
		return nil
	}
	return &f.fields[f.focus]
}

func (f *form) move(delta int) {
	n := len(f.fields)
	if n == 0 {
		return
	}
	f.focus = ((f.focus+delta)%n + n) % n
}

// cycle 在 choice 字段的候选值里前后切换；toggle 字段取反
func (f *form) cycle(delta int) {
	fld := f.focused()
	if fld == nil {
		return
	}
	switch fld.kind {
	case kindToggle:
		fld.checked = !fld.checked
	case kindChoice:
		if len(fld.choices) == 0 {
			return
		}
		idx := 0
		for i, c := range fld.choices {
			if c == fld.value {
				idx = i
				break
			}
		}
		n := len(fld.choices)
		fld.value = fld.choices[((idx+delta)%n+n)%n]
	}
}

// input 文本字段追加字符；数字字段只接受数字、小数点和负号
// 没有候选值的 choice 字段退化为文本输入。
func (f *form) input(s string) bool {
	fld := f.focused()
	if fld == nil {
		return false
	}
	switch {
	case fld.kind == kindNumber:
		for _, r := range s {
			if !unicode.IsDigit(r) && r != '.' && r != '-' {
				return false
			}
		}
	case fld.kind == kindText, fld.kind == kindChoice && len(fld.choices) == 0:
		s = strings.ToUpper(s)
	default:
		return false
	}
	fld.value += s
	return true
}

func (f *form) backspace() {
	fld := f.focused()
	if fld == nil || fld.kind == kindButton || fld.kind == kindToggle {
		return
	}
	if fld.kind == kindChoice && len(fld.choices) > 0 {
		return
	}
	v := []rune(fld.value)
	if len(v) > 0 {
		fld.value = string(v[:len(v)-1])
	}
}
