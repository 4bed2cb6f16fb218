package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ── 多语言字段 ──

// 支持的语言代码
const (
	LocaleEN = "en"
	LocaleZH = "zh"
)

// DefaultLocale 默认源语言
const DefaultLocale = LocaleEN

// SupportedLocales 系统支持的全部语言，编译期固定
var SupportedLocales = []string{LocaleEN, LocaleZH}

// IsSupportedLocale 判断语言代码是否受支持
func IsSupportedLocale(locale string) bool {
	for _, l := range SupportedLocales {
		if l == locale {
			return true
		}
	}
	return false
}

// LocalizedText 多语言文本，对应 PostgreSQL JSONB，如 {"en": "123 Main St", "zh": null}。
// 读写时统一规整：每种支持的语言都有键，nil 表示尚未翻译；不支持的语言键被丢弃。
type LocalizedText map[string]*string

// NewLocalizedText 创建所有语言均未翻译的多语言文本
func NewLocalizedText() LocalizedText {
	t := make(LocalizedText, len(SupportedLocales))
	for _, l := range SupportedLocales {
		t[l] = nil
	}
	return t
}

// NewUntranslated 以 locale 为源语言写入 text，其余语言置空等待翻译
func NewUntranslated(locale, text string) LocalizedText {
	t := NewLocalizedText()
	v := text
	t[locale] = &v
	return t
}

// Text 返回指定语言的文本，未翻译时返回空串
func (t LocalizedText) Text(locale string) string {
	if v := t[locale]; v != nil {
		return *v
	}
	return ""
}

// IsTranslated 指定语言是否已有值
func (t LocalizedText) IsTranslated(locale string) bool {
	return t[locale] != nil
}

func (t LocalizedText) normalize() map[string]*string {
	out := make(map[string]*string, len(SupportedLocales))
	for _, l := range SupportedLocales {
		out[l] = t[l]
	}
	return out
}

// Scan 解析 JSONB 并补齐缺失的语言键
func (t *LocalizedText) Scan(src interface{}) error {
	if src == nil {
		*t = NewLocalizedText()
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("LocalizedText.Scan: unsupported type %T", src)
	}
	raw := make(map[string]*string)
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("LocalizedText.Scan: %w", err)
	}
	*t = LocalizedText(LocalizedText(raw).normalize())
	return nil
}

// Value 序列化为 JSONB
func (t LocalizedText) Value() (driver.Value, error) {
	b, err := json.Marshal(t.normalize())
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// MarshalJSON 输出时同样保证所有语言键齐全
func (t LocalizedText) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.normalize())
}

// ── 合同期 ──

// ContractPeriod 合同起止日期（YYYY-MM-DD），对应 JSONB；起止必须同时存在
type ContractPeriod struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Scan 解析 JSONB
func (p *ContractPeriod) Scan(src interface{}) error {
	if src == nil {
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("ContractPeriod.Scan: unsupported type %T", src)
	}
	return json.Unmarshal(b, p)
}

// Value 序列化为 JSONB
func (p ContractPeriod) Value() (driver.Value, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
