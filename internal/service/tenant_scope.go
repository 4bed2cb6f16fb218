package service

import (
	"errors"

	"signage/backend/internal/model"
	"signage/backend/internal/repository"
)

// ── 租户范围 ──

// ErrCompanyNotPermitted 非管理方尝试代其他公司操作
var ErrCompanyNotPermitted = errors.New("无权为该公司操作地点")

// Caller 当前调用方身份，每个请求重新解析后显式传入 Service
type Caller struct {
	UserID      string
	CompanyID   int64
	CompanyType string
	Locale      string
}

// IsElevated 平台管理方不受租户过滤
func (c Caller) IsElevated() bool {
	return c.CompanyType == model.CompanyTypeAdmin
}

// TenantFilter 构造地点可见性过滤条件
func (c Caller) TenantFilter() repository.TenantFilter {
	return repository.TenantFilter{
		Unrestricted: c.IsElevated(),
		CompanyID:    c.CompanyID,
	}
}

// SourceLocale 本次写入的源语言
func (c Caller) SourceLocale() string {
	if model.IsSupportedLocale(c.Locale) {
		return c.Locale
	}
	return model.DefaultLocale
}

// ResolveCompany 确定新建地点归属的公司
//   - 管理方：可指定任意公司，未指定时归属自身公司
//   - 其他：只能归属自身公司，指定其他公司返回 ErrCompanyNotPermitted
func (c Caller) ResolveCompany(requested *int64) (int64, error) {
	if requested == nil || *requested == 0 || *requested == c.CompanyID {
		return c.CompanyID, nil
	}
	if c.IsElevated() {
		return *requested, nil
	}
	return 0, ErrCompanyNotPermitted
}
