package repository

import (
	"context"

	"gorm.io/gorm"

	"signage/backend/internal/model"
)

// CompanyRepository 公司（租户）数据访问接口
type CompanyRepository interface {
	// GetPrimaryByUser 返回用户所属的首个公司（按公司 ID 升序）
	GetPrimaryByUser(ctx context.Context, userID string) (*model.Company, error)
}

type companyRepo struct {
	db *gorm.DB
}

// NewCompanyRepo 创建 CompanyRepository 实例
func NewCompanyRepo(db *gorm.DB) CompanyRepository {
	return &companyRepo{db: db}
}

func (r *companyRepo) GetPrimaryByUser(ctx context.Context, userID string) (*model.Company, error) {
	var company model.Company
	err := r.db.WithContext(ctx).
		Joins("JOIN company_members ON company_members.company_id = companies.company_id").
		Where("company_members.user_id = ?", userID).
		Order("companies.company_id ASC").
		First(&company).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}
