package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Location        LocationRepository
	Company         CompanyRepository
	TranslationTask TranslationTaskRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Location:        NewLocationRepo(db),
		Company:         NewCompanyRepo(db),
		TranslationTask: NewTranslationTaskRepo(db),
	}
}
