package service

import (
	"go.uber.org/zap"

	"signage/backend/config"
	"signage/backend/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Location    LocationService
	Export      ExportService
	Translation *TranslationDispatcher
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	publisher TranslationPublisher,
	logger *zap.Logger,
) *Service {
	translation := NewTranslationDispatcher(cfg.Translation, repo.TranslationTask, publisher, logger)
	return &Service{
		Location:    NewLocationService(repo, translation, logger),
		Export:      NewExportService(repo, logger),
		Translation: translation,
	}
}
