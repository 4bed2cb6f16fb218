package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"signage/backend/internal/dto"
	"signage/backend/internal/model"
	"signage/backend/internal/repository"
	pkgerrors "signage/backend/pkg/errors"
	"signage/backend/pkg/metrics"
)

// ── 地点模块业务错误 ──

var (
	ErrLocationNotFound      = errors.New("地点不存在")
	ErrContractPeriodInvalid = errors.New("合同开始日期不能晚于结束日期")
	ErrLocationSaveFailed    = errors.New("保存地点失败")
	ErrLocationUpdateFailed  = errors.New("更新地点失败")
)

const dateLayout = "2006-01-02"

// LocationService 地点业务接口
type LocationService interface {
	List(ctx context.Context, caller Caller) ([]dto.LocationResponse, error)
	Get(ctx context.Context, caller Caller, id int64, withContacts bool) (*dto.LocationResponse, error)
	Create(ctx context.Context, caller Caller, req *dto.CreateLocationRequest) (*dto.LocationResponse, error)
	Update(ctx context.Context, caller Caller, id int64, req *dto.UpdateLocationRequest) (*dto.LocationResponse, error)
	UpdateTags(ctx context.Context, caller Caller, id int64, texts []string) error
	ListScreens(ctx context.Context, caller Caller, id int64) ([]dto.ScreenResponse, error)
}

type locationService struct {
	repo        *repository.Repository
	translation *TranslationDispatcher
	logger      *zap.Logger
}

// NewLocationService 创建 LocationService 实例
func NewLocationService(repo *repository.Repository, translation *TranslationDispatcher, logger *zap.Logger) LocationService {
	return &locationService{repo: repo, translation: translation, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *locationService) List(ctx context.Context, caller Caller) ([]dto.LocationResponse, error) {
	locations, err := s.repo.Location.List(ctx, caller.TenantFilter())
	if err != nil {
		s.logger.Error("列出地点失败", zap.Int64("company_id", caller.CompanyID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.LocationResponse, 0, len(locations))
	for i := range locations {
		result = append(result, *toLocationResponse(&locations[i]))
	}
	return result, nil
}

// ────────────────────── Get ──────────────────────

func (s *locationService) Get(ctx context.Context, caller Caller, id int64, withContacts bool) (*dto.LocationResponse, error) {
	loc, err := s.load(ctx, caller, id, withContacts)
	if err != nil {
		return nil, err
	}
	return toLocationResponse(loc), nil
}

// ────────────────────── Create ──────────────────────

func (s *locationService) Create(ctx context.Context, caller Caller, req *dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	companyID, err := caller.ResolveCompany(req.CompanyID)
	if err != nil {
		s.logger.Warn("越权创建地点",
			zap.String("user_id", caller.UserID),
			zap.Int64("company_id", caller.CompanyID),
			zap.Int64p("requested_company_id", req.CompanyID),
		)
		return nil, err
	}

	period, err := contractPeriod(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	locale := caller.SourceLocale()
	loc := &model.ScreenLocation{
		OwnerUserID:   caller.UserID,
		CompanyID:     companyID,
		Address1:      model.NewUntranslated(locale, req.Address1),
		Address2:      model.NewUntranslated(locale, req.Address2),
		BuildingName:  model.NewUntranslated(locale, req.BuildingName),
		Tags:          model.NewLocalizedText(),
		SubCategoryID: req.SubCategoryID,
		DistrictID:    req.DistrictID,
		GPSLocation:   req.GPSLocation,
		ContractDates: period,
	}
	loc.CreatedBy = &caller.UserID
	loc.UpdatedBy = &caller.UserID
	for _, c := range req.Contacts {
		contact := model.LocationContact{
			Name:     c.Name,
			Position: c.Position,
			Phone:    c.Phone,
			Email:    c.Email,
		}
		contact.CreatedBy = &caller.UserID
		loc.Contacts = append(loc.Contacts, contact)
	}

	// 新建地点三个地址字段均需翻译
	task := s.translation.NewTask([]string{model.FieldAddress1, model.FieldAddress2, model.FieldBuildingName}, locale)

	if err := s.repo.Location.Create(ctx, loc, task); err != nil {
		metrics.LocationMutationsTotal.WithLabelValues("create", "error").Inc()
		s.logger.Error("创建地点失败", zap.Int64("company_id", companyID), zap.Error(err))
		return nil, ErrLocationSaveFailed
	}
	metrics.LocationMutationsTotal.WithLabelValues("create", "success").Inc()

	s.translation.Dispatch(ctx, task)

	// 重新加载分类与行政区划；新建地点不可能已挂载屏幕
	full, err := s.repo.Location.GetByID(ctx, repository.TenantFilter{Unrestricted: true}, loc.LocationID, true)
	if err != nil {
		s.logger.Warn("重新加载地点失败", zap.Int64("id", loc.LocationID), zap.Error(err))
		full = loc
	}
	full.ScreensCount = 0
	return toLocationResponse(full), nil
}

// ────────────────────── Update ──────────────────────

func (s *locationService) Update(ctx context.Context, caller Caller, id int64, req *dto.UpdateLocationRequest) (*dto.LocationResponse, error) {
	loc, err := s.load(ctx, caller, id, false)
	if err != nil {
		return nil, err
	}

	if err := CheckMutable(loc.ScreensCount); err != nil {
		metrics.LocationMutationsTotal.WithLabelValues("update", "rejected").Inc()
		return nil, err
	}

	period, err := contractPeriod(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	loc.SubCategoryID = req.SubCategoryID
	loc.DistrictID = req.DistrictID
	loc.GPSLocation = req.GPSLocation

	// loc 即写入前快照，Diff 逐字段比较并重置变化字段的译文
	locale := caller.SourceLocale()
	pending := s.translation.Diff(loc, LocalizedInput{
		Address1:     req.Address1,
		Address2:     req.Address2,
		BuildingName: req.BuildingName,
	}, locale)

	if period != nil {
		loc.ContractDates = period
	}
	loc.UpdatedBy = &caller.UserID

	task := s.translation.NewTask(pending, locale)
	if err := s.repo.Location.Update(ctx, loc, CheckMutable, task); err != nil {
		return nil, s.updateError("update", id, err)
	}
	metrics.LocationMutationsTotal.WithLabelValues("update", "success").Inc()

	s.translation.Dispatch(ctx, task)

	full, err := s.repo.Location.GetByID(ctx, caller.TenantFilter(), id, false)
	if err != nil {
		s.logger.Warn("重新加载地点失败", zap.Int64("id", id), zap.Error(err))
		return toLocationResponse(loc), nil
	}
	return toLocationResponse(full), nil
}

// ────────────────────── UpdateTags ──────────────────────

func (s *locationService) UpdateTags(ctx context.Context, caller Caller, id int64, texts []string) error {
	loc, err := s.load(ctx, caller, id, false)
	if err != nil {
		return err
	}

	locale := caller.SourceLocale()
	s.translation.ResetTags(loc, texts, locale)
	loc.UpdatedBy = &caller.UserID

	// 标签不受屏幕挂载限制，且总是重新翻译
	task := s.translation.NewTask([]string{model.FieldTags}, locale)
	if err := s.repo.Location.Update(ctx, loc, nil, task); err != nil {
		return s.updateError("update_tags", id, err)
	}
	metrics.LocationMutationsTotal.WithLabelValues("update_tags", "success").Inc()

	s.translation.Dispatch(ctx, task)
	return nil
}

// ────────────────────── ListScreens ──────────────────────

func (s *locationService) ListScreens(ctx context.Context, caller Caller, id int64) ([]dto.ScreenResponse, error) {
	if _, err := s.load(ctx, caller, id, false); err != nil {
		return nil, err
	}

	screens, err := s.repo.Location.ListScreens(ctx, id)
	if err != nil {
		s.logger.Error("查询地点屏幕失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ScreenResponse, 0, len(screens))
	for _, sc := range screens {
		result = append(result, dto.ScreenResponse{
			ID:                      sc.ScreenID,
			Alias:                   sc.Alias,
			Floor:                   sc.Floor,
			Status:                  sc.Status,
			LocationID:              sc.LocationID,
			InstallationDescription: sc.InstallationDescription,
			BuildingNumber:          sc.BuildingNumber,
		})
	}
	return result, nil
}

// ── 内部辅助方法 ──

// load 按租户范围加载地点；越权与不存在一律返回 ErrLocationNotFound
func (s *locationService) load(ctx context.Context, caller Caller, id int64, withContacts bool) (*model.ScreenLocation, error) {
	loc, err := s.repo.Location.GetByID(ctx, caller.TenantFilter(), id, withContacts)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLocationNotFound
		}
		s.logger.Error("查询地点失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return loc, nil
}

// updateError 区分预期的业务错误与存储错误，后者记录日志后统一为 ErrLocationUpdateFailed
func (s *locationService) updateError(op string, id int64, err error) error {
	switch {
	case errors.Is(err, ErrScreensAttached):
		metrics.LocationMutationsTotal.WithLabelValues(op, "rejected").Inc()
		return ErrScreensAttached
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		metrics.LocationMutationsTotal.WithLabelValues(op, "conflict").Inc()
		return pkgerrors.ErrOptimisticLock
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrLocationNotFound
	}
	metrics.LocationMutationsTotal.WithLabelValues(op, "error").Inc()
	s.logger.Error("更新地点失败", zap.String("op", op), zap.Int64("id", id), zap.Error(err))
	return ErrLocationUpdateFailed
}

// contractPeriod 两端日期都给出时才构造合同期
func contractPeriod(start, end string) (*model.ContractPeriod, error) {
	if start == "" || end == "" {
		return nil, nil
	}
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return nil, ErrContractPeriodInvalid
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return nil, ErrContractPeriodInvalid
	}
	if e.Before(s) {
		return nil, ErrContractPeriodInvalid
	}
	return &model.ContractPeriod{StartDate: start, EndDate: end}, nil
}

func toLocationResponse(loc *model.ScreenLocation) *dto.LocationResponse {
	resp := &dto.LocationResponse{
		ID:           loc.LocationID,
		CompanyID:    loc.CompanyID,
		OwnerUserID:  loc.OwnerUserID,
		Address1:     loc.Address1,
		Address2:     loc.Address2,
		BuildingName: loc.BuildingName,
		Tags:         loc.Tags,
		GPSLocation:  loc.GPSLocation,
		ScreensCount: loc.ScreensCount,
		Version:      loc.Version,
		CreatedAt:    loc.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    loc.UpdatedAt.Format(time.RFC3339),
	}

	if sc := loc.SubCategory; sc != nil {
		resp.SubCategory = &dto.SubCategoryBrief{ID: sc.SubCategoryID, Name: sc.Name}
		if sc.Category != nil {
			resp.SubCategory.Category = &dto.CategoryBrief{ID: sc.Category.CategoryID, Name: sc.Category.Name}
		}
	}
	if d := loc.District; d != nil {
		resp.District = &dto.DistrictBrief{ID: d.DistrictID, Name: d.Name}
		if d.City != nil {
			resp.District.City = &dto.RegionBrief{ID: d.City.CityID, Name: d.City.Name}
			if d.City.Province != nil {
				resp.District.Province = &dto.RegionBrief{ID: d.City.Province.ProvinceID, Name: d.City.Province.Name}
			}
		}
	}
	if loc.ContractDates != nil {
		resp.ContractDates = &dto.ContractPeriodResponse{
			StartDate: loc.ContractDates.StartDate,
			EndDate:   loc.ContractDates.EndDate,
		}
	}
	if len(loc.Contacts) > 0 {
		resp.Contacts = make([]dto.ContactResponse, 0, len(loc.Contacts))
		for _, c := range loc.Contacts {
			resp.Contacts = append(resp.Contacts, dto.ContactResponse{
				ID:       c.ContactID,
				Name:     c.Name,
				Position: c.Position,
				Phone:    c.Phone,
				Email:    c.Email,
			})
		}
	}
	return resp
}
