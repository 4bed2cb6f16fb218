package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"signage/backend/internal/model"
	pkgerrors "signage/backend/pkg/errors"
)

// TenantFilter 租户可见性过滤条件
// Unrestricted 为 true 时不按公司过滤（平台管理方），否则仅匹配 CompanyID
type TenantFilter struct {
	Unrestricted bool
	CompanyID    int64
}

// Scope 以 GORM Scope 形式应用过滤条件
func (f TenantFilter) Scope(db *gorm.DB) *gorm.DB {
	if f.Unrestricted {
		return db
	}
	return db.Where("screen_locations.company_id = ?", f.CompanyID)
}

// Allows 判断记录是否对当前过滤条件可见
func (f TenantFilter) Allows(companyID int64) bool {
	return f.Unrestricted || f.CompanyID == companyID
}

// MutationCheck 写入事务内对已挂载屏幕数的校验，返回非 nil 时回滚
type MutationCheck func(screensCount int64) error

// LocationRepository 屏幕地点数据访问接口
type LocationRepository interface {
	List(ctx context.Context, filter TenantFilter) ([]model.ScreenLocation, error)
	GetByID(ctx context.Context, filter TenantFilter, id int64, withContacts bool) (*model.ScreenLocation, error)
	// Create 在同一事务中写入地点、联系人与翻译任务
	Create(ctx context.Context, loc *model.ScreenLocation, task *model.TranslationTask) error
	// Update 锁定记录后执行 check，再以版本号比较写入；task 非 nil 时同事务写入
	Update(ctx context.Context, loc *model.ScreenLocation, check MutationCheck, task *model.TranslationTask) error
	ListScreens(ctx context.Context, locationID int64) ([]model.Screen, error)
}

type locationRepo struct {
	db *gorm.DB
}

// NewLocationRepo 创建 LocationRepository 实例
func NewLocationRepo(db *gorm.DB) LocationRepository {
	return &locationRepo{db: db}
}

// screensCountSelect 附带已挂载屏幕数的查询列
const screensCountSelect = "screen_locations.*, " +
	"(SELECT COUNT(*) FROM screens WHERE screens.location_id = screen_locations.location_id) AS screens_count"

func (r *locationRepo) withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("SubCategory.Category").
		Preload("District.City.Province")
}

func (r *locationRepo) List(ctx context.Context, filter TenantFilter) ([]model.ScreenLocation, error) {
	var locations []model.ScreenLocation
	err := r.db.WithContext(ctx).
		Scopes(filter.Scope, r.withRelations).
		Select(screensCountSelect).
		Order("screen_locations.location_id DESC").
		Find(&locations).Error
	return locations, err
}

func (r *locationRepo) GetByID(ctx context.Context, filter TenantFilter, id int64, withContacts bool) (*model.ScreenLocation, error) {
	var loc model.ScreenLocation
	db := r.db.WithContext(ctx).Scopes(filter.Scope, r.withRelations)
	if withContacts {
		db = db.Preload("Contacts", func(db *gorm.DB) *gorm.DB {
			return db.Order("contact_id ASC")
		})
	}
	err := db.
		Select(screensCountSelect).
		Where("screen_locations.location_id = ?", id).
		First(&loc).Error
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *locationRepo) Create(ctx context.Context, loc *model.ScreenLocation, task *model.TranslationTask) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 联系人随地点一并创建
		if err := tx.Omit("SubCategory", "District").Create(loc).Error; err != nil {
			return err
		}
		if task != nil {
			task.LocationID = loc.LocationID
			if err := tx.Create(task).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *locationRepo) Update(ctx context.Context, loc *model.ScreenLocation, check MutationCheck, task *model.TranslationTask) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 行锁：阻止并发写入与屏幕挂载在校验与提交之间插入
		var locked model.ScreenLocation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("location_id", "version").
			Where("location_id = ?", loc.LocationID).
			First(&locked).Error; err != nil {
			return err
		}

		if check != nil {
			var screens int64
			if err := tx.Model(&model.Screen{}).
				Where("location_id = ?", loc.LocationID).
				Count(&screens).Error; err != nil {
				return err
			}
			if err := check(screens); err != nil {
				return err
			}
		}

		oldVersion := loc.Version
		result := tx.Model(&model.ScreenLocation{}).
			Where("location_id = ? AND version = ?", loc.LocationID, oldVersion).
			Updates(map[string]interface{}{
				"address1":        loc.Address1,
				"address2":        loc.Address2,
				"building_name":   loc.BuildingName,
				"tags":            loc.Tags,
				"sub_category_id": loc.SubCategoryID,
				"district_id":     loc.DistrictID,
				"gps_location":    loc.GPSLocation,
				"contract_dates":  loc.ContractDates,
				"updated_by":      loc.UpdatedBy,
				"version":         oldVersion + 1,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pkgerrors.ErrOptimisticLock
		}
		loc.Version = oldVersion + 1

		if task != nil {
			task.LocationID = loc.LocationID
			if err := tx.Create(task).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *locationRepo) ListScreens(ctx context.Context, locationID int64) ([]model.Screen, error) {
	var screens []model.Screen
	err := r.db.WithContext(ctx).
		Select("screen_id", "alias", "floor", "status", "location_id", "installation_description", "building_number").
		Where("location_id = ?", locationID).
		Order("screen_id ASC").
		Find(&screens).Error
	return screens, err
}
