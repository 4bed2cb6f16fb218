package dto

import "signage/backend/internal/model"

// ── 地点模块 DTO ──

// ContactRequest 创建地点时附带的联系人
type ContactRequest struct {
	Name     string `json:"name"     binding:"required,max=100"`
	Position string `json:"position" binding:"omitempty,max=100"`
	Phone    string `json:"phone"    binding:"omitempty,max=50"`
	Email    string `json:"email"    binding:"omitempty,email,max=100"`
}

// CreateLocationRequest 创建地点请求
// 文本字段按请求语言（Accept-Language）写入，其余语言由翻译任务补齐
type CreateLocationRequest struct {
	CompanyID     *int64           `json:"company_id"`
	Address1      string           `json:"address1"      binding:"required,max=255"`
	Address2      string           `json:"address2"      binding:"omitempty,max=255"`
	BuildingName  string           `json:"building_name" binding:"omitempty,max=255"`
	SubCategoryID int64            `json:"subcategory"   binding:"required,gt=0"`
	DistrictID    int64            `json:"district"      binding:"required,gt=0"`
	GPSLocation   string           `json:"gps_location"  binding:"omitempty,max=100"`
	Contacts      []ContactRequest `json:"contacts"      binding:"omitempty,dive"`
	StartDate     string           `json:"start_date"    binding:"omitempty,datetime=2006-01-02"`
	EndDate       string           `json:"end_date"      binding:"omitempty,datetime=2006-01-02"`
}

// UpdateLocationRequest 更新地点请求（全量字段）
type UpdateLocationRequest struct {
	Address1      string `json:"address1"      binding:"required,max=255"`
	Address2      string `json:"address2"      binding:"omitempty,max=255"`
	BuildingName  string `json:"building_name" binding:"omitempty,max=255"`
	SubCategoryID int64  `json:"subcategory"   binding:"required,gt=0"`
	DistrictID    int64  `json:"district"      binding:"required,gt=0"`
	GPSLocation   string `json:"gps_location"  binding:"omitempty,max=100"`
	StartDate     string `json:"start_date"    binding:"omitempty,datetime=2006-01-02"`
	EndDate       string `json:"end_date"      binding:"omitempty,datetime=2006-01-02"`
}

// TagItem 单个标签
type TagItem struct {
	Text string `json:"text" binding:"max=100"`
}

// UpdateLocationTagsRequest 更新地点标签请求
type UpdateLocationTagsRequest struct {
	Tags []TagItem `json:"tags" binding:"required,dive"`
}

// Texts 提取标签文本
func (r *UpdateLocationTagsRequest) Texts() []string {
	texts := make([]string, 0, len(r.Tags))
	for _, t := range r.Tags {
		texts = append(texts, t.Text)
	}
	return texts
}

// LocationDetailRequest 地点详情查询参数
type LocationDetailRequest struct {
	Contacts bool `form:"contacts"`
}

// ── 响应 ──

// CategoryBrief 分类简要信息
type CategoryBrief struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SubCategoryBrief 子分类及所属大类
type SubCategoryBrief struct {
	ID       int64          `json:"id"`
	Name     string         `json:"name"`
	Category *CategoryBrief `json:"category,omitempty"`
}

// RegionBrief 行政区简要信息
type RegionBrief struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DistrictBrief 区 → 市 → 省
type DistrictBrief struct {
	ID       int64        `json:"id"`
	Name     string       `json:"name"`
	City     *RegionBrief `json:"city,omitempty"`
	Province *RegionBrief `json:"province,omitempty"`
}

// ContactResponse 联系人信息
type ContactResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
}

// ContractPeriodResponse 合同期
type ContractPeriodResponse struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// LocationResponse 地点信息响应
type LocationResponse struct {
	ID            int64                   `json:"id"`
	CompanyID     int64                   `json:"company_id"`
	OwnerUserID   string                  `json:"owner_user_id"`
	Address1      model.LocalizedText     `json:"address1"`
	Address2      model.LocalizedText     `json:"address2"`
	BuildingName  model.LocalizedText     `json:"building_name"`
	Tags          model.LocalizedText     `json:"tags"`
	SubCategory   *SubCategoryBrief       `json:"subcategory,omitempty"`
	District      *DistrictBrief          `json:"district,omitempty"`
	GPSLocation   string                  `json:"gps_location"`
	ContractDates *ContractPeriodResponse `json:"contract_dates,omitempty"`
	ScreensCount  int64                   `json:"screens_count"`
	Contacts      []ContactResponse       `json:"contacts,omitempty"`
	Version       int                     `json:"version"`
	CreatedAt     string                  `json:"created_at"`
	UpdatedAt     string                  `json:"updated_at"`
}

// ScreenResponse 地点下已安装屏幕
type ScreenResponse struct {
	ID                      int64  `json:"id"`
	Alias                   string `json:"alias"`
	Floor                   string `json:"floor,omitempty"`
	Status                  string `json:"status"`
	LocationID              int64  `json:"screen_locations_id"`
	InstallationDescription string `json:"installation_description,omitempty"`
	BuildingNumber          string `json:"building_number,omitempty"`
}
