package model

// 可翻译字段名（翻译任务中的 field_names）
const (
	FieldAddress1     = "address1"
	FieldAddress2     = "address2"
	FieldBuildingName = "building_name"
	FieldTags         = "tags"
)

// ScreenLocation 屏幕安装地点表 — 对应 screen_locations
type ScreenLocation struct {
	LocationID    int64           `gorm:"primaryKey;autoIncrement"          json:"location_id"`
	OwnerUserID   string          `gorm:"type:uuid;not null"                json:"owner_user_id"`
	CompanyID     int64           `gorm:"not null;index"                    json:"company_id"`
	Address1      LocalizedText   `gorm:"type:jsonb;not null"               json:"address1"`
	Address2      LocalizedText   `gorm:"type:jsonb;not null"               json:"address2"`
	BuildingName  LocalizedText   `gorm:"type:jsonb;not null"               json:"building_name"`
	Tags          LocalizedText   `gorm:"type:jsonb;not null"               json:"tags"`
	SubCategoryID int64           `gorm:"not null;index"                    json:"subcategory_id"`
	DistrictID    int64           `gorm:"not null;index"                    json:"district_id"`
	GPSLocation   string          `gorm:"column:gps_location;type:varchar(100)" json:"gps_location"`
	ContractDates *ContractPeriod `gorm:"type:jsonb"                        json:"contract_dates,omitempty"`
	VersionedModel

	// 派生字段：子查询统计，不落库
	ScreensCount int64 `gorm:"->;-:migration" json:"screens_count"`

	SubCategory *LocationSubCategory `gorm:"foreignKey:SubCategoryID;references:SubCategoryID" json:"subcategory,omitempty"`
	District    *GeoDistrict         `gorm:"foreignKey:DistrictID;references:DistrictID"       json:"district,omitempty"`
	Contacts    []LocationContact    `gorm:"foreignKey:LocationID;references:LocationID"       json:"contacts,omitempty"`
}

// TableName 指定表名
func (ScreenLocation) TableName() string { return "screen_locations" }

// LocationContact 地点联系人表 — 仅在创建地点时写入
type LocationContact struct {
	ContactID  int64  `gorm:"primaryKey;autoIncrement" json:"contact_id"`
	LocationID int64  `gorm:"not null;index"           json:"location_id"`
	Name       string `gorm:"type:varchar(100);not null" json:"name"`
	Position   string `gorm:"type:varchar(100)"        json:"position,omitempty"`
	Phone      string `gorm:"type:varchar(50)"         json:"phone,omitempty"`
	Email      string `gorm:"type:varchar(100)"        json:"email,omitempty"`
	BaseModel
}

// TableName 指定表名
func (LocationContact) TableName() string { return "location_contacts" }

// Screen 屏幕表（由安装流程维护，本模块只读）
type Screen struct {
	ScreenID                int64  `gorm:"primaryKey;autoIncrement" json:"screen_id"`
	LocationID              int64  `gorm:"not null;index"           json:"location_id"`
	Alias                   string `gorm:"type:varchar(100)"        json:"alias"`
	Floor                   string `gorm:"type:varchar(20)"         json:"floor,omitempty"`
	Status                  string `gorm:"type:varchar(20)"         json:"status"`
	InstallationDescription string `gorm:"type:text"                json:"installation_description,omitempty"`
	BuildingNumber          string `gorm:"type:varchar(50)"         json:"building_number,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Screen) TableName() string { return "screens" }
