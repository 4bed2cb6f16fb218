package model

// ── 分类 ──

// LocationCategory 地点大类
type LocationCategory struct {
	CategoryID int64  `gorm:"primaryKey;autoIncrement" json:"category_id"`
	Name       string `gorm:"type:varchar(100);not null" json:"name"`
}

// TableName 指定表名
func (LocationCategory) TableName() string { return "location_categories" }

// LocationSubCategory 地点子类，隶属于某个大类
type LocationSubCategory struct {
	SubCategoryID int64             `gorm:"primaryKey;autoIncrement" json:"subcategory_id"`
	CategoryID    int64             `gorm:"not null;index"           json:"category_id"`
	Name          string            `gorm:"type:varchar(100);not null" json:"name"`
	Category      *LocationCategory `gorm:"foreignKey:CategoryID;references:CategoryID" json:"category,omitempty"`
}

// TableName 指定表名
func (LocationSubCategory) TableName() string { return "location_sub_categories" }

// ── 行政区划：省 → 市 → 区 ──

// GeoProvince 省
type GeoProvince struct {
	ProvinceID int64  `gorm:"primaryKey;autoIncrement" json:"province_id"`
	Name       string `gorm:"type:varchar(100);not null" json:"name"`
}

// TableName 指定表名
func (GeoProvince) TableName() string { return "geo_provinces" }

// GeoCity 市
type GeoCity struct {
	CityID     int64        `gorm:"primaryKey;autoIncrement" json:"city_id"`
	ProvinceID int64        `gorm:"not null;index"           json:"province_id"`
	Name       string       `gorm:"type:varchar(100);not null" json:"name"`
	Province   *GeoProvince `gorm:"foreignKey:ProvinceID;references:ProvinceID" json:"province,omitempty"`
}

// TableName 指定表名
func (GeoCity) TableName() string { return "geo_cities" }

// GeoDistrict 区
type GeoDistrict struct {
	DistrictID int64    `gorm:"primaryKey;autoIncrement" json:"district_id"`
	CityID     int64    `gorm:"not null;index"           json:"city_id"`
	Name       string   `gorm:"type:varchar(100);not null" json:"name"`
	City       *GeoCity `gorm:"foreignKey:CityID;references:CityID" json:"city,omitempty"`
}

// TableName 指定表名
func (GeoDistrict) TableName() string { return "geo_districts" }
