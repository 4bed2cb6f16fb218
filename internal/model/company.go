package model

// 公司类型
const (
	CompanyTypeAdmin      = "Company Admin" // 平台管理方，不受租户过滤
	CompanyTypeScreenHost = "Screen Host"
	CompanyTypeAdvertiser = "Advertiser"
)

// Company 公司（租户）表
type Company struct {
	CompanyID   int64  `gorm:"primaryKey;autoIncrement"  json:"company_id"`
	Name        string `gorm:"type:varchar(200);not null" json:"name"`
	CompanyType string `gorm:"type:varchar(50);not null"  json:"company_type"`
	BaseModel
}

// TableName 指定表名
func (Company) TableName() string { return "companies" }

// CompanyMember 用户所属公司关系表
type CompanyMember struct {
	UserID    string   `gorm:"type:uuid;primaryKey" json:"user_id"`
	CompanyID int64    `gorm:"primaryKey"           json:"company_id"`
	Company   *Company `gorm:"foreignKey:CompanyID;references:CompanyID" json:"company,omitempty"`
	BaseModel
}

// TableName 指定表名
func (CompanyMember) TableName() string { return "company_members" }
