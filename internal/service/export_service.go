package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"signage/backend/internal/model"
	"signage/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoLocations  = errors.New("暂无可导出的地点")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出范围与列表一致，受租户范围约束
//   - 文本字段按调用方语言输出，未翻译时回退到默认语言
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportLocations 导出地点列表为 Excel
	ExportLocations(ctx context.Context, caller Caller) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// exportColumns 表头与列宽
var exportColumns = []struct {
	title string
	width float64
}{
	{"ID", 8},
	{"Company", 10},
	{"Address 1", 32},
	{"Address 2", 24},
	{"Building", 20},
	{"Category", 16},
	{"Subcategory", 16},
	{"Province", 14},
	{"City", 14},
	{"District", 14},
	{"GPS", 22},
	{"Contract start", 14},
	{"Contract end", 14},
	{"Screens", 9},
	{"Tags", 28},
}

// ═══════════════════════════════════════════════════════════
// ExportLocations — 导出地点列表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：单 Sheet "Locations"，首行表头，每个地点一行（按 ID 倒序）
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportLocations(ctx context.Context, caller Caller) (*bytes.Buffer, string, error) {
	locations, err := s.repo.Location.List(ctx, caller.TenantFilter())
	if err != nil {
		s.logger.Error("查询导出地点失败", zap.Int64("company_id", caller.CompanyID), zap.Error(err))
		return nil, "", err
	}
	if len(locations) == 0 {
		return nil, "", ErrExportNoLocations
	}

	locale := caller.SourceLocale()

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Locations"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 表头
	for i, col := range exportColumns {
		name := colName(i)
		f.SetColWidth(sheetName, name, name, col.width)
		f.SetCellValue(sheetName, cell(name, 1), col.title)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(exportColumns)-1), 1), headerStyle)

	// 数据行
	row := 2
	for i := range locations {
		for c, v := range exportRow(&locations[i], locale) {
			f.SetCellValue(sheetName, cell(colName(c), row), v)
		}
		row++
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("locations_%s.xlsx", time.Now().Format("20060102"))
	return buf, filename, nil
}

// exportRow 按 exportColumns 顺序展开单个地点
func exportRow(loc *model.ScreenLocation, locale string) []interface{} {
	var category, subcategory, province, city, district string
	if sc := loc.SubCategory; sc != nil {
		subcategory = sc.Name
		if sc.Category != nil {
			category = sc.Category.Name
		}
	}
	if d := loc.District; d != nil {
		district = d.Name
		if d.City != nil {
			city = d.City.Name
			if d.City.Province != nil {
				province = d.City.Province.Name
			}
		}
	}
	var start, end string
	if loc.ContractDates != nil {
		start, end = loc.ContractDates.StartDate, loc.ContractDates.EndDate
	}

	return []interface{}{
		loc.LocationID,
		loc.CompanyID,
		localizedCell(loc.Address1, locale),
		localizedCell(loc.Address2, locale),
		localizedCell(loc.BuildingName, locale),
		category,
		subcategory,
		province,
		city,
		district,
		loc.GPSLocation,
		start,
		end,
		loc.ScreensCount,
		localizedCell(loc.Tags, locale),
	}
}

// localizedCell 优先取调用方语言，未翻译时回退默认语言
func localizedCell(t model.LocalizedText, locale string) string {
	if t.IsTranslated(locale) {
		return t.Text(locale)
	}
	return t.Text(model.DefaultLocale)
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
