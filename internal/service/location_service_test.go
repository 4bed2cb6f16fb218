package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"signage/backend/config"
	"signage/backend/internal/dto"
	"signage/backend/internal/model"
	"signage/backend/internal/repository"
	pkgerrors "signage/backend/pkg/errors"
)

// ── 测试辅助 ──

var (
	hostCaller = Caller{
		UserID:      "6f1d2c3b-0000-4000-8000-000000000005",
		CompanyID:   5,
		CompanyType: model.CompanyTypeScreenHost,
		Locale:      model.LocaleEN,
	}
	adminCaller = Caller{
		UserID:      "6f1d2c3b-0000-4000-8000-000000000001",
		CompanyID:   1,
		CompanyType: model.CompanyTypeAdmin,
		Locale:      model.LocaleEN,
	}
)

type locationFixture struct {
	svc       LocationService
	locations *mockLocationRepo
	tasks     *mockTranslationTaskRepo
	publisher *recordingPublisher
}

func setupTestLocationService() *locationFixture {
	tasks := newMockTranslationTaskRepo()
	locations := newMockLocationRepo(tasks)
	repo := &repository.Repository{
		Location:        locations,
		TranslationTask: tasks,
	}
	publisher := &recordingPublisher{}
	logger := zap.NewNop()
	dispatcher := NewTranslationDispatcher(config.TranslationConfig{Queue: "translations"}, tasks, publisher, logger)
	return &locationFixture{
		svc:       NewLocationService(repo, dispatcher, logger),
		locations: locations,
		tasks:     tasks,
		publisher: publisher,
	}
}

func strPtr(s string) *string { return &s }

func seedLocation(f *locationFixture, id, companyID int64, address1, address2, building string) {
	f.locations.put(&model.ScreenLocation{
		LocationID:    id,
		OwnerUserID:   hostCaller.UserID,
		CompanyID:     companyID,
		Address1:      model.NewUntranslated(model.LocaleEN, address1),
		Address2:      model.NewUntranslated(model.LocaleEN, address2),
		BuildingName:  model.NewUntranslated(model.LocaleEN, building),
		Tags:          model.NewLocalizedText(),
		SubCategoryID: 3,
		DistrictID:    7,
		GPSLocation:   "22.3193,114.1694",
	})
}

func updateRequest(address1, address2, building string) *dto.UpdateLocationRequest {
	return &dto.UpdateLocationRequest{
		Address1:      address1,
		Address2:      address2,
		BuildingName:  building,
		SubCategoryID: 4,
		DistrictID:    8,
		GPSLocation:   "22.2800,114.1588",
	}
}

// ── List 测试 ──

func TestLocationService_List_TenantScoped(t *testing.T) {
	f := setupTestLocationService()
	seedLocation(f, 1, 5, "A", "", "")
	seedLocation(f, 2, 6, "B", "", "")
	seedLocation(f, 3, 5, "C", "", "")

	locations, err := f.svc.List(context.Background(), hostCaller)
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(locations) != 2 {
		t.Fatalf("期望2个地点，实际=%d", len(locations))
	}
	for _, l := range locations {
		if l.CompanyID != 5 {
			t.Errorf("不应返回其他公司的地点: %+v", l)
		}
	}
	if locations[0].ID != 3 || locations[1].ID != 1 {
		t.Errorf("期望按 ID 倒序，实际=%d,%d", locations[0].ID, locations[1].ID)
	}
}

func TestLocationService_List_ElevatedUnrestricted(t *testing.T) {
	f := setupTestLocationService()
	seedLocation(f, 1, 5, "A", "", "")
	seedLocation(f, 2, 6, "B", "", "")

	locations, err := f.svc.List(context.Background(), adminCaller)
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(locations) != 2 {
		t.Errorf("管理方应看到全部地点，实际=%d", len(locations))
	}
}

// ── Get 测试 ──

func TestLocationService_Get_OtherTenantIsNotFound(t *testing.T) {
	f := setupTestLocationService()
	seedLocation(f, 1, 6, "A", "", "")

	_, err := f.svc.Get(context.Background(), hostCaller, 1, false)
	if !errors.Is(err, ErrLocationNotFound) {
		t.Errorf("期望 ErrLocationNotFound，实际: %v", err)
	}

	if _, err := f.svc.Get(context.Background(), adminCaller, 1, false); err != nil {
		t.Errorf("管理方应可查看: %v", err)
	}
}

func TestLocationService_Get_NotFound(t *testing.T) {
	f := setupTestLocationService()

	_, err := f.svc.Get(context.Background(), adminCaller, 404, false)
	if !errors.Is(err, ErrLocationNotFound) {
		t.Errorf("期望 ErrLocationNotFound，实际: %v", err)
	}
}

func TestLocationService_Get_WithContacts(t *testing.T) {
	f := setupTestLocationService()
	seedLocation(f, 1, 5, "A", "", "")
	f.locations.locations[1].Contacts = []model.LocationContact{{ContactID: 1, LocationID: 1, Name: "Li Lei"}}

	plain, err := f.svc.Get(context.Background(), hostCaller, 1, false)
	if err != nil {
		t.Fatalf("Get 应成功: %v", err)
	}
	if len(plain.Contacts) != 0 {
		t.Error("未请求联系人时不应返回联系人")
	}

	full, err := f.svc.Get(context.Background(), hostCaller, 1, true)
	if err != nil {
		t.Fatalf("Get 应成功: %v", err)
	}
	if len(full.Contacts) != 1 || full.Contacts[0].Name != "Li Lei" {
		t.Errorf("期望返回联系人，实际=%+v", full.Contacts)
	}
}

// ── Create 测试 ──

func TestLocationService_Create_Success(t *testing.T) {
	f := setupTestLocationService()

	req := &dto.CreateLocationRequest{
		Address1:      "123 Main St",
		SubCategoryID: 3,
		DistrictID:    7,
		GPSLocation:   "22.3193,114.1694",
		Contacts:      []dto.ContactRequest{{Name: "Li Lei", Phone: "+852 1234"}},
	}
	result, err := f.svc.Create(context.Background(), hostCaller, req)
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	if result.CompanyID != 5 {
		t.Errorf("期望归属公司=5，实际=%d", result.CompanyID)
	}
	if result.ScreensCount != 0 {
		t.Errorf("新建地点屏幕数应为0，实际=%d", result.ScreensCount)
	}
	if got := result.Address1.Text(model.LocaleEN); got != "123 Main St" {
		t.Errorf("期望 address1.en=123 Main St，实际=%q", got)
	}
	if result.Address1.IsTranslated(model.LocaleZH) {
		t.Error("address1.zh 应为未翻译")
	}
	for _, l := range model.SupportedLocales {
		if result.Tags.IsTranslated(l) {
			t.Errorf("tags.%s 应为未翻译", l)
		}
	}
	if len(result.Contacts) != 1 {
		t.Errorf("期望1个联系人，实际=%d", len(result.Contacts))
	}

	if len(f.publisher.published) != 1 {
		t.Fatalf("期望投递1个翻译任务，实际=%d", len(f.publisher.published))
	}
	task := f.publisher.published[0]
	want := []string{model.FieldAddress1, model.FieldAddress2, model.FieldBuildingName}
	if !reflect.DeepEqual([]string(task.Fields), want) {
		t.Errorf("期望字段=%v，实际=%v", want, task.Fields)
	}
	if task.SourceLocale != model.LocaleEN || task.LocationID != result.ID || task.Queue != "translations" {
		t.Errorf("翻译任务不符: %+v", task)
	}
	if stored := f.tasks.tasks[task.TaskID]; stored.Status != model.TranslationTaskDispatched {
		t.Errorf("投递成功后任务应标记为已投递，实际=%s", stored.Status)
	}
}

func TestLocationService_Create_RoundTrip(t *testing.T) {
	f := setupTestLocationService()

	req := &dto.CreateLocationRequest{
		Address1:      "123 Main St",
		Address2:      "Unit 5",
		BuildingName:  "Tower B",
		SubCategoryID: 3,
		DistrictID:    7,
	}
	created, err := f.svc.Create(context.Background(), hostCaller, req)
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	got, err := f.svc.Get(context.Background(), hostCaller, created.ID, false)
	if err != nil {
		t.Fatalf("Get 应成功: %v", err)
	}
	pairs := map[string]model.LocalizedText{
		"123 Main St": got.Address1,
		"Unit 5":      got.Address2,
		"Tower B":     got.BuildingName,
	}
	for want, text := range pairs {
		if text.Text(model.LocaleEN) != want {
			t.Errorf("期望 en=%q，实际=%q", want, text.Text(model.LocaleEN))
		}
		if text.IsTranslated(model.LocaleZH) {
			t.Errorf("%q 的 zh 应为未翻译", want)
		}
	}
}

func TestLocationService_Create_SourceLocaleFromCaller(t *testing.T) {
	f := setupTestLocationService()
	caller := hostCaller
	caller.Locale = model.LocaleZH

	result, err := f.svc.Create(context.Background(), caller, &dto.CreateLocationRequest{
		Address1: "中环皇后大道1号", SubCategoryID: 3, DistrictID: 7,
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Address1.Text(model.LocaleZH) != "中环皇后大道1号" || result.Address1.IsTranslated(model.LocaleEN) {
		t.Errorf("期望文本写入 zh、en 未翻译，实际=%v", result.Address1)
	}
	if f.publisher.published[0].SourceLocale != model.LocaleZH {
		t.Errorf("期望源语言=zh，实际=%s", f.publisher.published[0].SourceLocale)
	}
}

func TestLocationService_Create_ForeignCompanyNotPermitted(t *testing.T) {
	f := setupTestLocationService()

	other := int64(9)
	_, err := f.svc.Create(context.Background(), hostCaller, &dto.CreateLocationRequest{
		CompanyID: &other, Address1: "A", SubCategoryID: 3, DistrictID: 7,
	})
	if !errors.Is(err, ErrCompanyNotPermitted) {
		t.Errorf("期望 ErrCompanyNotPermitted，实际: %v", err)
	}
	if len(f.locations.locations) != 0 || len(f.tasks.tasks) != 0 {
		t.Error("越权创建不应写入任何数据")
	}
}

func TestLocationService_Create_ElevatedOnBehalf(t *testing.T) {
	f := setupTestLocationService()

	other := int64(9)
	result, err := f.svc.Create(context.Background(), adminCaller, &dto.CreateLocationRequest{
		CompanyID: &other, Address1: "A", SubCategoryID: 3, DistrictID: 7,
	})
	if err != nil {
		t.Fatalf("管理方代建应成功: %v", err)
	}
	if result.CompanyID != 9 {
		t.Errorf("期望归属公司=9，实际=%d", result.CompanyID)
	}
}

func TestLocationService_Create_ContractPeriod(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		wantErr error
		wantSet bool
	}{
		{"两端齐全", "2025-01-01", "2025-12-31", nil, true},
		{"同一天", "2025-01-01", "2025-01-01", nil, true},
		{"仅开始日期", "2025-01-01", "", nil, false},
		{"仅结束日期", "", "2025-12-31", nil, false},
		{"结束早于开始", "2025-12-31", "2025-01-01", ErrContractPeriodInvalid, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestLocationService()
			result, err := f.svc.Create(context.Background(), hostCaller, &dto.CreateLocationRequest{
				Address1: "A", SubCategoryID: 3, DistrictID: 7,
				StartDate: tt.start, EndDate: tt.end,
			})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("期望错误=%v，实际=%v", tt.wantErr, err)
			}
			if err != nil {
				return
			}
			if (result.ContractDates != nil) != tt.wantSet {
				t.Errorf("期望合同期存在=%v，实际=%+v", tt.wantSet, result.ContractDates)
			}
		})
	}
}

func TestLocationService_Create_SaveFailed(t *testing.T) {
	f := setupTestLocationService()
	f.locations.createErr = errors.New("connection reset")

	result, err := f.svc.Create(context.Background(), hostCaller, &dto.CreateLocationRequest{
		Address1: "A", SubCategoryID: 3, DistrictID: 7,
	})
	if !errors.Is(err, ErrLocationSaveFailed) {
		t.Errorf("期望 ErrLocationSaveFailed，实际: %v", err)
	}
	if result != nil {
		t.Error("保存失败时不应返回地点")
	}
	if len(f.publisher.published) != 0 {
		t.Error("保存失败时不应投递翻译任务")
	}
}

func TestLocationService_Create_PublishFailureKeepsTaskPending(t *testing.T) {
	f := setupTestLocationService()
	f.publisher.err = pkgerrors.ErrQueueUnavailable

	if _, err := f.svc.Create(context.Background(), hostCaller, &dto.CreateLocationRequest{
		Address1: "A", SubCategoryID: 3, DistrictID: 7,
	}); err != nil {
		t.Fatalf("队列不可用不应影响创建: %v", err)
	}

	if len(f.tasks.tasks) != 1 {
		t.Fatalf("期望发件箱中有1个任务，实际=%d", len(f.tasks.tasks))
	}
	for _, task := range f.tasks.tasks {
		if task.Status != model.TranslationTaskPending || task.Attempts != 1 {
			t.Errorf("期望任务保持待投递且重试次数=1，实际=%s/%d", task.Status, task.Attempts)
		}
	}
}

// ── Update 测试 ──

func TestLocationService_Update_OnlyChangedFieldsTranslated(t *testing.T) {
	f := setupTestLocationService()
	seedLocation(f, 1, 5, "123 Main St", "Unit 5", "Tower B")
	// 已有译文：未变化字段应保留
	f.locations.locations[1].Address1[model.LocaleZH] = strPtr("主街123号")

	result, err := f.svc.Update(context.Background(), hostCaller, 1, updateRequest("123 Main St", "Unit 5", "Tower A"))
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}

	if len(f.publisher.published) != 1 {
		t.Fatalf("期望投递1个翻译任务，实际=%d", len(f.publisher.published))
	}
	if fields := f.publisher.published[0].Fields; !reflect.DeepEqual([]string(fields), []string{model.FieldBuildingName}) {
		t.Errorf("期望字段=[building_name]，实际=%v", fields)
	}

	if result.Address1.Text(model.LocaleZH) != "主街123号" {
		t.Errorf("未变化字段的译文应保留，实际=%v", result.Address1)
	}
	if result.BuildingName.Text(model.LocaleEN) != "Tower A" || result.BuildingName.IsTranslated(model.LocaleZH) {
		t.Errorf("变化字段应写入新文本并清空其他语言，实际=%v", result.BuildingName)
	}

	stored := f.locations.locations[1]
	if stored.SubCategoryID != 4 || stored.DistrictID != 8 || stored.GPSLocation != "22.2800,114.1588" {
		t.Errorf("分类与地理字段应被更新: %+v", stored)
	}
	if stored.Version != 2 {
		t.Errorf("期望版本号=2，实际=%d", stored.Version)
	}
}

func TestLocationService_Update_TwoOfThreeChanged(t *testing.T) {
	f := setupTestLocationService()
	seedLocation(f, 1, 5, "123 Main St", "Unit 5", "Tower B")

	_, err := f.svc.Update(context.Background(), hostCaller, 1, updateRequest("1 Queen's Rd", "Unit 5", "Tower A"))
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}

	if len(f.publisher.published) != 1 {
		t.Fatalf("期望恰好1个翻译任务，实际=%d", len(f.publisher.published))
	}
	want := []string{model.FieldAddress1, model.FieldBuildingName}
	if got := []string(f.publisher.published[0].Fields); !reflect.DeepEqual(got, want) {
		t.Errorf("期望字段=%v，实际=%v", want, got)
	}
}

func TestLocationService_Update_NoTextChangeNoTask(t *testing.T) {
	f := setupTestLocationService()
	seedLocation(f, 1, 5, "123 Main St", "", "Tower B")

	if _, err := f.svc.Update(context.Background(), hostCaller, 1, updateRequest("123 Main St", "", "Tower B")); err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if len(f.publisher.published) != 0 || len(f.tasks.tasks) != 0 {
		t.Error("文本未变化时不应产生翻译任务")
	}
}

func TestLocationService_Update_ScreensAttached(t *testing.T) {
	f := setupTestLocationService()
	seedLocation(f, 1, 5, "123 Main St", "", "Tower B")
	f.locations.attachScreen(1, "Lobby")

	_, err := f.svc.Update(context.Background(), hostCaller, 1, updateRequest("Changed", "", "Changed"))
	if !errors.Is(err, ErrScreensAttached) {
		t.Fatalf("期望 ErrScreensAttached，实际: %v", err)
	}
	if err.Error() != "screens count is bigger then 0" {
		t.Errorf("拒绝信息不符: %q", err.Error())
	}

	stored := f.locations.locations[1]
	if stored.Address1.Text(model.LocaleEN) != "123 Main St" || stored.SubCategoryID != 3 || stored.Version != 1 {
		t.Errorf("被拒绝的更新不应修改数据: %+v", stored)
	}
	if len(f.publisher.published) != 0 {
		t.Error("被拒绝的更新不应投递翻译任务")
	}
}

func TestLocationService_Update_ScreenAttachedConcurrently(t *testing.T) {
	f := setupTestLocationService()
	seedLocation(f, 1, 5, "123 Main St", "", "Tower B")
	// 校验通过后、提交前挂载屏幕，应在事务内再次拦截
	f.locations.beforeUpdate = func() { f.locations.attachScreen(1, "Lobby") }

	_, err := f.svc.Update(context.Background(), hostCaller, 1, updateRequest("Changed", "", "Tower B"))
	if !errors.Is(err, ErrScreensAttached) {
		t.Fatalf("期望 ErrScreensAttached，实际: %v", err)
	}
	if f.locations.locations[1].Address1.Text(model.LocaleEN) != "123 Main St" {
		t.Error("被拒绝的更新不应修改数据")
	}
}

func TestLocationService_Update_VersionConflict(t *testing.T) {
	f := setupTestLocationService()
	seedLocation(f, 1, 5, "123 Main St", "", "")
	f.locations.beforeUpdate = func() { f.locations.locations[1].Version = 7 }

	_, err := f.svc.Update(context.Background(), hostCaller, 1, updateRequest("Changed", "", ""))
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("期望 ErrOptimisticLock，实际: %v", err)
	}
	if len(f.publisher.published) != 0 {
		t.Error("冲突时不应投递翻译任务")
	}
}

func TestLocationService_Update_OtherTenantIsNotFound(t *testing.T) {
	f := setupTestLocationService()
	seedLocation(f, 1, 6, "123 Main St", "", "")

	_, err := f.svc.Update(context.Background(), hostCaller, 1, updateRequest("Changed", "", ""))
	if !errors.Is(err, ErrLocationNotFound) {
		t.Errorf("期望 ErrLocationNotFound，实际: %v", err)
	}
}

func TestLocationService_Update_StorageFailure(t *testing.T) {
	f := setupTestLocationService()
	seedLocation(f, 1, 5, "123 Main St", "", "")
	f.locations.updateErr = errors.New("deadlock detected")

	_, err := f.svc.Update(context.Background(), hostCaller, 1, updateRequest("Changed", "", ""))
	if !errors.Is(err, ErrLocationUpdateFailed) {
		t.Errorf("期望 ErrLocationUpdateFailed，实际: %v", err)
	}
}

func TestLocationService_Update_ContractPeriodOverwrittenOnlyWhenComplete(t *testing.T) {
	f := setupTestLocationService()
	seedLocation(f, 1, 5, "A", "", "")
	f.locations.locations[1].ContractDates = &model.ContractPeriod{StartDate: "2024-01-01", EndDate: "2024-12-31"}

	req := updateRequest("A", "", "")
	req.StartDate = "2025-01-01"
	if _, err := f.svc.Update(context.Background(), hostCaller, 1, req); err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if got := f.locations.locations[1].ContractDates; got.StartDate != "2024-01-01" {
		t.Errorf("仅给出开始日期时不应覆盖合同期，实际=%+v", got)
	}

	req.EndDate = "2025-06-30"
	if _, err := f.svc.Update(context.Background(), hostCaller, 1, req); err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if got := f.locations.locations[1].ContractDates; got.StartDate != "2025-01-01" || got.EndDate != "2025-06-30" {
		t.Errorf("两端齐全时应覆盖合同期，实际=%+v", got)
	}
}

// ── UpdateTags 测试 ──

func TestLocationService_UpdateTags_AlwaysTranslated(t *testing.T) {
	f := setupTestLocationService()
	seedLocation(f, 1, 5, "A", "", "")
	// 标签更新不受屏幕挂载限制
	f.locations.attachScreen(1, "Lobby")

	for i := 0; i < 2; i++ {
		if err := f.svc.UpdateTags(context.Background(), hostCaller, 1, []string{"mall", "outdoor"}); err != nil {
			t.Fatalf("UpdateTags 应成功: %v", err)
		}
	}

	if len(f.publisher.published) != 2 {
		t.Fatalf("相同标签也应每次投递，期望2个任务，实际=%d", len(f.publisher.published))
	}
	for _, task := range f.publisher.published {
		if !reflect.DeepEqual([]string(task.Fields), []string{model.FieldTags}) {
			t.Errorf("期望字段=[tags]，实际=%v", task.Fields)
		}
	}
	tags := f.locations.locations[1].Tags
	if tags.Text(model.LocaleEN) != "mall,outdoor" || tags.IsTranslated(model.LocaleZH) {
		t.Errorf("期望 tags={en: mall,outdoor, zh: null}，实际=%v", tags)
	}
}

func TestLocationService_UpdateTags_NotFound(t *testing.T) {
	f := setupTestLocationService()
	seedLocation(f, 1, 6, "A", "", "")

	err := f.svc.UpdateTags(context.Background(), hostCaller, 1, []string{"mall"})
	if !errors.Is(err, ErrLocationNotFound) {
		t.Errorf("期望 ErrLocationNotFound，实际: %v", err)
	}
}

func TestLocationService_UpdateTags_StorageFailure(t *testing.T) {
	f := setupTestLocationService()
	seedLocation(f, 1, 5, "A", "", "")
	f.locations.updateErr = errors.New("connection reset")

	err := f.svc.UpdateTags(context.Background(), hostCaller, 1, []string{"mall"})
	if !errors.Is(err, ErrLocationUpdateFailed) {
		t.Errorf("期望 ErrLocationUpdateFailed，实际: %v", err)
	}
}

// ── ListScreens 测试 ──

func TestLocationService_ListScreens(t *testing.T) {
	f := setupTestLocationService()
	seedLocation(f, 1, 5, "A", "", "")
	f.locations.attachScreen(1, "Lobby")
	f.locations.attachScreen(1, "Lift")

	screens, err := f.svc.ListScreens(context.Background(), hostCaller, 1)
	if err != nil {
		t.Fatalf("ListScreens 应成功: %v", err)
	}
	if len(screens) != 2 || screens[0].Alias != "Lobby" || screens[0].LocationID != 1 {
		t.Errorf("屏幕列表不符: %+v", screens)
	}

	if _, err := f.svc.ListScreens(context.Background(), Caller{CompanyID: 6, CompanyType: model.CompanyTypeScreenHost}, 1); !errors.Is(err, ErrLocationNotFound) {
		t.Errorf("其他公司应返回 ErrLocationNotFound，实际: %v", err)
	}
}
