package service

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"signage/backend/internal/model"
	"signage/backend/internal/repository"
	pkgerrors "signage/backend/pkg/errors"
)

// ── Mock LocationRepository ──

// mockLocationRepo 以副本存取，模拟数据库行与内存对象互不影响
type mockLocationRepo struct {
	locations map[int64]*model.ScreenLocation
	screens   map[int64][]model.Screen
	tasks     *mockTranslationTaskRepo
	nextID    int64

	createErr error
	updateErr error
	// beforeUpdate 在事务内校验前调用，用于模拟并发挂载屏幕
	beforeUpdate func()
}

func newMockLocationRepo(tasks *mockTranslationTaskRepo) *mockLocationRepo {
	return &mockLocationRepo{
		locations: make(map[int64]*model.ScreenLocation),
		screens:   make(map[int64][]model.Screen),
		tasks:     tasks,
		nextID:    1,
	}
}

func (m *mockLocationRepo) put(loc *model.ScreenLocation) {
	if loc.LocationID >= m.nextID {
		m.nextID = loc.LocationID + 1
	}
	if loc.Version == 0 {
		loc.Version = 1
	}
	m.locations[loc.LocationID] = cloneLocation(loc)
}

func (m *mockLocationRepo) attachScreen(locationID int64, alias string) {
	m.screens[locationID] = append(m.screens[locationID], model.Screen{
		ScreenID:   int64(len(m.screens[locationID]) + 1),
		LocationID: locationID,
		Alias:      alias,
		Status:     "active",
	})
}

func (m *mockLocationRepo) List(_ context.Context, filter repository.TenantFilter) ([]model.ScreenLocation, error) {
	var result []model.ScreenLocation
	for _, l := range m.locations {
		if !filter.Allows(l.CompanyID) {
			continue
		}
		c := cloneLocation(l)
		c.ScreensCount = int64(len(m.screens[l.LocationID]))
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].LocationID > result[j].LocationID })
	return result, nil
}

func (m *mockLocationRepo) GetByID(_ context.Context, filter repository.TenantFilter, id int64, withContacts bool) (*model.ScreenLocation, error) {
	l, ok := m.locations[id]
	if !ok || !filter.Allows(l.CompanyID) {
		return nil, gorm.ErrRecordNotFound
	}
	c := cloneLocation(l)
	c.ScreensCount = int64(len(m.screens[id]))
	if !withContacts {
		c.Contacts = nil
	}
	return c, nil
}

func (m *mockLocationRepo) Create(_ context.Context, loc *model.ScreenLocation, task *model.TranslationTask) error {
	if m.createErr != nil {
		return m.createErr
	}
	loc.LocationID = m.nextID
	loc.Version = 1
	loc.CreatedAt = time.Now()
	loc.UpdatedAt = loc.CreatedAt
	m.put(loc)
	if task != nil {
		task.LocationID = loc.LocationID
		m.tasks.add(task)
	}
	return nil
}

func (m *mockLocationRepo) Update(_ context.Context, loc *model.ScreenLocation, check repository.MutationCheck, task *model.TranslationTask) error {
	if m.beforeUpdate != nil {
		m.beforeUpdate()
	}
	stored, ok := m.locations[loc.LocationID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if check != nil {
		if err := check(int64(len(m.screens[loc.LocationID]))); err != nil {
			return err
		}
	}
	if m.updateErr != nil {
		return m.updateErr
	}
	if stored.Version != loc.Version {
		return pkgerrors.ErrOptimisticLock
	}
	loc.Version++
	loc.UpdatedAt = time.Now()
	m.locations[loc.LocationID] = cloneLocation(loc)
	if task != nil {
		task.LocationID = loc.LocationID
		m.tasks.add(task)
	}
	return nil
}

func (m *mockLocationRepo) ListScreens(_ context.Context, locationID int64) ([]model.Screen, error) {
	return append([]model.Screen(nil), m.screens[locationID]...), nil
}

func cloneLocation(l *model.ScreenLocation) *model.ScreenLocation {
	c := *l
	c.Address1 = cloneText(l.Address1)
	c.Address2 = cloneText(l.Address2)
	c.BuildingName = cloneText(l.BuildingName)
	c.Tags = cloneText(l.Tags)
	if l.ContractDates != nil {
		p := *l.ContractDates
		c.ContractDates = &p
	}
	c.Contacts = append([]model.LocationContact(nil), l.Contacts...)
	return &c
}

func cloneText(t model.LocalizedText) model.LocalizedText {
	if t == nil {
		return nil
	}
	out := make(model.LocalizedText, len(t))
	for k, v := range t {
		if v != nil {
			s := *v
			out[k] = &s
		} else {
			out[k] = nil
		}
	}
	return out
}

// ── Mock TranslationTaskRepository ──

type mockTranslationTaskRepo struct {
	tasks map[string]*model.TranslationTask
	order []string
}

func newMockTranslationTaskRepo() *mockTranslationTaskRepo {
	return &mockTranslationTaskRepo{tasks: make(map[string]*model.TranslationTask)}
}

func (m *mockTranslationTaskRepo) add(task *model.TranslationTask) {
	c := *task
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	m.tasks[c.TaskID] = &c
	m.order = append(m.order, c.TaskID)
}

func (m *mockTranslationTaskRepo) ListPending(_ context.Context, createdBefore time.Time, limit int) ([]model.TranslationTask, error) {
	var result []model.TranslationTask
	for _, id := range m.order {
		t := m.tasks[id]
		if t.Status == model.TranslationTaskPending && t.CreatedAt.Before(createdBefore) {
			result = append(result, *t)
		}
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

func (m *mockTranslationTaskRepo) MarkDispatched(_ context.Context, taskID string) error {
	if t, ok := m.tasks[taskID]; ok && t.Status == model.TranslationTaskPending {
		now := time.Now()
		t.Status = model.TranslationTaskDispatched
		t.DispatchedAt = &now
		t.Attempts++
	}
	return nil
}

func (m *mockTranslationTaskRepo) IncrementAttempts(_ context.Context, taskID string) error {
	if t, ok := m.tasks[taskID]; ok {
		t.Attempts++
	}
	return nil
}

// ── 记录型翻译发布器 ──

type recordingPublisher struct {
	published []model.TranslationTask
	err       error
}

func (p *recordingPublisher) Publish(_ context.Context, task *model.TranslationTask) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, *task)
	return nil
}
