package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/kiflomm/mu-maintainance/internal/model"
	"github.com/kiflomm/mu-maintainance/internal/repository"
	pkgerrors "github.com/kiflomm/mu-maintainance/pkg/errors"
)

// ── Mock CampusRepository ──

type mockCampusRepo struct {
	campuses map[int64]*model.Campus
}

func newMockCampusRepo() *mockCampusRepo {
	return &mockCampusRepo{campuses: make(map[int64]*model.Campus)}
}

func (m *mockCampusRepo) add(id int64, name string) *model.Campus {
	c := &model.Campus{ID: id, Name: name}
	m.campuses[id] = c
	return c
}

func (m *mockCampusRepo) GetByID(_ context.Context, id int64) (*model.Campus, error) {
	if c, ok := m.campuses[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCampusRepo) List(_ context.Context) ([]model.Campus, error) {
	var result []model.Campus
	for _, c := range m.campuses {
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// ── Mock CategoryRepository ──

type mockCategoryRepo struct {
	categories map[int64]*model.Category
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{categories: make(map[int64]*model.Category)}
}

func (m *mockCategoryRepo) add(id int64, name string) *model.Category {
	c := &model.Category{ID: id, Name: name, Slug: strings.ToLower(name)}
	m.categories[id] = c
	return c
}

func (m *mockCategoryRepo) GetByID(_ context.Context, id int64) (*model.Category, error) {
	if c, ok := m.categories[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCategoryRepo) List(_ context.Context) ([]model.Category, error) {
	var result []model.Category
	for _, c := range m.categories {
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users   map[int64]*model.User
	nextID  int64
	campus  *mockCampusRepo
	deleted []int64
}

func newMockUserRepo(campus *mockCampusRepo) *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*model.User), nextID: 100, campus: campus}
}

func (m *mockUserRepo) withCampus(u *model.User) *model.User {
	cp := *u
	cp.Campus = nil
	if cp.CampusID != nil && m.campus != nil {
		if c, ok := m.campus.campuses[*cp.CampusID]; ok {
			cc := *c
			cp.Campus = &cc
		}
	}
	return &cp
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return pkgerrors.ErrConflict
		}
	}
	if user.ID == 0 {
		m.nextID++
		user.ID = m.nextID
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return m.withCampus(u), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return m.withCampus(u), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	for _, u := range m.users {
		if u.ID != user.ID && strings.EqualFold(u.Email, user.Email) {
			return pkgerrors.ErrConflict
		}
	}
	cp := *user
	cp.UpdatedAt = time.Now()
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.users, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, filter repository.UserFilter, offset, limit int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.CampusID > 0 && (u.CampusID == nil || *u.CampusID != filter.CampusID) {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(u.Name, filter.Keyword) && !strings.Contains(u.Email, filter.Keyword) {
			continue
		}
		result = append(result, *m.withCampus(u))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	total := int64(len(result))
	return paginate(result, offset, limit), total, nil
}

func (m *mockUserRepo) CountByRole(_ context.Context, role model.Role) (int64, error) {
	var n int64
	for _, u := range m.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

// ── Mock ComplaintRepository ──

type mockComplaintRepo struct {
	complaints map[int64]*model.Complaint
	nextID     int64
	// conflicts 接下来 N 次 Create 返回 ErrConflict；<0 表示始终冲突
	conflicts int
	creates   int

	campus   *mockCampusRepo
	category *mockCategoryRepo
	user     *mockUserRepo
}

func newMockComplaintRepo(campus *mockCampusRepo, category *mockCategoryRepo, user *mockUserRepo) *mockComplaintRepo {
	return &mockComplaintRepo{
		complaints: make(map[int64]*model.Complaint),
		campus:     campus,
		category:   category,
		user:       user,
	}
}

// preload 模拟 Preload 关联
func (m *mockComplaintRepo) preload(c *model.Complaint) model.Complaint {
	cp := *c
	cp.Campus, cp.Category, cp.Coordinator, cp.Worker = nil, nil, nil, nil
	if v, ok := m.campus.campuses[c.CampusID]; ok {
		vv := *v
		cp.Campus = &vv
	}
	if v, ok := m.category.categories[c.CategoryID]; ok {
		vv := *v
		cp.Category = &vv
	}
	if c.CoordinatorID != nil {
		if v, ok := m.user.users[*c.CoordinatorID]; ok {
			vv := *v
			cp.Coordinator = &vv
		}
	}
	if c.WorkerID != nil {
		if v, ok := m.user.users[*c.WorkerID]; ok {
			vv := *v
			cp.Worker = &vv
		}
	}
	return cp
}

func (m *mockComplaintRepo) Create(_ context.Context, complaint *model.Complaint) error {
	m.creates++
	if m.conflicts != 0 {
		if m.conflicts > 0 {
			m.conflicts--
		}
		return pkgerrors.ErrConflict
	}
	for _, c := range m.complaints {
		if c.TicketCode == complaint.TicketCode {
			return pkgerrors.ErrConflict
		}
	}
	m.nextID++
	complaint.ID = m.nextID
	cp := *complaint
	m.complaints[cp.ID] = &cp
	return nil
}

func (m *mockComplaintRepo) GetByID(_ context.Context, id int64) (*model.Complaint, error) {
	if c, ok := m.complaints[id]; ok {
		cp := m.preload(c)
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockComplaintRepo) GetByTicketCode(_ context.Context, code string) (*model.Complaint, error) {
	for _, c := range m.complaints {
		if c.TicketCode == code {
			cp := m.preload(c)
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockComplaintRepo) Update(_ context.Context, complaint *model.Complaint) error {
	existing, ok := m.complaints[complaint.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	existing.Status = complaint.Status
	existing.InternalNotes = complaint.InternalNotes
	existing.WorkerID = complaint.WorkerID
	existing.CoordinatorID = complaint.CoordinatorID
	existing.UpdatedAt = complaint.UpdatedAt
	return nil
}

func (m *mockComplaintRepo) match(filter repository.ComplaintFilter) []model.Complaint {
	var result []model.Complaint
	for _, c := range m.complaints {
		if filter.CampusID != nil && c.CampusID != *filter.CampusID {
			continue
		}
		if filter.WorkerID != nil && (c.WorkerID == nil || *c.WorkerID != *filter.WorkerID) {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		result = append(result, m.preload(c))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result
}

func (m *mockComplaintRepo) List(_ context.Context, filter repository.ComplaintFilter, offset, limit int) ([]model.Complaint, int64, error) {
	result := m.match(filter)
	return paginate(result, offset, limit), int64(len(result)), nil
}

func (m *mockComplaintRepo) ListAll(_ context.Context, filter repository.ComplaintFilter) ([]model.Complaint, error) {
	return m.match(filter), nil
}

func (m *mockComplaintRepo) CountByStatus(_ context.Context, filter repository.ComplaintFilter) (map[model.Status]int64, error) {
	counts := make(map[model.Status]int64)
	for _, c := range m.match(filter) {
		counts[c.Status]++
	}
	return counts, nil
}

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	entries map[string]time.Duration
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{entries: make(map[string]time.Duration)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	m.entries[jti] = ttl
	return nil
}

// ── 测试辅助 ──

type mockRepos struct {
	campus    *mockCampusRepo
	category  *mockCategoryRepo
	user      *mockUserRepo
	complaint *mockComplaintRepo
}

// newMockRepository 组装 Repository；db 为 nil，事务退化为直接写入
func newMockRepository() (*repository.Repository, *mockRepos) {
	campus := newMockCampusRepo()
	category := newMockCategoryRepo()
	user := newMockUserRepo(campus)
	complaint := newMockComplaintRepo(campus, category, user)

	repo := &repository.Repository{
		Campus:    campus,
		Category:  category,
		User:      user,
		Complaint: complaint,
	}
	return repo, &mockRepos{campus: campus, category: category, user: user, complaint: complaint}
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
