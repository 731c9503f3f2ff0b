package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/BerniceZTT/crm_reports/models"
)

// Seed 内存存储的初始数据，也是 reportctl 读取的导出格式
type Seed struct {
	Deals       []models.Deal                  `json:"deals"`
	Companies   []models.Company               `json:"companies"`
	Transitions []models.EntityStageTransition `json:"transitions"`
	Goals       []models.WeeklyGoal            `json:"goals"`
}

// LoadSeed 从 JSON 文件读取初始数据
func LoadSeed(path string) (Seed, error) {
	var seed Seed
	data, err := os.ReadFile(path)
	if err != nil {
		return seed, fmt.Errorf("读取数据文件失败: %w", err)
	}
	if err := json.Unmarshal(data, &seed); err != nil {
		return seed, fmt.Errorf("解析数据文件失败: %w", err)
	}
	return seed, nil
}

// MemoryStore 进程内 Store 实现，用于测试和 memory 后端
type MemoryStore struct {
	mu          sync.RWMutex
	deals       []models.Record
	companies   []models.Record
	transitions []models.EntityStageTransition
	goals       map[models.WeekKey]models.WeeklyGoal
	logs        []models.OperationLog
	now         func() time.Time
}

// NewMemoryStore 创建内存存储
func NewMemoryStore(seed Seed) *MemoryStore {
	s := &MemoryStore{
		goals: make(map[models.WeekKey]models.WeeklyGoal),
		now:   time.Now,
	}
	for _, d := range seed.Deals {
		s.deals = append(s.deals, d.ToRecord())
	}
	for _, c := range seed.Companies {
		s.companies = append(s.companies, c.ToRecord())
	}
	s.transitions = append(s.transitions, seed.Transitions...)
	for _, g := range seed.Goals {
		if g.Key().Valid() {
			s.goals[g.Key()] = g
		}
	}
	return s
}

// ListDeals 查询商机
func (s *MemoryStore) ListDeals(ctx context.Context, filter models.RecordFilter) ([]models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterRecords(s.deals, filter), ctx.Err()
}

// ListCompanies 查询公司
func (s *MemoryStore) ListCompanies(ctx context.Context, filter models.RecordFilter) ([]models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterRecords(s.companies, filter), ctx.Err()
}

func filterRecords(records []models.Record, filter models.RecordFilter) []models.Record {
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if filter.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// ListStageTransitions 查询周范围内的阶段变动
func (s *MemoryStore) ListStageTransitions(ctx context.Context, r models.WeekRange) ([]models.EntityStageTransition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.EntityStageTransition, 0, len(s.transitions))
	for _, t := range s.transitions {
		if r.Contains(t.Key()) {
			out = append(out, t)
		}
	}
	return out, ctx.Err()
}

// ListWeeklyGoals 查询周范围内的周目标，按年周升序
func (s *MemoryStore) ListWeeklyGoals(ctx context.Context, r models.WeekRange) ([]models.WeeklyGoal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.WeeklyGoal, 0, len(s.goals))
	for k, g := range s.goals {
		if r.Contains(k) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key().Less(out[j].Key()) })
	return out, ctx.Err()
}

// UpsertWeeklyGoal 按 (年, 周) 合并写入
func (s *MemoryStore) UpsertWeeklyGoal(ctx context.Context, goal models.WeeklyGoal) (models.WeeklyGoal, error) {
	if err := ctx.Err(); err != nil {
		return models.WeeklyGoal{}, err
	}
	if !goal.Key().Valid() {
		return models.WeeklyGoal{}, ErrInvalidWeek
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	saved, ok := s.goals[goal.Key()]
	if !ok {
		saved = models.WeeklyGoal{Year: goal.Year, Week: goal.Week}
	}
	if goal.Target != nil {
		v := *goal.Target
		saved.Target = &v
	}
	if goal.RevenueOverride != nil {
		v := *goal.RevenueOverride
		saved.RevenueOverride = &v
	}
	saved.UpdatedAt = goal.UpdatedAt
	if saved.UpdatedAt.IsZero() {
		saved.UpdatedAt = s.now()
	}
	s.goals[goal.Key()] = saved
	return saved, nil
}

// SaveOperationLog 记录操作日志
func (s *MemoryStore) SaveOperationLog(ctx context.Context, log models.OperationLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, log)
	return ctx.Err()
}

// OperationLogs 返回已记录的操作日志副本
func (s *MemoryStore) OperationLogs() []models.OperationLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.OperationLog(nil), s.logs...)
}

// Status 返回各集合的数据量
func (s *MemoryStore) Status(ctx context.Context) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := map[string]int{
		DealsCollection:            len(s.deals),
		CompaniesCollection:        len(s.companies),
		TransitionsCollection:      len(s.transitions),
		WeeklyGoalsCollection:      len(s.goals),
		ApiOperationLogsCollection: len(s.logs),
	}
	collections := make(map[string]interface{}, len(counts))
	for name, n := range counts {
		collections[name] = map[string]interface{}{"count": n}
	}
	return map[string]interface{}{
		"backend":     "memory",
		"collections": collections,
	}, ctx.Err()
}

// Close 内存存储无需释放资源
func (s *MemoryStore) Close(context.Context) error {
	return nil
}
