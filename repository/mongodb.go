package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BerniceZTT/crm_reports/models"
	"github.com/BerniceZTT/crm_reports/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultRetries = 3

// MongoStore 基于 MongoDB 的 Store 实现
type MongoStore struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
}

// InitMongoDB 初始化MongoDB连接
func InitMongoDB(ctx context.Context, uri, dbName string, timeout time.Duration) (*MongoStore, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	// 设置连接超时
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("连接MongoDB失败: %w", err)
	}

	// 检查连接
	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping MongoDB失败: %w", err)
	}

	utils.Logger.Info().Str("database", dbName).Msg("已连接到MongoDB")
	return &MongoStore{client: client, db: client.Database(dbName), timeout: timeout}, nil
}

// InitializeCollections 初始化数据库集合与索引
func (s *MongoStore) InitializeCollections(ctx context.Context) error {
	existing, err := s.db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("检查集合失败: %w", err)
	}
	exists := make(map[string]bool, len(existing))
	for _, name := range existing {
		exists[name] = true
	}

	for _, collName := range AllCollections {
		if exists[collName] {
			utils.Logger.Debug().Str("collection", collName).Msg("集合已存在")
			continue
		}
		if err := s.db.CreateCollection(ctx, collName); err != nil {
			return fmt.Errorf("创建集合失败: %w", err)
		}
		utils.Logger.Info().Str("collection", collName).Msg("创建集合成功")
	}

	// 每周一条目标，每个实体每周一条变动
	indexes := map[string]mongo.IndexModel{
		WeeklyGoalsCollection: {
			Keys:    bson.D{{Key: "year", Value: 1}, {Key: "week", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		TransitionsCollection: {
			Keys: bson.D{{Key: "year", Value: 1}, {Key: "week", Value: 1}, {Key: "entityId", Value: 1}},
		},
	}
	for collName, model := range indexes {
		if _, err := s.db.Collection(collName).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("创建索引失败 (%s): %w", collName, err)
		}
	}
	return nil
}

// Close 关闭MongoDB连接
func (s *MongoStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Disconnect(ctx); err != nil {
		utils.Logger.Error().Err(err).Msg("断开MongoDB连接失败")
		return err
	}
	utils.Logger.Info().Msg("已断开MongoDB连接")
	return nil
}

// ListDeals 查询商机
func (s *MongoStore) ListDeals(ctx context.Context, filter models.RecordFilter) ([]models.Record, error) {
	query := recordQuery(filter)
	deals, err := executeDbOperation(ctx, func(ctx context.Context) ([]models.Deal, error) {
		var out []models.Deal
		err := s.findAll(ctx, DealsCollection, query, &out)
		return out, err
	}, defaultRetries)
	if err != nil {
		return nil, fmt.Errorf("查询商机失败: %w", err)
	}
	utils.LogDbOperation("find", DealsCollection, query, len(deals))

	records := make([]models.Record, 0, len(deals))
	for _, d := range deals {
		records = append(records, d.ToRecord())
	}
	return records, nil
}

// ListCompanies 查询公司
func (s *MongoStore) ListCompanies(ctx context.Context, filter models.RecordFilter) ([]models.Record, error) {
	query := recordQuery(filter)
	companies, err := executeDbOperation(ctx, func(ctx context.Context) ([]models.Company, error) {
		var out []models.Company
		err := s.findAll(ctx, CompaniesCollection, query, &out)
		return out, err
	}, defaultRetries)
	if err != nil {
		return nil, fmt.Errorf("查询公司失败: %w", err)
	}
	utils.LogDbOperation("find", CompaniesCollection, query, len(companies))

	records := make([]models.Record, 0, len(companies))
	for _, c := range companies {
		records = append(records, c.ToRecord())
	}
	return records, nil
}

// ListStageTransitions 查询周范围内的阶段变动
func (s *MongoStore) ListStageTransitions(ctx context.Context, r models.WeekRange) ([]models.EntityStageTransition, error) {
	query := weekRangeQuery(r)
	transitions, err := executeDbOperation(ctx, func(ctx context.Context) ([]models.EntityStageTransition, error) {
		var out []models.EntityStageTransition
		err := s.findAll(ctx, TransitionsCollection, query, &out)
		return out, err
	}, defaultRetries)
	if err != nil {
		return nil, fmt.Errorf("查询阶段变动失败: %w", err)
	}
	utils.LogDbOperation("find", TransitionsCollection, query, len(transitions))
	return transitions, nil
}

// ListWeeklyGoals 查询周范围内的周目标
func (s *MongoStore) ListWeeklyGoals(ctx context.Context, r models.WeekRange) ([]models.WeeklyGoal, error) {
	query := weekRangeQuery(r)
	goals, err := executeDbOperation(ctx, func(ctx context.Context) ([]models.WeeklyGoal, error) {
		var out []models.WeeklyGoal
		err := s.findAll(ctx, WeeklyGoalsCollection, query, &out)
		return out, err
	}, defaultRetries)
	if err != nil {
		return nil, fmt.Errorf("查询周目标失败: %w", err)
	}
	utils.LogDbOperation("find", WeeklyGoalsCollection, query, len(goals))
	return goals, nil
}

// UpsertWeeklyGoal 按 (年, 周) 写入周目标
func (s *MongoStore) UpsertWeeklyGoal(ctx context.Context, goal models.WeeklyGoal) (models.WeeklyGoal, error) {
	if !goal.Key().Valid() {
		return models.WeeklyGoal{}, ErrInvalidWeek
	}
	if goal.UpdatedAt.IsZero() {
		goal.UpdatedAt = time.Now()
	}

	set := bson.M{"updatedAt": goal.UpdatedAt}
	if goal.Target != nil {
		set["target"] = goal.Target
	}
	if goal.RevenueOverride != nil {
		set["revenueOverride"] = goal.RevenueOverride
	}
	filter := bson.M{"year": goal.Year, "week": goal.Week}
	update := bson.M{"$set": set}

	saved, err := executeDbOperation(ctx, func(ctx context.Context) (models.WeeklyGoal, error) {
		opCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		var out models.WeeklyGoal
		opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
		err := s.db.Collection(WeeklyGoalsCollection).FindOneAndUpdate(opCtx, filter, update, opts).Decode(&out)
		return out, err
	}, defaultRetries)
	if err != nil {
		return models.WeeklyGoal{}, fmt.Errorf("保存周目标失败: %w", err)
	}
	utils.LogDbOperation("upsert", WeeklyGoalsCollection, filter, 1)
	return saved, nil
}

// SaveOperationLog 写入操作日志，不重试
func (s *MongoStore) SaveOperationLog(ctx context.Context, log models.OperationLog) error {
	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.db.Collection(ApiOperationLogsCollection).InsertOne(opCtx, log); err != nil {
		return fmt.Errorf("保存操作日志失败: %w", err)
	}
	return nil
}

// Status 获取数据库状态
func (s *MongoStore) Status(ctx context.Context) (map[string]interface{}, error) {
	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.Ping(opCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping MongoDB失败: %w", err)
	}

	collections := make(map[string]interface{}, len(AllCollections))
	for _, collName := range AllCollections {
		count, err := s.db.Collection(collName).CountDocuments(opCtx, bson.M{})
		if err != nil {
			utils.Logger.Error().Err(err).Str("collection", collName).Msg("获取集合计数失败")
			collections[collName] = map[string]interface{}{"count": 0, "error": err.Error()}
			continue
		}
		collections[collName] = map[string]interface{}{"count": count}
	}

	return map[string]interface{}{
		"backend":     "mongo",
		"database":    s.db.Name(),
		"collections": collections,
	}, nil
}

func (s *MongoStore) findAll(ctx context.Context, collName string, query bson.M, out interface{}) error {
	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.db.Collection(collName).Find(opCtx, query, opts)
	if err != nil {
		return err
	}
	return cursor.All(opCtx, out)
}

// recordQuery 将预过滤条件转换为查询语句
func recordQuery(f models.RecordFilter) bson.M {
	query := bson.M{}
	if f.AdvisorID != nil {
		query["advisorId"] = *f.AdvisorID
	}
	if f.Origin != "" {
		query["origin"] = f.Origin
	}
	if f.Recovered != nil {
		query["recoveredClient"] = *f.Recovered
	}
	if f.StartDate != nil || f.EndDate != nil {
		dateQuery := bson.M{}
		if f.StartDate != nil {
			dateQuery["$gte"] = *f.StartDate
		}
		if f.EndDate != nil {
			dateQuery["$lte"] = *f.EndDate
		}
		query["createdAt"] = dateQuery
	}
	return query
}

// weekRangeQuery 将闭区间周范围转换为 (year, week) 比较
func weekRangeQuery(r models.WeekRange) bson.M {
	var clauses []bson.M
	if r.From != nil {
		clauses = append(clauses, bson.M{"$or": []bson.M{
			{"year": bson.M{"$gt": r.From.Year}},
			{"year": r.From.Year, "week": bson.M{"$gte": r.From.Week}},
		}})
	}
	if r.To != nil {
		clauses = append(clauses, bson.M{"$or": []bson.M{
			{"year": bson.M{"$lt": r.To.Year}},
			{"year": r.To.Year, "week": bson.M{"$lte": r.To.Week}},
		}})
	}
	if len(clauses) == 0 {
		return bson.M{}
	}
	return bson.M{"$and": clauses}
}

// executeDbOperation 执行数据库操作，提供错误处理和重试机制
func executeDbOperation[T any](ctx context.Context, operation func(ctx context.Context) (T, error), retries int) (T, error) {
	if retries <= 0 {
		retries = defaultRetries
	}

	var zero T
	var lastErr error
	for i := 0; i < retries; i++ {
		result, err := operation(ctx)
		if err == nil {
			return result, nil
		}

		lastErr = err
		utils.Logger.Error().Err(err).Msgf("数据库操作失败，重试 (%d/%d)", i+1, retries)

		// 如果是不可重试的错误，立即返回
		if !isRetryableError(err) {
			break
		}

		// 延迟后重试
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(time.Duration(500*(i+1)) * time.Millisecond):
		}
	}

	return zero, lastErr
}

// MongoDB可重试错误代码
var retryableCodes = map[int32]bool{
	6:     true, // HostUnreachable
	7:     true, // HostNotFound
	89:    true, // NetworkTimeout
	91:    true, // ShutdownInProgress
	189:   true, // PrimarySteppedDown
	10107: true, // NotMaster
	13436: true, // NotMasterNoSlaveOk
	11600: true, // InterruptedAtShutdown
	11602: true, // InterruptedDueToReplStateChange
	10058: true, // ConnectionReset
}

// isRetryableError 判断错误是否可重试
func isRetryableError(err error) bool {
	if err == nil || errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, context.Canceled) {
		return false
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return retryableCodes[cmdErr.Code]
	}

	// 检查常见网络错误
	return isNetworkError(err)
}

var networkErrors = []string{
	"connection refused",
	"connection reset",
	"connection closed",
	"no reachable servers",
	"timeout",
	"context deadline exceeded",
	"server selection error",
}

// isNetworkError 检查是否是网络错误
func isNetworkError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, ne := range networkErrors {
		if strings.Contains(msg, ne) {
			return true
		}
	}
	return false
}
