package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/BerniceZTT/crm_reports/models"
)

func TestRecordQuery(t *testing.T) {
	assert.Equal(t, bson.M{}, recordQuery(models.RecordFilter{}))

	advisor := int64(7)
	recovered := false
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	q := recordQuery(models.RecordFilter{
		AdvisorID: &advisor,
		Origin:    "web",
		Recovered: &recovered,
		StartDate: &start,
	})

	assert.Equal(t, int64(7), q["advisorId"])
	assert.Equal(t, "web", q["origin"])
	assert.Equal(t, false, q["recoveredClient"])
	assert.Equal(t, bson.M{"$gte": start}, q["createdAt"])
}

func TestWeekRangeQuery(t *testing.T) {
	assert.Equal(t, bson.M{}, weekRangeQuery(models.WeekRange{}))

	from := models.WeekKey{Year: 2024, Week: 50}
	to := models.WeekKey{Year: 2025, Week: 3}
	q := weekRangeQuery(models.WeekRange{From: &from, To: &to})

	want := bson.M{"$and": []bson.M{
		{"$or": []bson.M{
			{"year": bson.M{"$gt": 2024}},
			{"year": 2024, "week": bson.M{"$gte": 50}},
		}},
		{"$or": []bson.M{
			{"year": bson.M{"$lt": 2025}},
			{"year": 2025, "week": bson.M{"$lte": 3}},
		}},
	}}
	assert.Equal(t, want, q)
}

func TestIsRetryableError(t *testing.T) {
	assert.False(t, isRetryableError(nil))
	assert.False(t, isRetryableError(mongo.ErrNoDocuments))
	assert.False(t, isRetryableError(context.Canceled))
	assert.False(t, isRetryableError(errors.New("duplicate key")))

	assert.True(t, isRetryableError(mongo.CommandError{Code: 189, Message: "primary stepped down"}))
	assert.False(t, isRetryableError(mongo.CommandError{Code: 11000, Message: "dup"}))
	assert.True(t, isRetryableError(fmt.Errorf("查询失败: %w", errors.New("server selection error: Connection Refused"))))
}

func TestExecuteDbOperationRetries(t *testing.T) {
	calls := 0
	out, err := executeDbOperation(context.Background(), func(context.Context) (int, error) {
		calls++
		if calls < 2 {
			return 0, errors.New("connection reset by peer")
		}
		return 42, nil
	}, 3)

	require.NoError(t, err)
	assert.Equal(t, 42, out)
	assert.Equal(t, 2, calls)
}

func TestExecuteDbOperationStopsOnPermanentError(t *testing.T) {
	calls := 0
	permanent := errors.New("invalid query")
	_, err := executeDbOperation(context.Background(), func(context.Context) (string, error) {
		calls++
		return "", permanent
	}, 3)

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestExecuteDbOperationHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := executeDbOperation(ctx, func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, errors.New("timeout")
	}, 3)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
