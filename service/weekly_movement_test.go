package service

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerniceZTT/crm_reports/models"
)

func transition(id int64, year, week int, previous *string, current, amount string) models.EntityStageTransition {
	return models.EntityStageTransition{
		EntityID:      id,
		Year:          year,
		Week:          week,
		PreviousStage: previous,
		CurrentStage:  current,
		Amount:        models.AmountFromString(amount),
	}
}

func TestClassifyMovement(t *testing.T) {
	tests := []struct {
		name     string
		previous *string
		current  string
		want     MovementCategory
		unranked bool
	}{
		{"no previous stage", nil, "lead", MovementNewEntry, false},
		{"blank previous stage", strPtr("  "), "lead", MovementNewEntry, false},
		{"forward", strPtr("lead"), "proposal", MovementAdvance, false},
		{"to won", strPtr("negociacion"), "cierre_ganado", MovementAdvance, false},
		{"backward", strPtr("proposal"), "contacted", MovementRegression, false},
		{"to lost", strPtr("lead"), "lost", MovementRegression, false},
		{"same rank", strPtr("Lead"), "prospecto", MovementUnchanged, false},
		{"unknown previous", strPtr("mystery"), "won", MovementUnchanged, true},
		{"unknown current", strPtr("lead"), "mystery", MovementUnchanged, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, unranked := ClassifyMovement(tt.previous, tt.current)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.unranked, unranked)
		})
	}
}

func TestComputeWeeklyMovementConservation(t *testing.T) {
	transitions := []models.EntityStageTransition{
		transition(1, 2025, 10, nil, "lead", "100"),
		transition(2, 2025, 10, strPtr("lead"), "proposal", "200"),
		transition(3, 2025, 10, strPtr("proposal"), "lead", "50"),
		transition(4, 2025, 10, strPtr("proposal"), "proposal", "25"),
		transition(5, 2025, 10, strPtr("weird"), "won", "10"),
		transition(6, 2025, 9, strPtr("lead"), "won", "300"),
	}
	rows := ComputeWeeklyMovement(transitions, 0)

	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, r.EvaluatedCount, r.AdvanceCount+r.NewEntryCount+r.RegressionCount+r.UnchangedCount,
			"week %s", r.Key())
	}

	assert.Equal(t, models.WeekKey{Year: 2025, Week: 9}, rows[0].Key())
	week10 := rows[1]
	assert.Equal(t, 5, week10.EvaluatedCount)
	assert.Equal(t, 1, week10.NewEntryCount)
	assert.Equal(t, 1, week10.AdvanceCount)
	assert.Equal(t, 1, week10.RegressionCount)
	assert.Equal(t, 2, week10.UnchangedCount)
	assert.Equal(t, 1, week10.UnrankedCount)
	assert.True(t, week10.UnchangedAmount.Equal(dec("35")))
	assert.True(t, week10.Actual.Equal(dec("385")))
	assert.Equal(t, 1, UnrankedTotal(rows))
}

func TestComputeWeeklyMovementSkipsInvalidAndDedupes(t *testing.T) {
	transitions := []models.EntityStageTransition{
		transition(1, 2025, 3, nil, "lead", "10"),
		transition(1, 2025, 3, strPtr("lead"), "proposal", "40"),
		transition(2, 2025, 0, nil, "lead", "10"),
		transition(3, 2025, 3, nil, "  ", "10"),
		transition(0, 2025, 3, nil, "lead", "1"),
		transition(0, 2025, 3, nil, "lead", "1"),
	}
	rows := ComputeWeeklyMovement(transitions, 0)

	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].EvaluatedCount)
	assert.Equal(t, 1, rows[0].AdvanceCount, "同一实体同一周以最后一条为准")
	assert.Equal(t, 2, rows[0].NewEntryCount, "实体ID为0时不去重")
	assert.True(t, rows[0].AdvanceAmount.Equal(dec("40")))
}

func TestComputeWeeklyMovementWindow(t *testing.T) {
	var transitions []models.EntityStageTransition
	for week := 1; week <= 6; week++ {
		transitions = append(transitions, transition(int64(week), 2025, week, nil, "lead", "10"))
	}
	transitions = append(transitions, transition(99, 2024, 52, nil, "lead", "10"))

	rows := ComputeWeeklyMovement(transitions, 3)
	require.Len(t, rows, 3)
	assert.Equal(t, models.WeekKey{Year: 2025, Week: 4}, rows[0].Key())
	assert.Equal(t, models.WeekKey{Year: 2025, Week: 6}, rows[2].Key())
	assert.True(t, rows[2].CumulativeActual.Equal(dec("30")))

	all := ComputeWeeklyMovement(transitions, 0)
	require.Len(t, all, 7)
	assert.Equal(t, models.WeekKey{Year: 2024, Week: 52}, all[0].Key())
}

func TestApplyWeeklyOverrideTargetOnly(t *testing.T) {
	rows := ComputeWeeklyMovement([]models.EntityStageTransition{
		transition(1, 2025, 10, nil, "lead", "100"),
		transition(2, 2025, 10, strPtr("lead"), "won", "900"),
	}, 0)
	before := append([]models.WeeklyMovementRow(nil), rows...)

	target := decimal.NewFromInt(5000)
	updated := ApplyWeeklyOverride(rows, 2025, 10, &target, nil)

	require.Len(t, updated, 1)
	want := before[0]
	want.Target = target
	want.CumulativeTarget = target
	if diff := cmp.Diff(want, updated[0], decimalEqual); diff != "" {
		t.Fatalf("override changed more than target (-want +got):\n%s", diff)
	}
	assert.Nil(t, updated[0].RevenueOverride)

	if diff := cmp.Diff(before, rows, decimalEqual); diff != "" {
		t.Fatalf("input rows were modified:\n%s", diff)
	}
}

func TestApplyWeeklyOverrideCreatesMissingRow(t *testing.T) {
	rows := ComputeWeeklyMovement([]models.EntityStageTransition{
		transition(1, 2025, 8, nil, "lead", "100"),
		transition(2, 2025, 12, nil, "lead", "100"),
	}, 0)

	revenue := decimal.NewFromInt(750)
	updated := ApplyWeeklyOverride(rows, 2025, 10, nil, &revenue)

	require.Len(t, updated, 3)
	created := updated[1]
	assert.Equal(t, models.WeekKey{Year: 2025, Week: 10}, created.Key())
	assert.Equal(t, 0, created.EvaluatedCount)
	assert.True(t, created.Target.IsZero())
	require.NotNil(t, created.RevenueOverride)
	assert.True(t, created.Actual.Equal(revenue))
	assert.True(t, updated[2].CumulativeActual.Equal(dec("950")))

	assert.Len(t, ApplyWeeklyOverride(rows, 2025, 60, nil, &revenue), 2, "invalid week is ignored")
}

func TestBuildWeeklyReportMergesGoals(t *testing.T) {
	target := models.AmountFromString("1000")
	override := models.AmountFromString("50")
	goals := []models.WeeklyGoal{
		{Year: 2025, Week: 1, Target: &target},
		{Year: 2025, Week: 2, Target: &target, RevenueOverride: &override},
	}
	transitions := []models.EntityStageTransition{
		transition(1, 2025, 1, nil, "lead", "400"),
		transition(2, 2025, 2, nil, "lead", "600"),
	}

	rows := BuildWeeklyReport(transitions, goals, 0)

	require.Len(t, rows, 2)
	assert.True(t, rows[0].Actual.Equal(dec("400")))
	assert.True(t, rows[1].Actual.Equal(dec("50")))
	assert.True(t, rows[1].NewEntryAmount.Equal(dec("600")), "覆盖值不影响计算金额")
	assert.True(t, rows[1].CumulativeActual.Equal(dec("450")))
	assert.True(t, rows[1].CumulativeTarget.Equal(dec("2000")))
}
