package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BerniceZTT/crm_reports/models"
)

func TestClassifyStageSynonyms(t *testing.T) {
	tests := []struct {
		raw   string
		stage Stage
		group models.StageGroup
		key   string
	}{
		{"won", StageWon, models.StageGroupWon, "won"},
		{"  Closed Won ", StageWon, models.StageGroupWon, "won"},
		{"CIERRE_GANADO", StageWon, models.StageGroupWon, "won"},
		{"perdido", StageLost, models.StageGroupLost, "lost"},
		{"closed_lost", StageLost, models.StageGroupLost, "lost"},
		{"prospecto", StageLead, models.StageGroupOther, "lead"},
		{"Contactado", StageContacted, models.StageGroupOther, "contacted"},
		{"cotización", StageProposal, models.StageGroupOther, "proposal"},
		{"en_negociacion", StageNegotiation, models.StageGroupOther, "negotiation"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			c := ClassifyStage(tt.raw)
			assert.Equal(t, tt.stage, c.Stage)
			assert.Equal(t, tt.group, c.Group)
			assert.Equal(t, tt.key, c.Key)
		})
	}
}

func TestClassifyStageUnknownKeepsRawLabel(t *testing.T) {
	c := ClassifyStage("Demo Agendada")
	assert.Equal(t, StageUnknown, c.Stage)
	assert.Equal(t, models.StageGroupOther, c.Group)
	assert.Equal(t, "demo agendada", c.Key)
	assert.Equal(t, "Demo Agendada", c.Label)

	_, ranked := c.Rank()
	assert.False(t, ranked)
}

func TestClassifyStageBlank(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t"} {
		c := ClassifyStage(raw)
		assert.Equal(t, StageUnlabeled, c.Stage)
		assert.Equal(t, UnlabeledKey, c.Key)
		assert.Equal(t, UnlabeledLabel, c.Label)
	}
	assert.Equal(t, StageUnlabeled, ClassifyStagePtr(nil).Stage)
	assert.Equal(t, StageWon, ClassifyStagePtr(strPtr("Won")).Stage)
}

func TestStageRanks(t *testing.T) {
	order := []string{"lost", "lead", "contacted", "proposal", "negotiation", "won"}
	for i, raw := range order {
		r, ok := ClassifyStage(raw).Rank()
		assert.True(t, ok, raw)
		assert.Equal(t, i, r, raw)
	}
	_, ok := ClassifyStage("").Rank()
	assert.False(t, ok)
}
