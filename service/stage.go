package service

import (
	"strings"

	"github.com/BerniceZTT/crm_reports/models"
)

// Stage 规范化后的销售阶段
type Stage int

const (
	StageUnknown   Stage = iota // 未识别，保留原始字符串
	StageUnlabeled              // 阶段为空
	StageLead
	StageContacted
	StageProposal
	StageNegotiation
	StageWon
	StageLost
)

// 未填写阶段的固定分桶
const (
	UnlabeledKey   = "unlabeled"
	UnlabeledLabel = "Unlabeled"
)

var stageKeys = map[Stage]string{
	StageUnlabeled:   UnlabeledKey,
	StageLead:        "lead",
	StageContacted:   "contacted",
	StageProposal:    "proposal",
	StageNegotiation: "negotiation",
	StageWon:         "won",
	StageLost:        "lost",
}

var stageLabels = map[Stage]string{
	StageUnlabeled:   UnlabeledLabel,
	StageLead:        "Lead",
	StageContacted:   "Contacted",
	StageProposal:    "Proposal",
	StageNegotiation: "Negotiation",
	StageWon:         "Won",
	StageLost:        "Lost",
}

// stageSynonyms 同义词表，键为 trim + 小写后的值
var stageSynonyms = map[string]Stage{
	"won":           StageWon,
	"closed won":    StageWon,
	"closed_won":    StageWon,
	"cierre_ganado": StageWon,
	"ganado":        StageWon,

	"lost":           StageLost,
	"closed lost":    StageLost,
	"closed_lost":    StageLost,
	"cierre_perdido": StageLost,
	"perdido":        StageLost,

	"lead":      StageLead,
	"prospecto": StageLead,
	"prospect":  StageLead,
	"nuevo":     StageLead,

	"contacted":        StageContacted,
	"contactado":       StageContacted,
	"contacto_inicial": StageContacted,

	"proposal":   StageProposal,
	"propuesta":  StageProposal,
	"cotizacion": StageProposal,
	"cotización": StageProposal,
	"quote":      StageProposal,

	"negotiation":    StageNegotiation,
	"negociacion":    StageNegotiation,
	"negociación":    StageNegotiation,
	"en_negociacion": StageNegotiation,
}

// stageRanks 周变动使用的阶段顺序，未列出的阶段无排名
var stageRanks = map[Stage]int{
	StageLost:        0,
	StageLead:        1,
	StageContacted:   2,
	StageProposal:    3,
	StageNegotiation: 4,
	StageWon:         5,
}

// StageClassification 阶段归类结果
type StageClassification struct {
	Stage Stage
	Group models.StageGroup
	Key   string // 聚合用的分桶键
	Label string
}

// Rank 阶段排名，ok 为 false 表示阶段不在排序表中
func (s StageClassification) Rank() (int, bool) {
	r, ok := stageRanks[s.Stage]
	return r, ok
}

// NormalizeStage 阶段比较前统一 trim + 小写
func NormalizeStage(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// ClassifyStage 将原始阶段映射为 won/lost/other 与展示名称
//
// 未识别的阶段归入 other，标签保留原始输入；空值归入固定的 unlabeled 分桶。
func ClassifyStage(raw string) StageClassification {
	key := NormalizeStage(raw)
	if key == "" {
		return newClassification(StageUnlabeled)
	}
	if stage, ok := stageSynonyms[key]; ok {
		return newClassification(stage)
	}
	return StageClassification{
		Stage: StageUnknown,
		Group: models.StageGroupOther,
		Key:   key,
		Label: raw,
	}
}

// ClassifyStagePtr 可空阶段的归类，nil 走空值分支
func ClassifyStagePtr(raw *string) StageClassification {
	if raw == nil {
		return newClassification(StageUnlabeled)
	}
	return ClassifyStage(*raw)
}

func newClassification(stage Stage) StageClassification {
	group := models.StageGroupOther
	switch stage {
	case StageWon:
		group = models.StageGroupWon
	case StageLost:
		group = models.StageGroupLost
	}
	return StageClassification{
		Stage: stage,
		Group: group,
		Key:   stageKeys[stage],
		Label: stageLabels[stage],
	}
}
