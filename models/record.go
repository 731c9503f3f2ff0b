package models

import "time"

// RecordKind 记录来源类型
type RecordKind string

const (
	RecordKindDeal    RecordKind = "deal"
	RecordKindCompany RecordKind = "company"
)

// Record 报表统一使用的只读记录（商机或公司）
type Record struct {
	ID              int64      `json:"id"`
	Kind            RecordKind `json:"kind"`
	Name            string     `json:"name"`
	Amount          Amount     `json:"amount"`
	Stage           string     `json:"stage"`
	CloseDate       FlexTime   `json:"closeDate"`
	AdvisorID       int64      `json:"advisorId,omitempty"`
	AdvisorName     string     `json:"advisorName,omitempty"`
	Origin          string     `json:"origin,omitempty"`
	RecoveredClient bool       `json:"recoveredClient"`
	CreatedAt       FlexTime   `json:"createdAt"`
}

// Deal 商机文档
type Deal struct {
	ID              int64    `json:"id" bson:"_id"`
	Name            string   `json:"name" bson:"name"`
	Amount          Amount   `json:"amount" bson:"amount"`
	Stage           string   `json:"stage" bson:"stage"`
	CloseDate       FlexTime `json:"closeDate" bson:"closeDate"`
	AdvisorID       int64    `json:"advisorId" bson:"advisorId"`
	AdvisorName     string   `json:"advisorName" bson:"advisorName"`
	Origin          string   `json:"origin" bson:"origin"`
	RecoveredClient bool     `json:"recoveredClient" bson:"recoveredClient"`
	CreatedAt       FlexTime `json:"createdAt" bson:"createdAt"`
}

// ToRecord 转换为报表记录
func (d Deal) ToRecord() Record {
	return Record{
		ID:              d.ID,
		Kind:            RecordKindDeal,
		Name:            d.Name,
		Amount:          d.Amount,
		Stage:           d.Stage,
		CloseDate:       d.CloseDate,
		AdvisorID:       d.AdvisorID,
		AdvisorName:     d.AdvisorName,
		Origin:          d.Origin,
		RecoveredClient: d.RecoveredClient,
		CreatedAt:       d.CreatedAt,
	}
}

// Company 公司文档，金额字段为年营收
type Company struct {
	ID              int64    `json:"id" bson:"_id"`
	Name            string   `json:"name" bson:"name"`
	Revenue         Amount   `json:"revenue" bson:"revenue"`
	Stage           string   `json:"stage" bson:"stage"`
	ClosedAt        FlexTime `json:"closedAt" bson:"closedAt"`
	AdvisorID       int64    `json:"advisorId" bson:"advisorId"`
	AdvisorName     string   `json:"advisorName" bson:"advisorName"`
	Origin          string   `json:"origin" bson:"origin"`
	RecoveredClient bool     `json:"recoveredClient" bson:"recoveredClient"`
	CreatedAt       FlexTime `json:"createdAt" bson:"createdAt"`
}

// ToRecord 转换为报表记录
func (c Company) ToRecord() Record {
	return Record{
		ID:              c.ID,
		Kind:            RecordKindCompany,
		Name:            c.Name,
		Amount:          c.Revenue,
		Stage:           c.Stage,
		CloseDate:       c.ClosedAt,
		AdvisorID:       c.AdvisorID,
		AdvisorName:     c.AdvisorName,
		Origin:          c.Origin,
		RecoveredClient: c.RecoveredClient,
		CreatedAt:       c.CreatedAt,
	}
}

// RecordFilter 由存储层执行的预过滤条件，核心计算不感知
type RecordFilter struct {
	AdvisorID *int64     `json:"advisorId,omitempty"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	Origin    string     `json:"origin,omitempty"`
	Recovered *bool      `json:"recovered,omitempty"`
}

// Matches 判断记录是否满足预过滤条件（内存存储使用）
func (f RecordFilter) Matches(r Record) bool {
	if f.AdvisorID != nil && r.AdvisorID != *f.AdvisorID {
		return false
	}
	if f.Origin != "" && r.Origin != f.Origin {
		return false
	}
	if f.Recovered != nil && r.RecoveredClient != *f.Recovered {
		return false
	}
	if f.StartDate != nil && (!r.CreatedAt.Valid || r.CreatedAt.Time.Before(*f.StartDate)) {
		return false
	}
	if f.EndDate != nil && (!r.CreatedAt.Valid || r.CreatedAt.Time.After(*f.EndDate)) {
		return false
	}
	return true
}
