package model

import "github.com/shopspring/decimal"

// MessageKind 激励信息类型
type MessageKind string

const (
	MessageSuccess  MessageKind = "success"
	MessagePositive MessageKind = "positive"
	MessageCaution  MessageKind = "caution"
	MessageAlert    MessageKind = "alert"
	MessageUrgent   MessageKind = "urgent"
)

// TierInfo 经销商分级结果
type TierInfo struct {
	Tier        string  `json:"tier"`
	TierKey     string  `json:"tierKey"`
	Color       string  `json:"color"`
	NextTier    *string `json:"nextTier"`
	NextTierKey *string `json:"nextTierKey"`

	// 全周期目标
	TierMaintainFloor decimal.Decimal  `json:"tierMaintainFloor"`
	TierUpgradeFloor  *decimal.Decimal `json:"tierUpgradeFloor"`

	// 当前周期目标（按代表性加权）
	CycleMaintainTarget decimal.Decimal  `json:"cycleMaintainTarget"`
	CycleUpgradeTarget  *decimal.Decimal `json:"cycleUpgradeTarget"`

	// 进度百分比 [0,100]
	ProgressMaintain decimal.Decimal `json:"progressMaintain"`
	ProgressUpgrade  decimal.Decimal `json:"progressUpgrade"`

	// 差额
	ShortfallMaintain decimal.Decimal  `json:"shortfallMaintain"`
	ShortfallUpgrade  *decimal.Decimal `json:"shortfallUpgrade"`

	AtRisk       bool    `json:"atRisk"`
	FallbackTier *string `json:"fallbackTier"`

	Message     string      `json:"message"`
	MessageKind MessageKind `json:"messageKind"`

	Total decimal.Decimal `json:"total"`
}
