package model

import (
	"fmt"
	"strings"
)

// Slot 快照时段
type Slot string

const (
	SlotMorning   Slot = "morning"   // 上午快照
	SlotAfternoon Slot = "afternoon" // 下午快照
)

// Slots 全部时段（固定顺序）
func Slots() []Slot {
	return []Slot{SlotMorning, SlotAfternoon}
}

// ParseSlot 解析时段名称，兼容旧的 manha/tarde 写法
func ParseSlot(s string) (Slot, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "morning", "manha", "manhã":
		return SlotMorning, nil
	case "afternoon", "tarde":
		return SlotAfternoon, nil
	}
	return "", fmt.Errorf("invalid slot %q (use morning or afternoon)", s)
}

// Settings 运行时业务配置（由外部维护，核心只读取）
type Settings struct {
	CurrentCycle string             `json:"currentCycle"` // 当前周期，如 01/2026
	ActiveSlot   Slot               `json:"activeSlot"`   // 当前展示的快照时段
	Weights      map[string]float64 `json:"weights"`      // 周期 -> 代表性百分比（合计应为 100）
	RiskPercent  int                `json:"riskPercent"`  // 风险阈值（保级进度低于该值计入风险）
}

// Clone 深拷贝
func (s Settings) Clone() Settings {
	out := s
	out.Weights = make(map[string]float64, len(s.Weights))
	for k, v := range s.Weights {
		out.Weights[k] = v
	}
	return out
}

// ValidateSettings 校验配置，返回问题列表
func ValidateSettings(s Settings) []string {
	errs := make([]string, 0, 4)

	if strings.TrimSpace(s.CurrentCycle) == "" {
		errs = append(errs, "current cycle must not be empty")
	}
	if _, err := ParseSlot(string(s.ActiveSlot)); err != nil {
		errs = append(errs, err.Error())
	}
	if s.RiskPercent < 0 || s.RiskPercent > 100 {
		errs = append(errs, "risk percent must be between 0 and 100")
	}
	for cycle, w := range s.Weights {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("weight for cycle %s must not be negative", cycle))
		}
	}

	return errs
}

// SettingsPatch 局部更新（nil 字段保持不变；Weights 非 nil 时整体替换）
type SettingsPatch struct {
	CurrentCycle *string            `json:"currentCycle"`
	ActiveSlot   *string            `json:"activeSlot"`
	Weights      map[string]float64 `json:"weights"`
	RiskPercent  *int               `json:"riskPercent"`
}

// Apply 在 s 的副本上应用更新；时段名称会被规范化
func (p SettingsPatch) Apply(s Settings) Settings {
	out := s.Clone()
	if p.CurrentCycle != nil {
		out.CurrentCycle = strings.TrimSpace(*p.CurrentCycle)
	}
	if p.ActiveSlot != nil {
		if slot, err := ParseSlot(*p.ActiveSlot); err == nil {
			out.ActiveSlot = slot
		} else {
			out.ActiveSlot = Slot(*p.ActiveSlot)
		}
	}
	if p.Weights != nil {
		out.Weights = make(map[string]float64, len(p.Weights))
		for k, v := range p.Weights {
			out.Weights[strings.TrimSpace(k)] = v
		}
	}
	if p.RiskPercent != nil {
		out.RiskPercent = *p.RiskPercent
	}
	return out
}

// ValidationError 配置校验失败
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid settings: " + strings.Join(e.Problems, "; ")
}
