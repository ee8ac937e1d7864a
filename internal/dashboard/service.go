// Package dashboard 组装区域看板与经销商详情
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"supervision/internal/aggregator"
	"supervision/internal/loader"
	"supervision/internal/logger"
	"supervision/internal/model"
	"supervision/internal/sector"
	"supervision/internal/segment"
	"supervision/internal/trace"
)

var (
	ErrNoData           = errors.New("no snapshot data available")
	ErrSectorNotFound   = errors.New("sector not found")
	ErrResellerNotFound = errors.New("reseller not found")
)

// SettingsProvider 业务配置来源
type SettingsProvider interface {
	GetSettings(ctx context.Context) (model.Settings, error)
}

// Service 看板服务
type Service struct {
	dataDir  string
	loader   *loader.Loader
	resolver sector.Resolver
	settings SettingsProvider
}

// NewService 创建看板服务
func NewService(dataDir string, l *loader.Loader, resolver sector.Resolver, settings SettingsProvider) *Service {
	if l == nil {
		l = loader.New(nil, nil)
	}
	if resolver == nil {
		resolver = sector.Default()
	}
	return &Service{
		dataDir:  dataDir,
		loader:   l,
		resolver: resolver,
		settings: settings,
	}
}

// DataDir 快照目录
func (s *Service) DataDir() string {
	return s.dataDir
}

// KPIs 看板指标
type KPIs struct {
	SectorTotal      decimal.Decimal `json:"sectorTotal"`
	ResellerCount    int             `json:"resellerCount"`
	CountNearUpgrade int             `json:"countNearUpgrade"` // 升级进度 >= 80
	CountAtRisk      int             `json:"countAtRisk"`      // 保级进度 < 风险阈值
}

// ResellerView 经销商汇总 + 分级
type ResellerView struct {
	model.ResellerAggregate
	Segmentation model.TierInfo `json:"segmentation"`
}

// View 区域看板
type View struct {
	SectorID          string             `json:"sectorId"`
	SectorLabel       string             `json:"sectorLabel"`
	ActiveSlot        model.Slot         `json:"activeSlot"`
	CurrentCycle      string             `json:"currentCycle"`
	Weights           map[string]float64 `json:"weights"`
	RiskPercent       int                `json:"riskPercent"`
	AccumulatedWeight float64            `json:"accumulatedWeight"`
	KPIs              KPIs               `json:"kpis"`
	Resellers         []ResellerView     `json:"resellers"`
	Comparison        *model.Comparison  `json:"comparison"`
}

// ResellerDetail 经销商详情
type ResellerDetail struct {
	ResellerView
	SectorID     string             `json:"sectorId"`
	CurrentCycle string             `json:"currentCycle"`
	Weights      map[string]float64 `json:"weights"`
}

var nearUpgrade = decimal.NewFromInt(80)

// Build 生成区域看板
func (s *Service) Build(ctx context.Context, sectorQuery string) (*View, error) {
	ctx, span := trace.StartSpan(ctx, "dashboard.Build", attribute.String("sector", sectorQuery))
	defer span.End()

	settings, agg, err := s.activeAggregate(ctx, sectorQuery)
	if err != nil {
		trace.RecordError(span, err)
		return nil, err
	}
	if len(agg.Resellers) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSectorNotFound, sectorQuery)
	}

	risk := decimal.NewFromInt(int64(settings.RiskPercent))
	view := &View{
		SectorID:          agg.SectorID,
		SectorLabel:       agg.SectorLabel,
		ActiveSlot:        settings.ActiveSlot,
		CurrentCycle:      settings.CurrentCycle,
		Weights:           settings.Weights,
		RiskPercent:       settings.RiskPercent,
		AccumulatedWeight: segment.AccumulatedWeight(settings.Weights, settings.CurrentCycle),
		Resellers:         make([]ResellerView, 0, len(agg.Resellers)),
	}
	view.KPIs.SectorTotal = agg.SectorTotal
	view.KPIs.ResellerCount = len(agg.Resellers)

	for _, r := range agg.Resellers {
		info := segment.Info(r.TotalAmount, settings.Weights, settings.CurrentCycle)
		if info.ProgressUpgrade.GreaterThanOrEqual(nearUpgrade) {
			view.KPIs.CountNearUpgrade++
		}
		if info.ProgressMaintain.LessThan(risk) {
			view.KPIs.CountAtRisk++
		}
		view.Resellers = append(view.Resellers, ResellerView{ResellerAggregate: r, Segmentation: info})
	}

	view.Comparison = s.compare(ctx, sectorQuery)

	span.SetAttributes(attribute.Int("resellers", len(view.Resellers)))
	return view, nil
}

// Reseller 经销商详情
func (s *Service) Reseller(ctx context.Context, sectorQuery, resellerCode string) (*ResellerDetail, error) {
	ctx, span := trace.StartSpan(ctx, "dashboard.Reseller",
		attribute.String("sector", sectorQuery),
		attribute.String("reseller", resellerCode),
	)
	defer span.End()

	settings, agg, err := s.activeAggregate(ctx, sectorQuery)
	if err != nil {
		trace.RecordError(span, err)
		return nil, err
	}

	r, ok := agg.FindReseller(strings.TrimSpace(resellerCode))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrResellerNotFound, resellerCode)
	}

	return &ResellerDetail{
		ResellerView: ResellerView{
			ResellerAggregate: r,
			Segmentation:      segment.Info(r.TotalAmount, settings.Weights, settings.CurrentCycle),
		},
		SectorID:     agg.SectorID,
		CurrentCycle: settings.CurrentCycle,
		Weights:      settings.Weights,
	}, nil
}

// activeAggregate 读取配置、加载当前时段快照并汇总
func (s *Service) activeAggregate(ctx context.Context, sectorQuery string) (model.Settings, *model.SectorAggregate, error) {
	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return model.Settings{}, nil, fmt.Errorf("failed to read settings: %w", err)
	}

	path, ok := SnapshotPath(s.dataDir, settings.ActiveSlot)
	if !ok {
		return settings, nil, fmt.Errorf("%w: slot %s", ErrNoData, settings.ActiveSlot)
	}
	records, err := s.loader.Load(ctx, path, settings.ActiveSlot)
	if errors.Is(err, loader.ErrSnapshotNotFound) {
		return settings, nil, fmt.Errorf("%w: %v", ErrNoData, err)
	}
	if err != nil {
		return settings, nil, err
	}

	agg := aggregator.Aggregate(records, sectorQuery, s.resolver)
	if agg == nil {
		return settings, nil, fmt.Errorf("%w: %s", ErrSectorNotFound, sectorQuery)
	}
	return settings, agg, nil
}

// compare 两个时段快照都存在时生成对比，失败只记日志
func (s *Service) compare(ctx context.Context, sectorQuery string) *model.Comparison {
	morningPath, ok := SnapshotPath(s.dataDir, model.SlotMorning)
	if !ok {
		return nil
	}
	afternoonPath, ok := SnapshotPath(s.dataDir, model.SlotAfternoon)
	if !ok {
		return nil
	}

	morning, err := s.loader.Load(ctx, morningPath, model.SlotMorning)
	if err == nil {
		var afternoon []model.Record
		afternoon, err = s.loader.Load(ctx, afternoonPath, model.SlotAfternoon)
		if err == nil {
			return aggregator.Compare(morning, afternoon, sectorQuery, s.resolver)
		}
	}
	logger.FromContext(ctx).Warn("snapshot comparison failed", zap.String("sector", sectorQuery), zap.Error(err))
	return nil
}
