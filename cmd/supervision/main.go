package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"supervision/internal/aggregator"
	"supervision/internal/config"
	"supervision/internal/loader"
	"supervision/internal/logger"
	"supervision/internal/model"
	"supervision/internal/parser"
	"supervision/internal/segment"
	"supervision/internal/server"
	"supervision/internal/trace"
	"supervision/internal/watcher"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "supervision",
		Short:         "supervision - sector sales snapshots, reseller tiers and daily progress",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env 可选
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load .env: %w", err)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config.toml 路径（默认与可执行文件同目录）")

	root.AddCommand(newServeCmd(opts), newInspectCmd(opts), newCompareCmd(opts))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		port    int
		devMode bool
		dataDir string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, info, err := config.LoadConfigWithInfo(opts.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			// 命令行参数覆盖配置（port 仅在配置未显式指定时生效）
			if port > 0 && !info.PortSpecified {
				cfg.Server.Port = port
			}
			if devMode {
				cfg.Server.DevMode = true
			}
			if dataDir != "" {
				cfg.Data.DataDir = dataDir
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	cmd.Flags().BoolVar(&devMode, "dev", false, "开发模式")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "数据目录 (覆盖配置文件)")
	return cmd
}

func runServe(ctx context.Context, cfg *config.AppConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}); err != nil {
		return err
	}
	defer logger.Sync()

	if err := trace.Init(cfg.Log.Tracing); err != nil {
		logger.L().Warn("tracing disabled", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = trace.Shutdown(shutdownCtx)
	}()

	srv, err := server.NewServer(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := watcher.New(srv.DataDir(), srv.Loader(), watcher.DefaultDebounce)
	if err := w.Start(ctx); err != nil {
		logger.L().Warn("snapshot watcher disabled", zap.Error(err))
	}
	defer w.Close()

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("server listening",
			zap.String("addr", srv.Addr()),
			zap.String("data_dir", srv.DataDir()),
			zap.Bool("dev_mode", cfg.Server.DevMode),
		)
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// inspectOutput inspect 命令输出
type inspectOutput struct {
	File              string                    `json:"file"`
	Report            *parser.LoadReport        `json:"report"`
	Records           int                       `json:"records"`
	Sector            *model.SectorAggregate    `json:"sector,omitempty"`
	CurrentCycle      string                    `json:"currentCycle,omitempty"`
	AccumulatedWeight float64                   `json:"accumulatedWeight,omitempty"`
	Segmentation      map[string]model.TierInfo `json:"segmentation,omitempty"` // 经销商代码 -> 分级
}

func newInspectCmd(opts *rootOptions) *cobra.Command {
	var sectorQuery, cycle string
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Parse a snapshot file and print the load report and sector segmentation as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(opts.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			settings := cfg.Settings()
			if cycle != "" {
				settings.CurrentCycle = cycle
			}
			out, err := inspect(args[0], sectorQuery, settings)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&sectorQuery, "sector", "", "区域代码或名称")
	cmd.Flags().StringVar(&cycle, "cycle", "", "当前周期（覆盖配置）")
	return cmd
}

func inspect(path, sectorQuery string, settings model.Settings) (*inspectOutput, error) {
	records, report, err := loader.New(nil, nil).ParseFile(path)
	if err != nil {
		return nil, err
	}

	out := &inspectOutput{File: path, Report: report, Records: len(records)}
	if sectorQuery == "" {
		return out, nil
	}

	agg := aggregator.Aggregate(records, sectorQuery, nil)
	if agg == nil {
		return nil, fmt.Errorf("sector %q not found in %s", sectorQuery, path)
	}
	out.Sector = agg
	out.CurrentCycle = settings.CurrentCycle
	out.AccumulatedWeight = segment.AccumulatedWeight(settings.Weights, settings.CurrentCycle)
	out.Segmentation = make(map[string]model.TierInfo, len(agg.Resellers))
	for _, r := range agg.Resellers {
		out.Segmentation[r.ResellerCode] = segment.Info(r.TotalAmount, settings.Weights, settings.CurrentCycle)
	}
	return out, nil
}

func newCompareCmd(opts *rootOptions) *cobra.Command {
	var sectorQuery string
	cmd := &cobra.Command{
		Use:   "compare <morning> <afternoon>",
		Short: "Compare two snapshot files for one sector and print the deltas as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if sectorQuery == "" {
				return errors.New("--sector is required")
			}
			cmp, err := compare(args[0], args[1], sectorQuery)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), cmp)
		},
	}
	cmd.Flags().StringVar(&sectorQuery, "sector", "", "区域代码或名称")
	return cmd
}

func compare(morningPath, afternoonPath, sectorQuery string) (*model.Comparison, error) {
	l := loader.New(nil, nil)
	morning, _, err := l.ParseFile(morningPath)
	if err != nil {
		return nil, err
	}
	afternoon, _, err := l.ParseFile(afternoonPath)
	if err != nil {
		return nil, err
	}

	cmp := aggregator.Compare(morning, afternoon, sectorQuery, nil)
	if cmp == nil {
		return nil, fmt.Errorf("sector %q not present in both snapshots", sectorQuery)
	}
	return cmp, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
