package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/BerniceZTT/crm_reports/models"
	"github.com/BerniceZTT/crm_reports/repository"
	"github.com/BerniceZTT/crm_reports/service"
	"github.com/BerniceZTT/crm_reports/utils"
)

type options struct {
	file string
	kind string
	topN int
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "reportctl",
		Short:        "离线运行 CRM 报表计算",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.file, "file", "f", "", "数据文件（JSON，含 deals/companies/transitions/goals）")
	root.PersistentFlags().StringVar(&opts.kind, "kind", "deals", "记录类型: deals 或 companies")
	root.PersistentFlags().IntVar(&opts.topN, "top-n", service.DefaultTopNOther, "其他阶段最多展示数量")
	_ = root.MarkPersistentFlagRequired("file")

	root.AddCommand(
		newAggregateCmd(opts),
		newByAdvisorCmd(opts),
		newWeeklyCmd(opts),
		newTableCmd(opts),
	)
	return root
}

func newAggregateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "aggregate",
		Short: "按阶段聚合记录",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := loadRecords(opts)
			if err != nil {
				return err
			}
			agg := service.AggregateStages(records, service.AggregateOptions{TopNOther: opts.topN})
			return writeJSON(cmd.OutOrStdout(), models.StageReportResponse{
				Aggregate:            agg,
				Chart:                service.ChartSeries(agg.Buckets),
				TotalAmountFormatted: utils.FormatCurrencyDecimal(agg.TotalAmount),
			})
		},
	}
}

func newByAdvisorCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "by-advisor",
		Short: "按顾问分组的阶段聚合",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := loadRecords(opts)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(),
				service.AggregateByAdvisor(records, service.AggregateOptions{TopNOther: opts.topN}))
		},
	}
}

func newWeeklyCmd(opts *options) *cobra.Command {
	var window int
	cmd := &cobra.Command{
		Use:   "weekly",
		Short: "计算每周阶段变动",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if window < 0 {
				return fmt.Errorf("window 不能为负数: %d", window)
			}
			seed, err := repository.LoadSeed(opts.file)
			if err != nil {
				return err
			}
			rows := service.BuildWeeklyReport(seed.Transitions, seed.Goals, window)
			return writeJSON(cmd.OutOrStdout(), models.WeeklyReportResponse{
				Rows:          rows,
				UnrankedTotal: service.UnrankedTotal(rows),
			})
		},
	}
	cmd.Flags().IntVar(&window, "window", 0, "只保留最近 N 周，0 表示全部")
	return cmd
}

func newTableCmd(opts *options) *cobra.Command {
	var (
		q     service.TableQuery
		order string
	)
	cmd := &cobra.Command{
		Use:   "table",
		Short: "搜索、排序并分页",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := loadRecords(opts)
			if err != nil {
				return err
			}
			q.SortOrder = service.ParseSortOrder(order)
			return writeJSON(cmd.OutOrStdout(), service.QueryTable(records, q))
		},
	}
	cmd.Flags().StringVar(&q.SearchText, "search", "", "搜索词")
	cmd.Flags().StringVar(&q.SortField, "sort", "", "排序字段: id, name, stage, amount, revenue, closeDate")
	cmd.Flags().StringVar(&order, "order", "asc", "排序方向: asc 或 desc")
	cmd.Flags().IntVar(&q.Page, "page", 1, "页码")
	cmd.Flags().IntVar(&q.PageSize, "page-size", service.DefaultPageSize, "每页条数")
	return cmd
}

func loadRecords(opts *options) ([]models.Record, error) {
	seed, err := repository.LoadSeed(opts.file)
	if err != nil {
		return nil, err
	}

	var records []models.Record
	switch opts.kind {
	case "deals":
		for _, d := range seed.Deals {
			records = append(records, d.ToRecord())
		}
	case "companies":
		for _, c := range seed.Companies {
			records = append(records, c.ToRecord())
		}
	default:
		return nil, fmt.Errorf("无效的记录类型 %q，可选值: deals, companies", opts.kind)
	}
	utils.Logger.Debug().Str("kind", opts.kind).Int("count", len(records)).Msg("已加载记录")
	return records, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
