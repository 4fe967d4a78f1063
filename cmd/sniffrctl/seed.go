package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joemerrillis/sniffr/internal/repository"
	"github.com/joemerrillis/sniffr/internal/service"
	"github.com/joemerrillis/sniffr/pkg/events"
	"github.com/joemerrillis/sniffr/pkg/jwt"
	"github.com/joemerrillis/sniffr/pkg/validation"
)

type seedOptions struct {
	userID string
	from   string
	to     string
}

func newSeedCommand(configPath *string) *cobra.Command {
	var opts seedOptions

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "按时间窗为用户生成待确认遛狗",
		Long: `按用户的每周时间窗为闭区间 [from, to] 生成待确认遛狗，已存在的日期跳过。
未指定 --from/--to 时使用服务器时区下的"今天 ~ 本周六"。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer env.close()

			from, to, err := opts.resolveRange(time.Now(), env.cfg.Server.Location())
			if err != nil {
				return err
			}

			publisher := events.NewPublisher(&env.cfg.Kafka, env.logger)
			defer func() { _ = publisher.Close() }()

			svc := service.NewService(env.cfg, repository.NewRepository(env.db),
				jwt.NewManager(&env.cfg.Auth), nil, publisher, env.logger)

			n, err := svc.WalkWindow.SeedRange(cmd.Context(), opts.userID, from, to)
			if err != nil {
				return err
			}
			env.logger.Info("播种完成",
				zap.String("user_id", opts.userID),
				zap.String("from", from.Format(time.DateOnly)),
				zap.String("to", to.Format(time.DateOnly)),
				zap.Int("seeded", n),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d pending walks\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.userID, "user", "", "用户 ID（必填）")
	cmd.Flags().StringVar(&opts.from, "from", "", "起始日期 YYYY-MM-DD")
	cmd.Flags().StringVar(&opts.to, "to", "", "结束日期 YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("user")
	cmd.MarkFlagsRequiredTogether("from", "to")
	return cmd
}

// resolveRange 解析播种区间，缺省为本周剩余日期
func (o seedOptions) resolveRange(now time.Time, loc *time.Location) (time.Time, time.Time, error) {
	if o.from == "" && o.to == "" {
		from, to := service.CurrentWeekRemainder(now, loc)
		return from, to, nil
	}
	from, err := validation.ParseDate(o.from)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--from 格式无效: %w", err)
	}
	to, err := validation.ParseDate(o.to)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--to 格式无效: %w", err)
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, service.ErrSeedRangeInvalid
	}
	return from, to, nil
}
