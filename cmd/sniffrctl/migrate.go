package main

import (
	"github.com/spf13/cobra"

	"github.com/joemerrillis/sniffr/pkg/database"
)

func newMigrateCommand(configPath *string) *cobra.Command {
	var rollback int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "执行内嵌的数据库迁移",
		Long: `执行内嵌的数据库迁移，默认升级到最新版本。
--rollback N 回滚最近 N 个版本。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer env.close()

			sqlDB, err := env.db.DB()
			if err != nil {
				return err
			}
			if rollback > 0 {
				return database.RollbackMigrations(sqlDB, rollback, env.logger)
			}
			return database.RunMigrations(sqlDB, env.logger)
		},
	}
	cmd.Flags().IntVar(&rollback, "rollback", 0, "回滚的迁移版本数")
	return cmd
}
