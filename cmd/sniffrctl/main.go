// sniffrctl 运维命令行：数据库迁移与手动播种
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "sniffrctl",
		Short:         "Sniffr 运维工具",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "配置文件路径（缺省按 ./config/config.yaml 查找）")

	root.AddCommand(
		newMigrateCommand(&configPath),
		newSeedCommand(&configPath),
	)
	return root
}
