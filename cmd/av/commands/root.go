package commands

import (
	"fmt"
	"os"

	"atomvault/pkg/app"
	"atomvault/pkg/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	// 全局应用实例，供子命令使用
	AV *app.App
)

var rootCmd = &cobra.Command{
	Use:   "av",
	Short: "AtomVault: atomic artifact targets for batch pipelines",
	Long: `av reads and writes pipeline artifacts through atomic targets:
an artifact either does not exist at all, or exists complete.
Backends: local disk, S3/MinIO.`,
	// 【关键】PersistentPreRunE 会在所有子命令执行前运行
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 统一初始化 App
		var err error
		AV, err = app.NewApp(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to initialize atomvault: %w", err)
		}
		return nil
	},
}

// Execute 是入口
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// 在初始化时，加载配置
	cobra.OnInitialize(initConfig)

	// 1. 定义全局参数 --config
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.av/config.yaml)")

	// 2. 定义 storage.type 参数，并绑定到 Viper
	// 用户既可以在 yaml 里写，也可以用 --storage 覆盖
	rootCmd.PersistentFlags().String("storage", "", "storage backend: disk or s3")
	if err := viper.BindPFlag("storage.type", rootCmd.PersistentFlags().Lookup("storage")); err != nil {
		fmt.Println("Failed to bind flag:", err)
		os.Exit(1)
	}
}

// initConfig 读取配置文件和环境变量
func initConfig() {
	if err := config.Load(cfgFile); err != nil {
		fmt.Println("Config error:", err)
		os.Exit(1)
	}
}
