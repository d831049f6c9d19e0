package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Load 初始化 Viper 配置
// cfgFile: 可选，用户显式指定的配置文件路径
func Load(cfgFile string) error {
	// 1. 设置默认值 (Defaults)
	setDefaults()

	// 2. 配置搜索路径
	if cfgFile != "" {
		// 用户指定了文件，直接使用
		viper.SetConfigFile(cfgFile)
	} else {
		// 否则按优先级搜索
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		// 搜索顺序:
		// 1. 当前目录
		viper.AddConfigPath(".")
		// 2. 当前目录下的 .av
		viper.AddConfigPath(".av")
		// 3. 用户主目录下的 .av
		viper.AddConfigPath(filepath.Join(home, ".av"))

		viper.SetConfigType("yaml")
		viper.SetConfigName("config") // 找 config.yaml
	}

	// 3. 读取环境变量 (AV_STORAGE_TYPE, AV_S3_BUCKET 等)
	viper.SetEnvPrefix("AV")
	viper.AutomaticEnv()

	// 4. 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		// 没找到配置文件不算错 (可能全靠环境变量)，格式错才算
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("⚠️  No config file found, using defaults/env vars")
		} else {
			return fmt.Errorf("fatal error config file: %w", err)
		}
	} else {
		fmt.Println("🔧 Using config file:", viper.ConfigFileUsed())
	}

	return nil
}

func setDefaults() {
	// 存储后端默认值
	viper.SetDefault("storage.type", "disk")

	// S3 / MinIO 默认值
	viper.SetDefault("s3.region", "us-east-1")
	viper.SetDefault("s3.bucket", "atomvault")

	// 数据库标记表默认值
	viper.SetDefault("database.driver", "postgres")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.sslmode", "disable")

	// Redis 标记默认值
	viper.SetDefault("redis.url", "redis://localhost:6379/0")
	viper.SetDefault("redis.prefix", "av:done")
}
