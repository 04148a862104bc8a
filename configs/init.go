package configs

import (
	"os"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type configs struct {
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	S3       S3Config       `yaml:"s3"`
	Email    EmailConfig    `yaml:"email"`
	Openai   OpenaiConfig   `yaml:"openai"`
	Service  ServiceConfig  `yaml:"service"`
	Logs     LogsConfig     `yaml:"logs"`
	Secrets  SecretsConfig  `yaml:"secrets"`
}

var Configs configs

func Init(ConfigPath *string) {
	var configPath string
	if ConfigPath == nil || *ConfigPath == "" {
		_, b, _, _ := runtime.Caller(0)
		BasePath := filepath.Dir(b)
		configPath = BasePath + "/file/configs.yaml"
	} else {
		configPath = *ConfigPath
	}
	load(configPath)

	InitLogger()
}

func load(ConfigsPath string) {
	yamlFile, err := os.ReadFile(ConfigsPath)
	if err != nil {
		Logger.Error("Unmarshal", zap.Error(err))
	}
	err = yaml.Unmarshal(yamlFile, &Configs)
	if err != nil {
		Logger.Error("Unmarshal", zap.Error(err))
	}
}
