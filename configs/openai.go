package configs

type OpenaiConfig struct {
	ApiKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}
