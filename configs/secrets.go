package configs

type SecretsConfig struct {
	JwtSecret string `yaml:"jwt_secret"`
}
