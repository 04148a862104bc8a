package configs

type ServiceConfig struct {
	HttpPort     string   `yaml:"http_port"`
	ServiceName  string   `yaml:"service_name"`
	BaseURL      string   `yaml:"base_url"`
	AllowOrigins []string `yaml:"allow_origins"`
}
