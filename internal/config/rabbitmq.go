package config

type RabbitMQConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

// Enabled reports whether notification events should be published.
func (r *RabbitMQConfig) Enabled() bool {
	return r.URL != ""
}

func loadRabbitMQConfig() *RabbitMQConfig {
	return &RabbitMQConfig{
		URL:      getEnv("RABBITMQ_URL", ""),
		Exchange: getEnv("RABBITMQ_EXCHANGE", "tricy.events"),
	}
}
