package config

type MapsConfig struct {
	GoogleAPIKey string `yaml:"google_api_key"`
	Region       string `yaml:"region"`
}

func loadMapsConfig() *MapsConfig {
	return &MapsConfig{
		GoogleAPIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
		Region:       getEnv("GOOGLE_MAPS_REGION", "ph"),
	}
}
