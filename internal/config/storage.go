package config

// StorageConfig selects the receipt archive.
type StorageConfig struct {
	Provider           string `yaml:"provider"` // s3, gcs, local, or empty to disable
	Bucket             string `yaml:"bucket"`
	AWSRegion          string `yaml:"aws_region"`
	AWSAccessKeyID     string `yaml:"aws_access_key_id"`
	AWSSecretAccessKey string `yaml:"aws_secret_access_key"`
	GCSCredentialsFile string `yaml:"gcs_credentials_file"`
	LocalPath          string `yaml:"local_path"`
}

func loadStorageConfig() *StorageConfig {
	return &StorageConfig{
		Provider:           getEnv("RECEIPT_STORAGE", ""),
		Bucket:             getEnv("RECEIPT_BUCKET", ""),
		AWSRegion:          getEnv("AWS_REGION", "ap-southeast-1"),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		GCSCredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
		LocalPath:          getEnv("RECEIPT_LOCAL_PATH", "./data/receipts"),
	}
}
