package config

type PaymentConfig struct {
	Provider          string `yaml:"provider"` // stripe, razorpay, or empty to trust clients
	StripeSecretKey   string `yaml:"stripe_secret_key"`
	RazorpayKeyID     string `yaml:"razorpay_key_id"`
	RazorpayKeySecret string `yaml:"razorpay_key_secret"`
}

func loadPaymentConfig() *PaymentConfig {
	return &PaymentConfig{
		Provider:          getEnv("PAYMENT_PROVIDER", ""),
		StripeSecretKey:   getEnv("STRIPE_SECRET_KEY", ""),
		RazorpayKeyID:     getEnv("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
	}
}
