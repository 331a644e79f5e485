package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is the process configuration, loaded from the environment. An
// empty MySQLHost or RabbitURL degrades the server to the in-memory
// repository or the log publisher respectively.
type Config struct {
	Port string `envconfig:"PORT" default:"8080"`

	MySQLUser     string `envconfig:"MYSQL_USER"`
	MySQLPassword string `envconfig:"MYSQL_PASSWORD"`
	MySQLHost     string `envconfig:"MYSQL_HOST"`
	MySQLPort     string `envconfig:"MYSQL_PORT" default:"3306"`
	MySQLDatabase string `envconfig:"MYSQL_DATABASE" default:"appforge"`

	RedisHost string `envconfig:"REDIS_HOST"`

	RabbitURL      string `envconfig:"RABBITMQ_URL"`
	RabbitExchange string `envconfig:"RABBITMQ_EXCHANGE" default:"orders.exchange"`

	CodegenURL    string `envconfig:"CODEGEN_SERVICE_URL" default:"http://localhost:9090"`
	ContractURL   string `envconfig:"CONTRACT_SERVICE_URL" default:"http://localhost:9091"`
	ContractKey   string `envconfig:"CONTRACT_API_KEY"`
	GitHubURL     string `envconfig:"GITHUB_API_URL"`
	GitHubToken   string `envconfig:"GITHUB_TOKEN"`
	GitHubOwner   string `envconfig:"GITHUB_OWNER" default:"appforge-apps"`
	VercelURL     string `envconfig:"VERCEL_API_URL"`
	VercelToken   string `envconfig:"VERCEL_TOKEN"`
	ClusterURL    string `envconfig:"CLUSTER_CONTROLLER_URL" default:"http://localhost:9092"`
	ClusterToken  string `envconfig:"CLUSTER_TOKEN"`
	ClusterNS     string `envconfig:"CLUSTER_NAMESPACE" default:"appforge-production"`
	VendorName    string `envconfig:"VENDOR_NAME" default:"AppForge Platform"`
	VendorEmail   string `envconfig:"VENDOR_EMAIL" default:"admin@appforge.dev"`
	CollaboratorT time.Duration `envconfig:"COLLABORATOR_TIMEOUT" default:"30s"`

	WebhookSecret      string        `envconfig:"PAYMENT_WEBHOOK_SECRET" default:"whsec_dev"`
	PaymentLatency     time.Duration `envconfig:"PAYMENT_LATENCY" default:"2s"`
	RefundLatency      time.Duration `envconfig:"REFUND_LATENCY" default:"1s"`
	PaymentFailureRate float64       `envconfig:"PAYMENT_FAILURE_RATE" default:"0.05"`
	PaymentWaitTimeout time.Duration `envconfig:"PAYMENT_WAIT_TIMEOUT" default:"30s"`

	WatchdogSchedule string        `envconfig:"WATCHDOG_SCHEDULE" default:"@every 1h"`
	StuckThreshold   time.Duration `envconfig:"STUCK_ORDER_THRESHOLD" default:"24h"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
