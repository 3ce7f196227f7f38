package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port             string `envconfig:"PORT" default:"8080"`
	AWSRegion        string `envconfig:"AWS_REGION" default:"ap-northeast-2"`
	SessionTableName string `envconfig:"SESSION_TABLE_NAME" default:"kiosk-sessions"`
	KafkaBrokers     string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info"`

	MenuPath     string `envconfig:"MENU_PATH" default:"config/menu.json"`
	SnapshotPath string `envconfig:"SNAPSHOT_PATH" default:"data/session.json"`

	POSEndpoint     string `envconfig:"POS_ENDPOINT" default:"http://localhost:9090/orders"`
	PrinterEndpoint string `envconfig:"PRINTER_ENDPOINT" default:"http://localhost:9100/print"`

	MidtransServerKey string `envconfig:"MIDTRANS_SERVER_KEY" default:""`

	TaxRateBP int64 `envconfig:"TAX_RATE_BP" default:"800"` // basis points

	InactivityTimeout   time.Duration `envconfig:"INACTIVITY_TIMEOUT" default:"60s"`
	ConfirmationTimeout time.Duration `envconfig:"CONFIRMATION_TIMEOUT" default:"30s"`
	WarningThreshold    time.Duration `envconfig:"WARNING_THRESHOLD" default:"15s"`
	MonitorTick         time.Duration `envconfig:"MONITOR_TICK" default:"1s"`
	SyncDebounce        time.Duration `envconfig:"SYNC_DEBOUNCE" default:"3s"`
	SnapshotTTL         time.Duration `envconfig:"SNAPSHOT_TTL" default:"5m"`
	RetryInterval       time.Duration `envconfig:"RETRY_INTERVAL" default:"10s"`
	KDSAckTimeout       time.Duration `envconfig:"KDS_ACK_TIMEOUT" default:"5s"`

	DefaultPrepMinutes int `envconfig:"DEFAULT_PREP_MINUTES" default:"8"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
