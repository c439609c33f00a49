package config

import (
	"os"
	"testing"
	"time"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("setenv %s failed: %v", key, err)
	}
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	_ = os.Unsetenv(key)
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		}
	})
}

func TestLoadRequiresMySQLDSN(t *testing.T) {
	unsetEnv(t, "MYSQL_DSN")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing MYSQL_DSN")
	}
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	setEnv(t, "MYSQL_DSN", "root:root@tcp(localhost:3306)/reservations?parseTime=true")
	setEnv(t, "APP_SERVICE_NAME", "reservations-test")
	setEnv(t, "HTTP_PORT", "8181")
	setEnv(t, "MYSQL_MAX_OPEN_CONNS", "20")
	setEnv(t, "MYSQL_MAX_IDLE_CONNS", "8")
	setEnv(t, "MYSQL_CONN_MAX_LIFETIME_MINUTES", "40")
	setEnv(t, "KAFKA_BROKERS", "broker-1:9092, broker-2:9092")
	setEnv(t, "RESERVATIONS_HOLD_DURATION_MINUTES", "90")
	setEnv(t, "RESERVATIONS_ATTEMPT_LIST_LIMIT", "7")
	setEnv(t, "RESERVATIONS_SWEEP_INTERVAL_SECONDS", "15")
	setEnv(t, "REDIS_CACHE_TTL_SECONDS", "45")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.App.ServiceName != "reservations-test" {
		t.Fatalf("unexpected app service name: %s", cfg.App.ServiceName)
	}
	if cfg.HTTP.Port != "8181" {
		t.Fatalf("unexpected http port: %s", cfg.HTTP.Port)
	}
	if cfg.MySQL.MaxOpenConns != 20 || cfg.MySQL.MaxIdleConns != 8 {
		t.Fatalf("unexpected mysql pool config: %+v", cfg.MySQL)
	}
	if cfg.MySQL.ConnMaxLifetime != 40*time.Minute {
		t.Fatalf("unexpected mysql lifetime: %v", cfg.MySQL.ConnMaxLifetime)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "broker-1:9092" || cfg.Kafka.Brokers[1] != "broker-2:9092" {
		t.Fatalf("unexpected kafka brokers: %v", cfg.Kafka.Brokers)
	}
	if cfg.Kafka.Topic != "reservation-events" {
		t.Fatalf("unexpected kafka topic: %s", cfg.Kafka.Topic)
	}
	if cfg.Reservations.HoldDuration != 90*time.Minute {
		t.Fatalf("unexpected hold duration: %v", cfg.Reservations.HoldDuration)
	}
	if cfg.Reservations.AttemptListLimit != 7 {
		t.Fatalf("unexpected attempt list limit: %d", cfg.Reservations.AttemptListLimit)
	}
	if cfg.Jobs.SweepInterval != 15*time.Second {
		t.Fatalf("unexpected sweep interval: %v", cfg.Jobs.SweepInterval)
	}
	if cfg.Redis.CacheTTL != 45*time.Second {
		t.Fatalf("unexpected redis cache ttl: %v", cfg.Redis.CacheTTL)
	}
	if cfg.Esewa.ProductCode != "EPAYTEST" {
		t.Fatalf("unexpected esewa product code: %s", cfg.Esewa.ProductCode)
	}
}
