package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ATTACHMENTS_MAX_COUNT", "")
	t.Setenv("DESCRIPTION_MAX_LENGTH", "not a number")

	cfg := Load()
	if cfg.Port != "8080" || cfg.AttachmentsMaxCount != 20 || cfg.DescriptionMaxLength != 1500 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.KafkaCommandsTopic != "feedview.commands" || cfg.SiteTitle != "FeedView" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ATTACHMENTS_MAX_COUNT", "5")
	t.Setenv("KAFKA_BROKERS", "kafka:9092")
	t.Setenv("SITE_TITLE", "Cats")

	cfg := Load()
	if cfg.Port != "9000" || cfg.AttachmentsMaxCount != 5 || cfg.KafkaBrokers != "kafka:9092" || cfg.SiteTitle != "Cats" {
		t.Fatalf("env not applied: %+v", cfg)
	}
}
