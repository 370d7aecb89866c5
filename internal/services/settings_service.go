package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/modguard/modguard/internal/models"
	"github.com/modguard/modguard/internal/triage"
	"gorm.io/gorm"
)

// Setting keys understood by the triage config overlay.
//
//	weight.<category>   float  category base score
//	default_weight      float  score for unlisted categories
//	threshold.critical  float  tier thresholds
//	threshold.high
//	threshold.medium
//	version             string config version label
const (
	settingWeightPrefix    = "weight."
	settingDefaultWeight   = "default_weight"
	settingThresholdPrefix = "threshold."
	settingVersion         = "version"
)

// SettingsService layers DB-stored overrides on top of the default
// triage config and hands out the resulting engine. A RWMutex-guarded
// snapshot keeps concurrent submissions scoring against a coherent
// table while admins tune weights.
type SettingsService struct {
	db *gorm.DB

	mu     sync.RWMutex
	cfg    triage.Config
	engine *triage.Engine
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	cfg := triage.DefaultConfig()
	return &SettingsService{
		db:     db,
		cfg:    cfg,
		engine: triage.NewEngine(cfg),
	}
}

func (s *SettingsService) Engine() *triage.Engine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

func (s *SettingsService) Config() triage.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// SeedDefaults writes the default weight table and thresholds as
// setting rows, skipping keys that already exist.
func (s *SettingsService) SeedDefaults() error {
	defaults := triage.DefaultConfig()

	seed := map[string]string{
		settingDefaultWeight: formatFloat(defaults.DefaultWeight),
		settingVersion:       defaults.Version,
		"threshold.critical": formatFloat(defaults.CriticalThreshold),
		"threshold.high":     formatFloat(defaults.HighThreshold),
		"threshold.medium":   formatFloat(defaults.MediumThreshold),
	}
	for category, weight := range defaults.CategoryWeights {
		seed[settingWeightPrefix+category] = formatFloat(weight)
	}

	for key, value := range seed {
		settingType := "float"
		if key == settingVersion {
			settingType = "string"
		}
		var existing models.TriageSetting
		err := s.db.Where("key = ?", key).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			setting := models.TriageSetting{
				ID:    uuid.New(),
				Key:   key,
				Value: value,
				Type:  settingType,
			}
			if err := s.db.Create(&setting).Error; err != nil {
				return fmt.Errorf("seed setting %s: %w", key, err)
			}
		} else if err != nil {
			return fmt.Errorf("seed lookup %s: %w", key, err)
		}
	}
	return nil
}

// Load reads all setting rows and rebuilds the active config/engine.
func (s *SettingsService) Load() error {
	var settings []models.TriageSetting
	if err := s.db.Find(&settings).Error; err != nil {
		return fmt.Errorf("load triage settings: %w", err)
	}

	cfg := triage.DefaultConfig()
	for _, setting := range settings {
		if err := applySetting(&cfg, setting.Key, setting.Value); err != nil {
			slog.Warn("ignoring invalid triage setting", "key", setting.Key, "value", setting.Value, "error", err)
		}
	}

	s.mu.Lock()
	s.cfg = cfg
	s.engine = triage.NewEngine(cfg)
	s.mu.Unlock()

	slog.Info("triage config loaded", "version", cfg.Version, "overrides", len(settings))
	return nil
}

// Set validates and upserts one override, then reloads the engine.
func (s *SettingsService) Set(ctx context.Context, adminID uuid.UUID, key, value, settingType string) error {
	probe := triage.DefaultConfig()
	if err := applySetting(&probe, key, value); err != nil {
		return err
	}
	if settingType == "" {
		settingType = "float"
		if key == settingVersion {
			settingType = "string"
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var setting models.TriageSetting
		err := tx.Where("key = ?", key).First(&setting).Error
		if err == gorm.ErrRecordNotFound {
			setting = models.TriageSetting{
				ID:    uuid.New(),
				Key:   key,
				Value: value,
				Type:  settingType,
			}
			if err := tx.Create(&setting).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		} else {
			setting.Value = value
			setting.Type = settingType
			setting.UpdatedAt = time.Now()
			if err := tx.Save(&setting).Error; err != nil {
				return err
			}
		}
		return writeAudit(tx, &adminID, AuditSettingChanged, "", key, map[string]interface{}{
			"key":   key,
			"value": value,
		})
	})
	if err != nil {
		return &PersistenceError{Op: "setting upsert", Err: err}
	}

	return s.Load()
}

// Delete removes an override so the default value applies again.
func (s *SettingsService) Delete(ctx context.Context, adminID uuid.UUID, key string) error {
	result := s.db.WithContext(ctx).Where("key = ?", key).Delete(&models.TriageSetting{})
	if result.Error != nil {
		return &PersistenceError{Op: "setting delete", Err: result.Error}
	}
	if result.RowsAffected == 0 {
		return ErrSettingNotFound
	}

	err := writeAudit(s.db, &adminID, AuditSettingChanged, "", key, map[string]interface{}{
		"key":     key,
		"deleted": true,
	})
	if err != nil {
		slog.Error("audit write failed", "action", AuditSettingChanged, "error", err)
	}

	return s.Load()
}

// All returns every stored setting keyed by name.
func (s *SettingsService) All(ctx context.Context) (map[string]string, error) {
	var settings []models.TriageSetting
	if err := s.db.WithContext(ctx).Order("key").Find(&settings).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(settings))
	for _, setting := range settings {
		out[setting.Key] = setting.Value
	}
	return out, nil
}

func applySetting(cfg *triage.Config, key, value string) error {
	switch {
	case key == settingVersion:
		if value == "" {
			return fmt.Errorf("version must not be empty")
		}
		cfg.Version = value
		return nil
	case key == settingDefaultWeight:
		f, err := parseWeight(value)
		if err != nil {
			return err
		}
		cfg.DefaultWeight = f
		return nil
	case strings.HasPrefix(key, settingWeightPrefix):
		category := strings.TrimPrefix(key, settingWeightPrefix)
		if category == "" {
			return fmt.Errorf("weight key missing category")
		}
		f, err := parseWeight(value)
		if err != nil {
			return err
		}
		cfg.CategoryWeights[category] = f
		return nil
	case strings.HasPrefix(key, settingThresholdPrefix):
		f, err := parseWeight(value)
		if err != nil {
			return err
		}
		switch strings.TrimPrefix(key, settingThresholdPrefix) {
		case "critical":
			cfg.CriticalThreshold = f
		case "high":
			cfg.HighThreshold = f
		case "medium":
			cfg.MediumThreshold = f
		default:
			return fmt.Errorf("unknown threshold key %q", key)
		}
		return nil
	default:
		return fmt.Errorf("unknown setting key %q", key)
	}
}

func parseWeight(value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", value)
	}
	if f < 0 {
		return 0, fmt.Errorf("must not be negative: %q", value)
	}
	return f, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
