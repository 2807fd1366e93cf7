package services

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cloudstore/pagesmith/internal/core/domain"
	"github.com/cloudstore/pagesmith/internal/core/ports/driven"
	"github.com/cloudstore/pagesmith/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// SettingsService exposes the configuration keys the pipeline reads.
type SettingsService struct {
	store driven.ConfigStore
}

// NewSettingsService creates a settings service over store.
func NewSettingsService(store driven.ConfigStore) *SettingsService {
	return &SettingsService{store: store}
}

// List returns every known key in file order.
func (s *SettingsService) List() []domain.Setting {
	specs := domain.SettingSpecs()
	out := make([]domain.Setting, 0, len(specs))
	for _, spec := range specs {
		out = append(out, s.effective(spec))
	}
	return out
}

// Get returns the effective value of key.
func (s *SettingsService) Get(key string) (domain.Setting, error) {
	spec, ok := domain.LookupSetting(key)
	if !ok {
		return domain.Setting{}, fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	return s.effective(spec), nil
}

// Set parses value as the key's type and writes it to the store.
func (s *SettingsService) Set(key, value string) error {
	spec, ok := domain.LookupSetting(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	parsed, err := parseSetting(spec, strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}
	if err := s.store.Set(key, parsed); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Path returns the configuration file location.
func (s *SettingsService) Path() string {
	return s.store.Path()
}

func (s *SettingsService) effective(spec domain.SettingSpec) domain.Setting {
	val, ok := s.store.Get(spec.Key)
	if !ok {
		return domain.Setting{SettingSpec: spec, Value: spec.Default}
	}
	return domain.Setting{SettingSpec: spec, Value: formatSetting(val), Explicit: true}
}

// parseSetting converts text to the value stored for spec.
// Ints are int64 and lists []string so they round-trip through TOML.
func parseSetting(spec domain.SettingSpec, value string) (any, error) {
	switch spec.Type {
	case domain.SettingInt:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", value)
		}
		if n < 0 {
			return nil, fmt.Errorf("must not be negative")
		}
		return n, nil
	case domain.SettingFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", value)
		}
		if f < 0 {
			return nil, fmt.Errorf("must not be negative")
		}
		return f, nil
	case domain.SettingBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%q is not a boolean", value)
		}
		return b, nil
	case domain.SettingDuration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("%q is not a duration", value)
		}
		if d <= 0 {
			return nil, fmt.Errorf("must be positive")
		}
		return d.String(), nil
	case domain.SettingList:
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			return nil, fmt.Errorf("list is empty")
		}
		return items, nil
	default:
		if len(spec.Choices) > 0 && !slices.Contains(spec.Choices, value) {
			return nil, fmt.Errorf("%q is not one of %s", value, strings.Join(spec.Choices, ", "))
		}
		return value, nil
	}
}

func formatSetting(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case time.Duration:
		return v.String()
	case []string:
		return strings.Join(v, ",")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}
