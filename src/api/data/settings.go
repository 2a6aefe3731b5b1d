package data

import (
	"strconv"
	"sync"

	"github.com/harborview-partners/panel/src/api/types"
	"gorm.io/gorm"
)

const SettingQuorumPercentage = "quorum_percentage"

var (
	settingsCache map[string]string
	settingsMu    sync.RWMutex
)

// LoadSettings loads all settings from the database into cache
func LoadSettings(db *gorm.DB) error {
	var settings []types.Setting
	if err := db.Find(&settings).Error; err != nil {
		return err
	}

	settingsMu.Lock()
	defer settingsMu.Unlock()

	settingsCache = make(map[string]string)
	for _, s := range settings {
		settingsCache[s.Name] = s.Value
	}

	return nil
}

// GetSetting retrieves a setting value from cache (call LoadSettings first)
func GetSetting(name string) string {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return settingsCache[name]
}

// QuorumPercentage returns the configured merge threshold, defaulting to 50
// when the setting is missing or malformed.
func QuorumPercentage() float64 {
	v, err := strconv.ParseFloat(GetSetting(SettingQuorumPercentage), 64)
	if err != nil || v < 0 || v > 100 {
		return 50
	}
	return v
}
