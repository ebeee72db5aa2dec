package repositories_json

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/toolstream/agentdeck/internal/domain/entities"
	"github.com/toolstream/agentdeck/internal/domain/errs"
	"github.com/toolstream/agentdeck/internal/domain/interfaces"
)

type JsonSettingsRepository struct {
	filePath string
}

func NewJSONSettingsRepository(dataDir string) (interfaces.SettingsRepository, error) {
	return &JsonSettingsRepository{
		filePath: filepath.Join(dataDir, "settings.json"),
	}, nil
}

func (r *JsonSettingsRepository) Load(ctx context.Context) (*entities.Settings, error) {
	data, err := os.ReadFile(r.filePath)
	if os.IsNotExist(err) {
		return &entities.Settings{}, nil // No settings persisted yet
	}
	if err != nil {
		return nil, errs.InternalErrorf("failed to read settings.json: %v", err)
	}

	var settings entities.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, errs.InternalErrorf("failed to unmarshal settings.json: %v", err)
	}

	return &settings, nil
}

func (r *JsonSettingsRepository) Save(ctx context.Context, settings *entities.Settings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return errs.InternalErrorf("failed to marshal settings: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.filePath), 0755); err != nil {
		return errs.InternalErrorf("failed to create directory: %v", err)
	}

	if err := os.WriteFile(r.filePath, data, 0644); err != nil {
		return errs.InternalErrorf("failed to write settings.json: %v", err)
	}

	return nil
}

var _ interfaces.SettingsRepository = (*JsonSettingsRepository)(nil)
