package interfaces

import (
	"context"

	"github.com/toolstream/agentdeck/internal/domain/entities"
)

type SettingsRepository interface {
	Load(ctx context.Context) (*entities.Settings, error)
	Save(ctx context.Context, settings *entities.Settings) error
}
