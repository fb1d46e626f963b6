package service

import (
	"context"
	"errors"
	"log/slog"
	"maps"

	"github.com/vocabkeep/vocabkeep/internal/domain"
	apperrors "github.com/vocabkeep/vocabkeep/internal/errors"
	"github.com/vocabkeep/vocabkeep/internal/store"
	"github.com/vocabkeep/vocabkeep/internal/validation"
)

// SettingsService manages the settings and stats singletons.
type SettingsService struct {
	store     *store.Store
	lists     *ListService
	validator *validation.Validator
	logger    *slog.Logger
}

// NewSettingsService creates a new settings service.
func NewSettingsService(store *store.Store, lists *ListService, validator *validation.Validator, logger *slog.Logger) *SettingsService {
	return &SettingsService{
		store:     store,
		lists:     lists,
		validator: validator,
		logger:    orDiscard(logger),
	}
}

// GetOrCreateSettings returns the settings, creating them with defaults on first access.
func (s *SettingsService) GetOrCreateSettings(ctx context.Context) (*domain.Settings, error) {
	return s.store.Settings.GetOrCreate(ctx)
}

// SettingsUpdate contains fields that can be updated. Nil fields are left alone.
type SettingsUpdate struct {
	Theme               *domain.Theme     `json:"theme" validate:"omitnil,oneof=auto light dark"`
	AutoAddToList       *bool             `json:"autoAddToList"`
	DefaultListID       *string           `json:"defaultListId" validate:"omitnil,nonblank"`
	DailyReviewReminder *bool             `json:"dailyReviewReminder"`
	ReminderTime        *string           `json:"reminderTime" validate:"omitnil,clock"`
	ReviewSessionSize   *int              `json:"reviewSessionSize" validate:"omitnil,gte=1,lte=200"`
	KeyboardShortcuts   map[string]string `json:"keyboardShortcuts" validate:"omitempty,max=50,dive,keys,nonblank,max=50,endkeys,max=50"`
}

// UpdateSettings merges update into the settings. Concurrent updates of the
// same field are last-writer-wins. Changing the default list promotes that list.
func (s *SettingsService) UpdateSettings(ctx context.Context, update *SettingsUpdate) (*domain.Settings, error) {
	if err := s.validator.Validate(update); err != nil {
		return nil, err
	}

	var settings *domain.Settings
	err := s.store.Update(ctx, func(tx *store.Txn) error {
		var err error
		settings, _, err = s.store.Settings.GetOrCreateIn(tx)
		if err != nil {
			return err
		}

		if update.DefaultListID != nil && *update.DefaultListID != settings.DefaultListID {
			list, err := s.lists.promoteIn(tx, *update.DefaultListID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return apperrors.Validationf("defaultListId: list %s does not exist", *update.DefaultListID)
				}
				return err
			}
			// promoteIn rewrote the record; continue from the stored version.
			if settings, err = s.store.Settings.GetIn(tx); err != nil {
				return err
			}
			settings.DefaultListID = list.ID
		}

		if update.Theme != nil {
			settings.Theme = *update.Theme
		}
		if update.AutoAddToList != nil {
			settings.AutoAddToList = *update.AutoAddToList
		}
		if update.DailyReviewReminder != nil {
			settings.DailyReviewReminder = *update.DailyReviewReminder
		}
		if update.ReminderTime != nil {
			settings.ReminderTime = *update.ReminderTime
		}
		if update.ReviewSessionSize != nil {
			settings.ReviewSessionSize = *update.ReviewSessionSize
		}
		if update.KeyboardShortcuts != nil {
			if settings.KeyboardShortcuts == nil {
				settings.KeyboardShortcuts = make(map[string]string, len(update.KeyboardShortcuts))
			}
			maps.Copy(settings.KeyboardShortcuts, update.KeyboardShortcuts)
		}
		settings.UpdatedAt = s.store.Now()

		return s.store.Settings.PutIn(tx, settings)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("settings updated",
		"theme", settings.Theme,
		"default_list_id", settings.DefaultListID,
		"review_session_size", settings.ReviewSessionSize,
	)
	return settings, nil
}
