package domain

import "time"

// Theme is the UI theme preference.
type Theme string

// Theme values.
const (
	ThemeAuto  Theme = "auto"
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Valid reports whether t is a recognized theme.
func (t Theme) Valid() bool {
	switch t {
	case ThemeAuto, ThemeLight, ThemeDark:
		return true
	default:
		return false
	}
}

// Settings defaults. Applied once, when the singleton is first created.
const (
	DefaultTheme               = ThemeAuto
	DefaultAutoAddToList       = true
	DefaultDailyReviewReminder = false
	DefaultReminderTime        = "09:00"
	DefaultReviewSessionSize   = 20
)

// Settings is the per-installation preferences singleton.
type Settings struct {
	Theme               Theme             `json:"theme"`
	AutoAddToList       bool              `json:"autoAddToList"`
	DefaultListID       string            `json:"defaultListId"`
	DailyReviewReminder bool              `json:"dailyReviewReminder"`
	ReminderTime        string            `json:"reminderTime"`
	ReviewSessionSize   int               `json:"reviewSessionSize"`
	KeyboardShortcuts   map[string]string `json:"keyboardShortcuts"`
	UpdatedAt           time.Time         `json:"updatedAt"`
}

// NewSettings returns the default settings pointing at the given default list.
func NewSettings(defaultListID string, now time.Time) *Settings {
	return &Settings{
		Theme:               DefaultTheme,
		AutoAddToList:       DefaultAutoAddToList,
		DefaultListID:       defaultListID,
		DailyReviewReminder: DefaultDailyReviewReminder,
		ReminderTime:        DefaultReminderTime,
		ReviewSessionSize:   DefaultReviewSessionSize,
		KeyboardShortcuts:   map[string]string{},
		UpdatedAt:           now,
	}
}
