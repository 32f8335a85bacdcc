package schema

// ViewID identifies a connected view.
type ViewID string

// ThemeName identifies a view theme.
type ThemeName string
