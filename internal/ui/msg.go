package ui

import "time"

// Tea message types for the dashboard

// TickMsg drives polling of the entry provider
type TickMsg time.Time

// RefreshRequestedMsg is emitted after the user asked for a refresh
type RefreshRequestedMsg struct{}
