package models

// TodayStats aggregates reservations whose used_at falls on the current day.
type TodayStats struct {
	TotalScannedToday int `bun:"total_scanned_today" json:"total_scanned_today"`
	UsedToday         int `bun:"used_today" json:"used_today"`
	UnusedToday       int `bun:"unused_today" json:"unused_today"`
}

// GeneralStats aggregates the whole reservation table.
type GeneralStats struct {
	TotalReservations int `bun:"total_reservations" json:"total_reservations"`
	TotalUsed         int `bun:"total_used" json:"total_used"`
	TotalUnused       int `bun:"total_unused" json:"total_unused"`
}

type ScanStats struct {
	Today   TodayStats   `json:"today"`
	General GeneralStats `json:"general"`
}
