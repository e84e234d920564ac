package models

// WaterEntry is one 8 oz cup of water.
type WaterEntry struct {
	UserID string `db:"user_id" json:"userId"`
	Date   Date   `db:"entry_date" json:"date"`
}

type WaterCount struct {
	Date  Date `db:"entry_date" json:"date"`
	Count int  `db:"cups" json:"count"`
}
