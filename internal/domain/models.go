package domain

import "time"

// Exchange is one dispatched chat action together with the reply Harris sent
// back. Rows are append-only and keyed by a UUID.
//
// Fields:
//   - UserID: the numeric user id from the request (indexed with CreatedAt).
//   - Kind: "join" or "message".
//   - Text: the display name for joins, the free text for messages.
//   - Reply: the single sentence returned to the client.
type Exchange struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    uint64    `json:"user_id"    gorm:"not null;index:idx_user_exchanges,priority:1"`
	Kind      string    `json:"kind"       gorm:"type:varchar(16);not null;check:kind IN ('join','message')"`
	Text      string    `json:"text"       gorm:"type:text;not null"`
	Reply     string    `json:"reply"      gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_user_exchanges,priority:2"`
}

// TableName returns the database table name for Exchange.
func (Exchange) TableName() string { return "exchanges" }

// GeocodeEntry persists a resolved place name so that a restarted process can
// answer without calling the geocoder again. Query is stored exactly as typed.
// Entries carry no expiry.
type GeocodeEntry struct {
	Query     string    `gorm:"type:varchar(512);primaryKey"`
	Lat       float64   `gorm:"not null"`
	Lng       float64   `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the database table name for GeocodeEntry.
func (GeocodeEntry) TableName() string { return "geocode_entries" }

// Coordinate converts the row into a pipeline value.
func (g GeocodeEntry) Coordinate() Coordinate { return Coordinate{Lat: g.Lat, Lng: g.Lng} }
