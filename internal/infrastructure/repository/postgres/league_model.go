package postgres

import "time"

type leagueTableModel struct {
	ID                string    `db:"id"`
	Name              string    `db:"name"`
	Tier              int       `db:"tier"`
	MembersCount      int       `db:"members_count"`
	PromotedCount     int       `db:"promoted_count"`
	RelegatedCount    int       `db:"relegated_count"`
	PromotionEnabled  bool      `db:"promotion_enabled"`
	RelegationEnabled bool      `db:"relegation_enabled"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

type leagueInsertModel struct {
	ID                string `db:"id"`
	Name              string `db:"name"`
	Tier              int    `db:"tier"`
	MembersCount      int    `db:"members_count"`
	PromotedCount     int    `db:"promoted_count"`
	RelegatedCount    int    `db:"relegated_count"`
	PromotionEnabled  bool   `db:"promotion_enabled"`
	RelegationEnabled bool   `db:"relegation_enabled"`
}
