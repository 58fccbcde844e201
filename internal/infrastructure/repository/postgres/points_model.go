package postgres

import "time"

type pointsTableModel struct {
	UserID    string    `db:"user_id"`
	Recycle   int       `db:"recycle_points"`
	Reuse     int       `db:"reuse_points"`
	Reduce    int       `db:"reduce_points"`
	Knowledge int       `db:"knowledge_points"`
	Version   int64     `db:"version"`
	UpdatedAt time.Time `db:"updated_at"`
}

type pointsInsertModel struct {
	UserID    string    `db:"user_id"`
	Recycle   int       `db:"recycle_points"`
	Reuse     int       `db:"reuse_points"`
	Reduce    int       `db:"reduce_points"`
	Knowledge int       `db:"knowledge_points"`
	Version   int64     `db:"version"`
	UpdatedAt time.Time `db:"updated_at"`
}
