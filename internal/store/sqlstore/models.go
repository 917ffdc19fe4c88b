// Package sqlstore is a DataStore backed by GORM (Postgres in
// production, SQLite for tests and local embedding), grounded on the
// teacher's internal/database/database.go connection-bootstrap pattern
// but against this engine's own data model instead of the teacher's
// social-app models.
package sqlstore

import "time"

// postingBlock is one physical block of one term's postings list.
type postingBlock struct {
	ID        uint `gorm:"primaryKey;autoIncrement"`
	Term      uint32 `gorm:"index:idx_term_block,unique"`
	BlockID   int    `gorm:"index:idx_term_block,unique"`
	FIDmax    uint32
	Body      []byte
	CreatedAt time.Time
}

func (postingBlock) TableName() string { return "posting_blocks" }

// fingerprintRecord stores the raw packed QLF bytes for one recording.
type fingerprintRecord struct {
	FID       uint32 `gorm:"primaryKey"`
	Data      []byte
	CreatedAt time.Time
}

func (fingerprintRecord) TableName() string { return "fingerprints" }
