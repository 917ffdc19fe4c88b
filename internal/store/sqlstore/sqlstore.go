package sqlstore

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/echoid/engine/internal/acierrors"
	enginelog "github.com/echoid/engine/internal/logger"
	"github.com/echoid/engine/internal/store"
)

// Store is a DataStore backed by a GORM connection. The append-block
// body for a term's list is appended to in memory between
// OnIndexerChunk calls and flushed to the row on Flush/OnIndexerFlushEnd,
// mirroring the single-writer-per-session contract spec.md §5 requires.
type Store struct {
	db  *gorm.DB
	log *zap.Logger

	dirty map[uint32]*dirtyChunk // term -> pending append bytes for the open block
}

// dirtyChunk buffers OnIndexerChunk appends for one term's open block until
// the next Flush, carrying the updated FIDmax alongside the body bytes so
// Flush can write both back to the row together.
type dirtyChunk struct {
	body   []byte
	fidmax uint32
}

// Options configures Store construction.
type Options struct {
	// DSN is a Postgres connection string (host=... user=... etc) or,
	// when SQLite is true, a file path (":memory:" for an ephemeral
	// store used by tests).
	DSN    string
	SQLite bool
	Logger *zap.Logger
}

// Open connects to the configured backend and auto-migrates the
// engine's own tables.
func Open(opts Options) (*Store, error) {
	log := opts.Logger
	if log == nil {
		log = enginelog.Nop()
	}

	gormCfg := &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}

	var (
		db  *gorm.DB
		err error
	)
	if opts.SQLite {
		db, err = gorm.Open(sqlite.Open(opts.DSN), gormCfg)
	} else {
		db, err = gorm.Open(postgres.Open(opts.DSN), gormCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: connect: %w", err)
	}

	if !opts.SQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlstore: underlying sql.DB: %w", err)
		}
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := db.AutoMigrate(&postingBlock{}, &fingerprintRecord{}); err != nil {
		return nil, fmt.Errorf("sqlstore: migrate: %w", err)
	}

	log.Info("sqlstore connected")
	return &Store{db: db, log: log, dirty: make(map[uint32]*dirtyChunk)}, nil
}

func (s *Store) GetPlistBlock(term uint32, blockID int) ([]byte, bool) {
	var row postingBlock
	err := s.db.Where("term = ? AND block_id = ?", term, blockID).First(&row).Error
	if err != nil {
		return nil, false
	}
	return row.Body, true
}

func (s *Store) GetFingerprintSize(fid uint32) (int, error) {
	var row fingerprintRecord
	if err := s.db.First(&row, "fid = ?", fid).Error; err != nil {
		return 0, acierrors.InvalidFingerprint("sqlstore.GetFingerprintSize", "no fingerprint stored for FID").Wrap(err)
	}
	return len(row.Data), nil
}

func (s *Store) GetFingerprint(fid uint32, nbytes, byteOffset int) ([]byte, error) {
	var row fingerprintRecord
	if err := s.db.First(&row, "fid = ?", fid).Error; err != nil {
		return nil, acierrors.InvalidFingerprint("sqlstore.GetFingerprint", "no fingerprint stored for FID").Wrap(err)
	}
	if byteOffset < 0 || byteOffset+nbytes > len(row.Data) {
		return nil, acierrors.InvalidFingerprint("sqlstore.GetFingerprint", "requested range exceeds stored fingerprint")
	}
	out := make([]byte, nbytes)
	copy(out, row.Data[byteOffset:byteOffset+nbytes])
	return out, nil
}

func (s *Store) OnIndexerStart() error { return nil }
func (s *Store) OnIndexerEnd() error   { return nil }

func (s *Store) OnIndexerFlushStart() error {
	s.log.Debug("flush start")
	return nil
}

func (s *Store) OnIndexerFlushEnd() error {
	defer s.log.Debug("flush end")
	return s.Flush()
}

func (s *Store) OnIndexerListHeader(term uint32) (store.ListHeader, error) {
	var count int64
	if err := s.db.Model(&postingBlock{}).Where("term = ?", term).Count(&count).Error; err != nil {
		return store.ListHeader{}, acierrors.InvalidIndexData("sqlstore.OnIndexerListHeader", "count query failed").Wrap(err)
	}
	return store.ListHeader{BlockCount: int(count)}, nil
}

func (s *Store) OnIndexerBlockHeader(term uint32, blockID int) (store.BlockHeader, error) {
	var row postingBlock
	err := s.db.Where("term = ? AND block_id = ?", term, blockID).First(&row).Error
	if err != nil {
		return store.BlockHeader{}, nil
	}
	return store.BlockHeader{ID: row.BlockID, BodySize: len(row.Body), FIDmax: row.FIDmax}, nil
}

func (s *Store) OnIndexerChunk(term uint32, _ store.ListHeader, hdr store.BlockHeader, body []byte) error {
	d, ok := s.dirty[term]
	if !ok {
		d = &dirtyChunk{}
		s.dirty[term] = d
	}
	d.body = append(d.body, body...)
	d.fidmax = hdr.FIDmax
	return nil
}

func (s *Store) OnIndexerNewBlock(term uint32, _ store.ListHeader, hdr store.BlockHeader, body []byte) error {
	row := postingBlock{Term: term, BlockID: hdr.ID, FIDmax: hdr.FIDmax, Body: append([]byte(nil), body...), CreatedAt: time.Now().UTC()}
	if err := s.db.Create(&row).Error; err != nil {
		return acierrors.InvalidIndexData("sqlstore.OnIndexerNewBlock", "insert failed").Wrap(err)
	}
	delete(s.dirty, term)
	return nil
}

func (s *Store) OnIndexerFingerprint(fid uint32, data []byte) error {
	row := fingerprintRecord{FID: fid, Data: append([]byte(nil), data...), CreatedAt: time.Now().UTC()}
	if err := s.db.Create(&row).Error; err != nil {
		return acierrors.InvalidIndexData("sqlstore.OnIndexerFingerprint", "insert failed").Wrap(err)
	}
	return nil
}

// Flush writes every pending append-block chunk to its row, all terms
// in a single transaction, the backend-specific cache policy spec.md §9
// Open Question 1 leaves to the store.
func (s *Store) Flush() error {
	if len(s.dirty) == 0 {
		return nil
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for term, chunk := range s.dirty {
			var row postingBlock
			if err := tx.Where("term = ?", term).Order("block_id desc").First(&row).Error; err != nil {
				continue
			}
			row.Body = append(row.Body, chunk.body...)
			row.FIDmax = chunk.fidmax
			if err := tx.Save(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return acierrors.InvalidIndexData("sqlstore.Flush", "transaction failed").Wrap(err)
	}
	s.dirty = make(map[uint32]*dirtyChunk)
	return nil
}
