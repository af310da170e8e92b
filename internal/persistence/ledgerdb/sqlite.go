package ledgerdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"growarena.gg/internal/game/model"
)

// SQLiteLedger is a derived index of settled effects, tax movements and
// treasury disbursements. It is safe to delete; the durable collections are
// the source of truth. Writes go through a buffered channel into a single
// writer goroutine that batches transactions.
type SQLiteLedger struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqSettlement reqKind = iota + 1
	reqTax
	reqDisbursement
)

type req struct {
	kind reqKind

	settlement settlementRow
	tax        TaxRow
	disb       DisbursementRow
}

type settlementRow struct {
	EffectID string
	GroupID  string
	OwnerID  string
	Kind     string
	Outcome  string
	Payout   int64
	Penalty  int64
	At       int64
}

type TaxRow struct {
	At      int64
	GroupID string
	Source  string
	Gross   int64
	Tax     int64
	Net     int64
}

type DisbursementRow struct {
	At       int64
	GroupID  string
	TargetID string
	Kind     string
	Amount   int64
}

func Open(path string) (*SQLiteLedger, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteLedger{
		db: db,
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL suits the append-style workload; NORMAL durability is fine for a
	// secondary index.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS settlements (
			effect_id TEXT NOT NULL,
			group_id TEXT NOT NULL,
			owner_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			outcome TEXT NOT NULL,
			payout INTEGER NOT NULL,
			penalty INTEGER NOT NULL,
			settled_at INTEGER NOT NULL,
			PRIMARY KEY (effect_id, outcome)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_settlements_group ON settlements(group_id, settled_at);`,
		`CREATE TABLE IF NOT EXISTS taxes (
			at INTEGER NOT NULL,
			group_id TEXT NOT NULL,
			source TEXT NOT NULL,
			gross INTEGER NOT NULL,
			tax INTEGER NOT NULL,
			net INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_taxes_group ON taxes(group_id, at);`,
		`CREATE TABLE IF NOT EXISTS disbursements (
			at INTEGER NOT NULL,
			group_id TEXT NOT NULL,
			target_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			amount INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_disbursements_group ON disbursements(group_id, at);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteLedger) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// EffectSettled implements the scheduler's settlement sink.
func (s *SQLiteLedger) EffectSettled(e *model.Effect, outcome string, payout, penalty int64) {
	if s == nil || s.closed.Load() {
		return
	}
	r := settlementRow{
		EffectID: e.ID,
		GroupID:  e.GroupID,
		OwnerID:  e.OwnerID,
		Kind:     string(e.Kind),
		Outcome:  outcome,
		Payout:   payout,
		Penalty:  penalty,
		At:       time.Now().Unix(),
	}
	select {
	case s.ch <- req{kind: reqSettlement, settlement: r}:
	default:
		// Drop if the indexer falls behind; the audit JSONL remains complete.
	}
}

func (s *SQLiteLedger) RecordTax(r TaxRow) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- req{kind: reqTax, tax: r}:
	default:
	}
}

func (s *SQLiteLedger) RecordDisbursement(r DisbursementRow) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- req{kind: reqDisbursement, disb: r}:
	default:
	}
}

func (s *SQLiteLedger) loop() {
	ctx := context.Background()

	insertSettlement, _ := s.db.Prepare(`INSERT OR REPLACE INTO settlements(effect_id,group_id,owner_id,kind,outcome,payout,penalty,settled_at) VALUES(?,?,?,?,?,?,?,?)`)
	insertTax, _ := s.db.Prepare(`INSERT INTO taxes(at,group_id,source,gross,tax,net) VALUES(?,?,?,?,?,?)`)
	insertDisb, _ := s.db.Prepare(`INSERT INTO disbursements(at,group_id,target_id,kind,amount) VALUES(?,?,?,?,?)`)
	defer func() {
		if insertSettlement != nil {
			_ = insertSettlement.Close()
		}
		if insertTax != nil {
			_ = insertTax.Close()
		}
		if insertDisb != nil {
			_ = insertDisb.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 500
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqSettlement:
			row := r.settlement
			if insertSettlement != nil {
				if _, err := tx.Stmt(insertSettlement).Exec(
					row.EffectID, row.GroupID, row.OwnerID, row.Kind,
					row.Outcome, row.Payout, row.Penalty, row.At,
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}
		case reqTax:
			row := r.tax
			if insertTax != nil {
				if _, err := tx.Stmt(insertTax).Exec(
					row.At, row.GroupID, row.Source, row.Gross, row.Tax, row.Net,
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}
		case reqDisbursement:
			row := r.disb
			if insertDisb != nil {
				if _, err := tx.Stmt(insertDisb).Exec(
					row.At, row.GroupID, row.TargetID, row.Kind, row.Amount,
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	commit()
}
