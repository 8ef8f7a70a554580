package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/TaraJura/trade-bot/internal/domain"
	"github.com/TaraJura/trade-bot/internal/profit"
)

var log = logrus.WithField("module", "journal")

// Store 本地成交日志（SQLite）
//
// 状态轮询里看到的 recent_trades 会被去重写入，用于生成真实的每日收益曲线。
type Store struct {
	db *sql.DB
}

var _ profit.Source = (*Store)(nil)

// Open 打开（必要时创建）日志库
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("journal path is required")
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir journal dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close 关闭数据库
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`
CREATE TABLE IF NOT EXISTS trades (
  ts_ms INTEGER NOT NULL,
  symbol TEXT NOT NULL,
  action TEXT NOT NULL,
  price REAL NOT NULL,
  quantity REAL NOT NULL,
  profit REAL,
  test_mode INTEGER NOT NULL DEFAULT 0,
  recorded_at TEXT NOT NULL,
  UNIQUE (ts_ms, symbol, action, price, quantity)
);`,
		`CREATE INDEX IF NOT EXISTS idx_trades_ts ON trades(ts_ms);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Record 写入成交，已存在的忽略；返回新增条数
func (s *Store) Record(ctx context.Context, trades []domain.Trade) (int, error) {
	if len(trades) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT OR IGNORE INTO trades (ts_ms, symbol, action, price, quantity, profit, test_mode, recorded_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	inserted := 0
	for _, t := range trades {
		if t.Timestamp.IsZero() || t.Symbol == "" {
			continue
		}
		var profitVal any
		if t.Profit != nil {
			profitVal = *t.Profit
		}
		testMode := 0
		if t.TestMode {
			testMode = 1
		}
		res, err := stmt.ExecContext(ctx, t.Timestamp.Millis(), t.Symbol, string(t.Action), t.Price, t.Quantity, profitVal, testMode, now)
		if err != nil {
			return 0, fmt.Errorf("insert trade %s: %w", t.Symbol, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	if inserted > 0 {
		log.Debugf("记录成交 %d 条", inserted)
	}
	return inserted, nil
}

// Count 已记录成交数
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM trades`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count trades: %w", err)
	}
	return n, nil
}

// DailyProfit 按 now 所在时区的自然日汇总已实现收益，无成交的日子为 0
func (s *Store) DailyProfit(ctx context.Context, days int, now time.Time) ([]profit.Point, error) {
	dates := profit.Days(days, now)
	if len(dates) == 0 {
		return nil, nil
	}
	from := dates[0]
	to := dates[len(dates)-1].AddDate(0, 0, 1)

	rows, err := s.db.QueryContext(ctx, `
SELECT ts_ms, profit FROM trades
WHERE profit IS NOT NULL AND ts_ms >= ? AND ts_ms < ?
ORDER BY ts_ms`, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("query daily profit: %w", err)
	}
	defer rows.Close()

	index := make(map[string]int, len(dates))
	points := make([]profit.Point, len(dates))
	for i, d := range dates {
		points[i] = profit.Point{Day: d}
		index[d.Format(profit.DayLayout)] = i
	}

	for rows.Next() {
		var (
			ts int64
			p  float64
		)
		if err := rows.Scan(&ts, &p); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		key := time.UnixMilli(ts).In(now.Location()).Format(profit.DayLayout)
		if i, ok := index[key]; ok {
			points[i].Profit += p
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trades: %w", err)
	}
	return points, nil
}
