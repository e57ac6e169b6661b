package cvedb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"CVESummary/internal/model"
	"CVESummary/internal/utils"

	_ "github.com/mattn/go-sqlite3"
)

// CVEDatabase 本地CVE记录缓存
type CVEDatabase struct {
	db     *sql.DB
	path   string
	logger *utils.Logger
	now    func() time.Time
}

func NewCVEDatabase(dbPath string) (*CVEDatabase, error) {
	logger := utils.NewLogger("cvedb")

	// 确保目录存在
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("创建数据库目录失败: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}
	// sqlite 单写者
	db.SetMaxOpenConns(1)

	cvedb := &CVEDatabase{
		db:     db,
		path:   dbPath,
		logger: logger,
		now:    time.Now,
	}

	// 初始化表
	if err := cvedb.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("初始化数据表失败: %w", err)
	}

	return cvedb, nil
}

func (cd *CVEDatabase) initTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS cve_records (
		cve_id TEXT PRIMARY KEY NOT NULL,
		body BLOB NOT NULL,
		fetched_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_fetched_at ON cve_records(fetched_at);

	CREATE TABLE IF NOT EXISTS fetch_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cve_id TEXT NOT NULL,
		outcome TEXT NOT NULL,
		fetched_at INTEGER NOT NULL
	);
	`

	_, err := cd.db.Exec(schema)
	return err
}

// SaveRecord 写入或替换一条记录
func (cd *CVEDatabase) SaveRecord(cveID string, record *model.CVERecord) error {
	if record == nil {
		return fmt.Errorf("记录为空: %s", cveID)
	}

	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("序列化记录失败 %s: %w", cveID, err)
	}

	_, err = cd.db.Exec(`
		INSERT OR REPLACE INTO cve_records (cve_id, body, fetched_at)
		VALUES (?, ?, ?)`,
		cveID, body, cd.now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("保存记录失败 %s: %w", cveID, err)
	}
	return nil
}

// GetRecord 读取缓存记录，fresh 表示未超过 maxAge；maxAge<=0 时总是视为新鲜
func (cd *CVEDatabase) GetRecord(cveID string, maxAge time.Duration) (record *model.CVERecord, fresh bool, err error) {
	var body []byte
	var fetchedAt int64

	err = cd.db.QueryRow(`
		SELECT body, fetched_at FROM cve_records WHERE cve_id = ?`, cveID,
	).Scan(&body, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("读取缓存失败 %s: %w", cveID, err)
	}

	var rec model.CVERecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, false, fmt.Errorf("缓存内容损坏 %s: %w", cveID, err)
	}

	age := cd.now().Sub(time.Unix(0, fetchedAt))
	fresh = maxAge <= 0 || age <= maxAge
	return &rec, fresh, nil
}

// Prune 删除超过 gcTime 的记录，返回删除数量
func (cd *CVEDatabase) Prune(gcTime time.Duration) (int64, error) {
	cutoff := cd.now().Add(-gcTime).UnixNano()
	res, err := cd.db.Exec(`DELETE FROM cve_records WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("清理缓存失败: %w", err)
	}

	n, _ := res.RowsAffected()
	if n > 0 {
		cd.logger.Info("清理过期缓存 %d 条", n)
	}
	return n, nil
}

// RecordFetch 记录一次拉取结果
func (cd *CVEDatabase) RecordFetch(cveID, outcome string) error {
	_, err := cd.db.Exec(`
		INSERT INTO fetch_history (cve_id, outcome, fetched_at)
		VALUES (?, ?, ?)`,
		cveID, outcome, cd.now().UnixNano(),
	)
	if err != nil {
		cd.logger.Error("记录拉取历史失败: %v", err)
	}
	return err
}

// GetFetchHistory 获取最近的拉取历史
func (cd *CVEDatabase) GetFetchHistory(limit int) ([]model.FetchOutcome, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := cd.db.Query(`
		SELECT cve_id, outcome, fetched_at
		FROM fetch_history
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []model.FetchOutcome
	for rows.Next() {
		var item model.FetchOutcome
		var fetchedAt int64
		if err := rows.Scan(&item.CVEID, &item.Outcome, &fetchedAt); err != nil {
			continue
		}
		item.FetchedAt = time.Unix(0, fetchedAt)
		history = append(history, item)
	}

	return history, rows.Err()
}

// Count 获取缓存记录总数
func (cd *CVEDatabase) Count() (int, error) {
	var count int
	err := cd.db.QueryRow("SELECT COUNT(*) FROM cve_records").Scan(&count)
	return count, err
}

func (cd *CVEDatabase) Path() string {
	return cd.path
}

func (cd *CVEDatabase) Close() error {
	return cd.db.Close()
}
