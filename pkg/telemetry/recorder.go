// Package telemetry 把 NPC 状态切换写入 SQLite，供离线分析行为轨迹
//
// 每次运行分配一个会话 ID；切换先缓存在内存中，按批写入。
package telemetry

import (
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DefaultBatchSize 缓冲达到该条数时自动写入
const DefaultBatchSize = 256

// Transition 一条状态切换记录
type Transition struct {
	Session   string  `db:"session"`
	SimTime   float64 `db:"sim_time"`
	EntityID  uint64  `db:"entity_id"`
	Archetype string  `db:"archetype"`
	FromState string  `db:"from_state"`
	ToState   string  `db:"to_state"`
}

// StateCount 某个目标状态的进入次数
type StateCount struct {
	State string `db:"to_state"`
	Count int    `db:"n"`
}

// Recorder 状态切换记录器
//
// Record 可以在模拟循环中调用；写入错误只记录日志并在 Flush/Close 时返回。
type Recorder struct {
	conn      *sqlx.DB
	session   string
	batchSize int

	mu      sync.Mutex
	pending []Transition
	written int
	lastErr error
}

// Open 打开（或创建）数据库文件并开始一个新会话
func Open(path string) (*Recorder, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open trace db: %w", err)
	}
	r := &Recorder{
		conn:      conn,
		session:   uuid.NewString(),
		batchSize: DefaultBatchSize,
	}
	if err := r.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate trace db: %w", err)
	}
	if _, err := conn.Exec(`INSERT INTO sessions (id, started_at) VALUES (?, datetime('now'))`, r.session); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create session: %w", err)
	}
	log.Printf("[Telemetry] 会话 %s 记录到 %s", r.session, path)
	return r, nil
}

func (r *Recorder) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS transitions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session TEXT NOT NULL,
		sim_time REAL NOT NULL,
		entity_id INTEGER NOT NULL,
		archetype TEXT NOT NULL,
		from_state TEXT NOT NULL,
		to_state TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transitions_session ON transitions(session);
	CREATE INDEX IF NOT EXISTS idx_transitions_entity ON transitions(session, entity_id);
	`
	_, err := r.conn.Exec(schema)
	return err
}

// Session 当前会话 ID
func (r *Recorder) Session() string {
	return r.session
}

// SetBatchSize 设置自动写入的批大小（≤0 表示每条都写入）
func (r *Recorder) SetBatchSize(n int) {
	r.mu.Lock()
	r.batchSize = n
	r.mu.Unlock()
}

// Record 缓存一条切换记录
func (r *Recorder) Record(simTime float64, entityID uint64, archetype, from, to string) {
	r.mu.Lock()
	r.pending = append(r.pending, Transition{
		Session:   r.session,
		SimTime:   simTime,
		EntityID:  entityID,
		Archetype: archetype,
		FromState: from,
		ToState:   to,
	})
	full := len(r.pending) >= r.batchSize
	r.mu.Unlock()

	if full {
		if err := r.Flush(); err != nil {
			log.Printf("[Telemetry] 写入失败: %v", err)
		}
	}
}

// Flush 把缓存写入数据库
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pending) == 0 {
		return r.lastErr
	}

	tx, err := r.conn.Beginx()
	if err != nil {
		r.lastErr = err
		return err
	}
	defer tx.Rollback()

	_, err = tx.NamedExec(`INSERT INTO transitions
		(session, sim_time, entity_id, archetype, from_state, to_state)
		VALUES (:session, :sim_time, :entity_id, :archetype, :from_state, :to_state)`, r.pending)
	if err != nil {
		r.lastErr = fmt.Errorf("insert transitions: %w", err)
		return r.lastErr
	}
	if err := tx.Commit(); err != nil {
		r.lastErr = fmt.Errorf("commit transitions: %w", err)
		return r.lastErr
	}
	r.written += len(r.pending)
	r.pending = r.pending[:0]
	return nil
}

// Written 已写入数据库的记录数
func (r *Recorder) Written() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.written
}

// Close 写入剩余缓存并关闭数据库
func (r *Recorder) Close() error {
	flushErr := r.Flush()
	if err := r.conn.Close(); err != nil {
		return err
	}
	return flushErr
}

// StateCounts 本会话每个目标状态的进入次数，按次数降序
func (r *Recorder) StateCounts() ([]StateCount, error) {
	var counts []StateCount
	err := r.conn.Select(&counts, `SELECT to_state, COUNT(*) AS n FROM transitions
		WHERE session = ? GROUP BY to_state ORDER BY n DESC, to_state`, r.session)
	if err != nil {
		return nil, fmt.Errorf("query state counts: %w", err)
	}
	return counts, nil
}

// EntityHistory 本会话中某个实体的全部切换，按时间排序
func (r *Recorder) EntityHistory(entityID uint64) ([]Transition, error) {
	var out []Transition
	err := r.conn.Select(&out, `SELECT session, sim_time, entity_id, archetype, from_state, to_state
		FROM transitions WHERE session = ? AND entity_id = ? ORDER BY id`, r.session, entityID)
	if err != nil {
		return nil, fmt.Errorf("query entity history: %w", err)
	}
	return out, nil
}

// Sessions 数据库中所有会话 ID，按开始时间排序
func (r *Recorder) Sessions() ([]string, error) {
	var ids []string
	if err := r.conn.Select(&ids, `SELECT id FROM sessions ORDER BY started_at, id`); err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	return ids, nil
}
