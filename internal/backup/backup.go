// Package backup snapshots the local guest database before its records are
// discarded.
package backup

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitual/internal/logger"
)

const (
	// MaxSnapshots is how many snapshots are kept
	MaxSnapshots = 5
	DirName      = "backups"
	filePrefix   = "guest-"
	fileSuffix   = ".db"
	stampLayout  = "20060102-150405"
)

// Info describes one snapshot file.
type Info struct {
	Path      string
	Timestamp time.Time
	Size      int64
	seq       int // same-second counter
}

type Manager struct {
	dbPath string
	dir    string
	now    func() time.Time
}

// NewManager stores snapshots in a backups directory next to dbPath.
func NewManager(dbPath string) *Manager {
	return &Manager{
		dbPath: dbPath,
		dir:    filepath.Join(filepath.Dir(dbPath), DirName),
		now:    time.Now,
	}
}

func (m *Manager) Dir() string { return m.dir }

// Snapshot copies the database and prunes old snapshots. It returns the new
// file's path.
func (m *Manager) Snapshot(ctx context.Context) (string, error) {
	if _, err := os.Stat(m.dbPath); err != nil {
		return "", fmt.Errorf("database does not exist: %s", m.dbPath)
	}
	if err := os.MkdirAll(m.dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	stamp := m.now().Format(stampLayout)
	path := filepath.Join(m.dir, filePrefix+stamp+fileSuffix)
	for n := 1; fileExists(path); n++ {
		if n > 100 {
			return "", fmt.Errorf("failed to generate unique snapshot filename")
		}
		path = filepath.Join(m.dir, fmt.Sprintf("%s%s-%d%s", filePrefix, stamp, n, fileSuffix))
	}

	if err := m.vacuumInto(ctx, path); err != nil {
		return "", fmt.Errorf("failed to snapshot database: %w", err)
	}

	if err := m.prune(); err != nil {
		logger.Warn("failed to prune old snapshots", "error", err)
	}
	logger.Info("guest data snapshot created", "path", path)
	return path, nil
}

// vacuumInto writes a consistent copy through a read-only connection, falling
// back to a file copy.
func (m *Manager) vacuumInto(ctx context.Context, dest string) error {
	src, err := sql.Open("sqlite", m.dbPath+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer src.Close()

	var count int
	if err := src.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master").Scan(&count); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}

	if _, err := src.ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
		logger.Debug("VACUUM INTO failed, copying file", "error", err)
		return copyFile(m.dbPath, dest)
	}
	return nil
}

// List returns snapshots newest first.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	snapshots := []Info{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
		seq := 0
		if len(stamp) > len(stampLayout) {
			if n, err := strconv.Atoi(strings.TrimPrefix(stamp[len(stampLayout):], "-")); err == nil {
				seq = n
			}
			stamp = stamp[:len(stampLayout)]
		}
		ts, err := time.ParseInLocation(stampLayout, stamp, time.Local)
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		snapshots = append(snapshots, Info{
			Path:      filepath.Join(m.dir, name),
			Timestamp: ts,
			Size:      info.Size(),
			seq:       seq,
		})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		if snapshots[i].Timestamp.Equal(snapshots[j].Timestamp) {
			return snapshots[i].seq > snapshots[j].seq
		}
		return snapshots[i].Timestamp.After(snapshots[j].Timestamp)
	})
	return snapshots, nil
}

func (m *Manager) prune() error {
	snapshots, err := m.List()
	if err != nil {
		return err
	}
	for i := MaxSnapshots; i < len(snapshots); i++ {
		if err := os.Remove(snapshots[i].Path); err != nil {
			return fmt.Errorf("failed to remove old snapshot %s: %w", snapshots[i].Path, err)
		}
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.ReadFrom(in); err != nil {
		return err
	}
	return out.Sync()
}
