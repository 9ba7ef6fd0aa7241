package receipt

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const maxNameAttempts = 1000

// FileSink はレシートを receipt_YYYYMMDD_HHMMSS.txt として書き出す。
type FileSink struct {
	dir string
}

func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

func (s *FileSink) Dir() string {
	return s.dir
}

// FileName は会計時刻から決まるファイル名
func FileName(soldAt time.Time) string {
	return "receipt_" + soldAt.Format("20060102_150405") + ".txt"
}

// Write は本文＋改行を新規ファイルに書く。既存ファイルは上書きしない。
// 同じ秒に2件あれば _2, _3 ... を付ける。
func (s *FileSink) Write(soldAt time.Time, text string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create receipt dir: %w", err)
	}

	base := FileName(soldAt)
	for n := 1; n <= maxNameAttempts; n++ {
		name := base
		if n > 1 {
			name = fmt.Sprintf("%s_%d.txt", base[:len(base)-len(".txt")], n)
		}
		path := filepath.Join(s.dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create receipt: %w", err)
		}

		if _, err := f.WriteString(text + "\n"); err != nil {
			f.Close()
			os.Remove(path)
			return "", fmt.Errorf("write receipt: %w", err)
		}
		if err := f.Close(); err != nil {
			os.Remove(path)
			return "", fmt.Errorf("close receipt: %w", err)
		}
		return path, nil
	}

	return "", fmt.Errorf("no free receipt name for %s", base)
}

// Discard はコミットできなかった会計のレシートを消す。
func (s *FileSink) Discard(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
