package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// 論理キー。ブラウザ版からの引継ぎデータと同じキー名を使う。
const (
	KeyPlan    = "haccpAppPlan_temporary"
	KeyRecords = "haccpAppRecords_temporary"
)

// Meta データディレクトリのメタ情報：data/meta.json
type Meta struct {
	SchemaVersion int       `json:"schemaVersion"`
	InstallID     string    `json:"installId"`
	CreatedAt     time.Time `json:"createdAt"`
}

const schemaVersion = 1

// Store 文字列キー/値のファイル永続化。値は1キー1ファイルの JSON 文字列で、
// 書き込みは一時ファイル + rename で中途半端な状態を残さない。
type Store struct {
	dir  string
	mu   sync.Mutex
	meta Meta
}

// New データディレクトリを用意してストアを開く。
// 初回起動時は meta.json を作り、インストール ID を採番する。
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("データディレクトリが指定されていません")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("データディレクトリの作成失敗: %w", err)
	}

	s := &Store{dir: dir}

	metaPath := s.path("meta.json")
	if fileExists(metaPath) {
		if err := readJSON(metaPath, &s.meta); err != nil {
			return nil, fmt.Errorf("メタ情報の読み込み失敗: %w", err)
		}
	}
	if s.meta.InstallID == "" {
		s.meta = Meta{
			SchemaVersion: schemaVersion,
			InstallID:     uuid.New().String(),
			CreatedAt:     time.Now().UTC(),
		}
		if err := writeJSONAtomic(metaPath, s.meta); err != nil {
			return nil, fmt.Errorf("メタ情報の書き込み失敗: %w", err)
		}
	}

	return s, nil
}

// InstallID この端末のインストール ID
func (s *Store) InstallID() string {
	return s.meta.InstallID
}

// Dir データディレクトリ
func (s *Store) Dir() string {
	return s.dir
}

// Get キーの値を読む。未保存のキーは空文字（エラーではない）。
func (s *Store) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.keyPath(key)
	if !fileExists(path) {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("読み込み失敗 %s: %w", key, err)
	}
	return string(data), nil
}

// Set キーへ値を書く（atomic）
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(key, value)
}

// SetBoth 計画と記録をまとめて書く。検証済みの値に対してのみ呼ぶこと。
func (s *Store) SetBoth(planValue, recordsValue string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.setLocked(KeyPlan, planValue); err != nil {
		return err
	}
	return s.setLocked(KeyRecords, recordsValue)
}

func (s *Store) setLocked(key, value string) error {
	path := s.keyPath(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0644); err != nil {
		return fmt.Errorf("書き込み失敗 %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("書き込み失敗 %s: %w", key, err)
	}
	return nil
}

// ClearAll 計画と記録の保存データを削除する（meta.json は残す）
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range []string{KeyPlan, KeyRecords} {
		path := s.keyPath(key)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("削除失敗 %s: %w", key, err)
		}
	}
	return nil
}

func (s *Store) keyPath(key string) string {
	return s.path(key + ".json")
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}
