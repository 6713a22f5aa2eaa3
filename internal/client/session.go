package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hitoshi/taskman/internal/model"
)

// Session はログイン中のトークンとユーザー情報。
type Session struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
	User      model.PublicUser `json:"user"`
}

// SessionStore はセッションの保存先。
// 保存されていない場合、Loadは(nil, nil)を返す。
type SessionStore interface {
	Load() (*Session, error)
	Save(session *Session) error
	Clear() error
}

// FileSessionStore はセッションをJSONファイルに保存する。
// ファイルは所有者のみ読み書き可能（0600）で作成する。
type FileSessionStore struct {
	mu   sync.Mutex
	path string
}

// NewFileSessionStore はpathに保存するFileSessionStoreを生成する。
func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

// Load はファイルからセッションを読み込む。ファイルがなければ未ログインとして(nil, nil)を返す。
func (s *FileSessionStore) Load() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("セッションファイルの読み込みに失敗しました: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("セッションファイルの解析に失敗しました: %w", err)
	}
	if session.Token == "" {
		return nil, nil
	}
	return &session, nil
}

// Save はセッションを一時ファイル経由で書き込み、途中状態のファイルを残さない。
func (s *FileSessionStore) Save(session *Session) error {
	if session == nil {
		return s.Clear()
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("セッションのエンコードに失敗しました: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("セッションディレクトリの作成に失敗しました: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("一時ファイルの作成に失敗しました: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	// CreateTempは0600で作成する
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("セッションの書き込みに失敗しました: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("セッションの書き込みに失敗しました: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("セッションファイルの置き換えに失敗しました: %w", err)
	}
	return nil
}

// Clear はセッションファイルを削除する。存在しない場合は何もしない。
func (s *FileSessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("セッションファイルの削除に失敗しました: %w", err)
	}
	return nil
}

var _ SessionStore = (*FileSessionStore)(nil)
