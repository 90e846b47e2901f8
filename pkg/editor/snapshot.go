package editor

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/haierkeys/ecrit-note-service/pkg/fileurl"

	"github.com/pkg/errors"
)

// ErrInvalidNoteID note id cannot be mapped to a snapshot file
// ErrInvalidNoteID 笔记 ID 无法映射为快照文件名
var ErrInvalidNoteID = errors.New("invalid note id for snapshot")

// SnapshotStore keeps the local draft of a note at {dir}/{noteId}.md
// SnapshotStore 将笔记的本地草稿保存在 {dir}/{noteId}.md
type SnapshotStore struct {
	dir string
}

// NewSnapshotStore 创建快照存储
func NewSnapshotStore(dir string) *SnapshotStore {
	return &SnapshotStore{dir: dir}
}

func (s *SnapshotStore) path(noteID string) (string, error) {
	if noteID == "" || noteID != filepath.Base(noteID) || strings.HasPrefix(noteID, ".") {
		return "", errors.Wrapf(ErrInvalidNoteID, "%q", noteID)
	}
	return filepath.Join(s.dir, noteID+".md"), nil
}

// Write 原子写入快照
func (s *SnapshotStore) Write(noteID, content string) error {
	p, err := s.path(noteID)
	if err != nil {
		return err
	}
	return fileurl.WriteFileAtomic(p, []byte(content), 0o600)
}

// Read returns the snapshot content, ok is false when none exists
// Read 读取快照内容，不存在时 ok 为 false
func (s *SnapshotStore) Read(noteID string) (content string, ok bool, err error) {
	p, err := s.path(noteID)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "read snapshot")
	}
	return string(data), true, nil
}

// Remove 删除快照，不存在时不报错
func (s *SnapshotStore) Remove(noteID string) error {
	p, err := s.path(noteID)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove snapshot")
	}
	return nil
}
