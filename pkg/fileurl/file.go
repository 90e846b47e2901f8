// Package fileurl 文件与路径辅助函数
package fileurl

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// IsExist 判断所给路径是否存在
func IsExist(dst string) bool {
	_, err := os.Stat(dst)
	if err != nil {
		return os.IsExist(err)
	}
	return true
}

// CreatePath 创建 dst 的父目录
func CreatePath(dst string, perm os.FileMode) error {
	return os.MkdirAll(filepath.Dir(dst), perm)
}

// WriteFileAtomic writes data to a temp file in the same directory and renames it over dst,
// readers see either the old content or the new one
// WriteFileAtomic 先写入同目录临时文件再重命名，读者只会看到旧内容或新内容
func WriteFileAtomic(dst string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create dir")
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "write temp file")
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "sync temp file")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	if err = os.Chmod(tmpName, perm); err != nil {
		return errors.Wrap(err, "chmod temp file")
	}
	if err = os.Rename(tmpName, dst); err != nil {
		return errors.Wrap(err, "rename temp file")
	}
	return nil
}
