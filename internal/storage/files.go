package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyResult 文件拷贝结果
type CopyResult struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Error   string `json:"error,omitempty"`
}

// FileMover 附件拷贝边界（实际对象存储在进程外）
type FileMover interface {
	CopyFile(sourceURL, destFolder, destName string) CopyResult
}

// LocalFileMover 本地文件系统实现
type LocalFileMover struct {
	root string
}

func NewLocalFileMover(root string) *LocalFileMover { return &LocalFileMover{root: root} }

func (m *LocalFileMover) CopyFile(sourceURL, destFolder, destName string) CopyResult {
	src, err := os.Open(sourceURL)
	if err != nil {
		return CopyResult{Error: fmt.Sprintf("open source: %v", err)}
	}
	defer src.Close()

	dir := filepath.Join(m.root, destFolder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return CopyResult{Error: fmt.Sprintf("mkdir: %v", err)}
	}
	destPath := filepath.Join(dir, destName)
	dst, err := os.Create(destPath)
	if err != nil {
		return CopyResult{Error: fmt.Sprintf("create dest: %v", err)}
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return CopyResult{Error: fmt.Sprintf("copy: %v", err)}
	}
	return CopyResult{Success: true, URL: destPath}
}
