package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"AuctionSync/internal/merger"
	"AuctionSync/internal/model"

	"github.com/sirupsen/logrus"
)

const (
	itemsDir     = "items"
	metaDir      = "meta"
	enchantsDir  = "enchants"
	reforgesFile = "reforges/reforges.json"
	ecostoneFile = "ecostones/abilities.json"
)

// FileStore 基于本地 JSON 文件的快照与元数据存储
// 快照整体覆盖；元数据目录先读旧文件再合并写入
type FileStore struct {
	root   string
	logger *logrus.Logger
	now    func() time.Time
}

// NewFileStore 创建文件存储，root 为输出根目录
func NewFileStore(root string, logger *logrus.Logger) *FileStore {
	return &FileStore{root: root, logger: logger, now: time.Now}
}

// Root 输出根目录
func (s *FileStore) Root() string {
	return s.root
}

// SnapshotPath items/<sanitized-id>.json
func (s *FileStore) SnapshotPath(categoryID string) string {
	return filepath.Join(s.root, itemsDir, SanitizeKey(categoryID)+".json")
}

// EnchantPath meta/enchants/<partition>.json
func (s *FileStore) EnchantPath(partition string) string {
	return filepath.Join(s.root, metaDir, enchantsDir, SanitizeKey(partition)+".json")
}

// SetCatalogPath 精工选项与生态石能力目录的文件路径
func (s *FileStore) SetCatalogPath(kind string) (string, error) {
	switch kind {
	case model.CatalogReforge:
		return filepath.Join(s.root, metaDir, filepath.FromSlash(reforgesFile)), nil
	case model.CatalogEcostone:
		return filepath.Join(s.root, metaDir, filepath.FromSlash(ecostoneFile)), nil
	}
	return "", fmt.Errorf("未知的目录类型: %s", kind)
}

// SaveCategorySnapshot 无条件覆盖分类快照
func (s *FileStore) SaveCategorySnapshot(categoryID string, items []model.NormalizedItem) error {
	if items == nil {
		items = []model.NormalizedItem{}
	}
	snap := model.CategorySnapshot{
		Updated: s.now().UTC(),
		Count:   len(items),
		Items:   items,
	}
	if err := writeJSONAtomic(s.SnapshotPath(categoryID), snap); err != nil {
		return fmt.Errorf("保存分类%s快照失败: %w", categoryID, err)
	}
	return nil
}

// LoadCategorySnapshot 读取上次落盘的分类快照；文件缺失或损坏时返回 false
func (s *FileStore) LoadCategorySnapshot(categoryID string) ([]model.NormalizedItem, bool) {
	var snap model.CategorySnapshot
	if !readJSON(s.logger, s.SnapshotPath(categoryID), &snap) {
		return nil, false
	}
	if snap.Items == nil {
		snap.Items = []model.NormalizedItem{}
	}
	return snap.Items, true
}

// LoadEnchants 读取附魔目录；缺失或损坏视为空
func (s *FileStore) LoadEnchants(partition string) model.EnchantCatalog {
	var f model.EnchantFile
	if !readJSON(s.logger, s.EnchantPath(partition), &f) || f.Enchants == nil {
		return model.EnchantCatalog{}
	}
	return f.Enchants
}

// SaveEnchants 与已落盘的附魔目录合并后写回，返回合并结果
func (s *FileStore) SaveEnchants(partition string, incoming model.EnchantCatalog) (model.EnchantCatalog, error) {
	merged := merger.MergeEnchant(s.LoadEnchants(partition), incoming)
	f := model.EnchantFile{Updated: s.now().UTC(), Enchants: merged}
	if err := writeJSONAtomic(s.EnchantPath(partition), f); err != nil {
		return nil, fmt.Errorf("保存附魔目录%s失败: %w", partition, err)
	}
	return merged, nil
}

// LoadSetCatalog 读取集合类目录；缺失或损坏视为空
func (s *FileStore) LoadSetCatalog(kind string) (model.SetCatalog, error) {
	path, err := s.SetCatalogPath(kind)
	if err != nil {
		return nil, err
	}
	var catalog model.SetCatalog
	switch kind {
	case model.CatalogReforge:
		var f model.ReforgeFile
		if readJSON(s.logger, path, &f) {
			catalog = f.Reforges
		}
	case model.CatalogEcostone:
		var f model.EcostoneFile
		if readJSON(s.logger, path, &f) {
			catalog = f.Ecostones
		}
	}
	if catalog == nil {
		catalog = model.SetCatalog{}
	}
	return catalog, nil
}

// SaveSetCatalog 与已落盘的集合目录合并后写回，返回合并结果
func (s *FileStore) SaveSetCatalog(kind string, incoming model.SetCatalog) (model.SetCatalog, error) {
	existing, err := s.LoadSetCatalog(kind)
	if err != nil {
		return nil, err
	}
	path, _ := s.SetCatalogPath(kind)
	merged := merger.MergeSetCatalog(existing, incoming)
	now := s.now().UTC()

	var doc any
	if kind == model.CatalogReforge {
		doc = model.ReforgeFile{Updated: now, Reforges: merged}
	} else {
		doc = model.EcostoneFile{Updated: now, Ecostones: merged}
	}
	if err := writeJSONAtomic(path, doc); err != nil {
		return nil, fmt.Errorf("保存%s目录失败: %w", kind, err)
	}
	return merged, nil
}

// readJSON 读取并解析 JSON 文件；不存在返回 false，读取/解析失败记录日志后也返回 false
func readJSON(logger *logrus.Logger, path string, v any) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.WithError(err).WithField("path", path).Warn("读取已有文件失败，按不存在处理")
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		logger.WithError(err).WithField("path", path).Warn("解析已有文件失败，按不存在处理")
		return false
	}
	return true
}

// writeJSONAtomic 先写临时文件再 rename，避免读者看到半截文件
func writeJSONAtomic(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	enc := json.NewEncoder(tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
