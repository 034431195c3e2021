// Package report 把元数据目录导出为 xlsx，方便人工查阅
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"AuctionSync/internal/interfaces"
	"AuctionSync/internal/model"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

const (
	sheetEnchants  = "Enchants"
	sheetReforges  = "Reforges"
	sheetEcostones = "Ecostones"
)

// CatalogReport 生成 meta/catalog.xlsx
type CatalogReport struct {
	path   string
	logger *logrus.Logger
}

func NewCatalogReport(outputDir string, logger *logrus.Logger) interfaces.CatalogReporter {
	return &CatalogReport{
		path:   filepath.Join(outputDir, "meta", "catalog.xlsx"),
		logger: logger,
	}
}

// Write 覆盖写入报表，返回文件路径
func (r *CatalogReport) Write(enchants map[string]model.EnchantCatalog, sets map[string]model.SetCatalog) (string, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			r.logger.WithError(err).Warn("关闭报表文件失败")
		}
	}()

	if err := f.SetSheetName("Sheet1", sheetEnchants); err != nil {
		return "", err
	}
	if err := writeEnchantSheet(f, enchants); err != nil {
		return "", fmt.Errorf("写入附魔工作表失败: %w", err)
	}
	if err := writeSetSheet(f, sheetReforges, sets[model.CatalogReforge]); err != nil {
		return "", fmt.Errorf("写入精工工作表失败: %w", err)
	}
	if err := writeSetSheet(f, sheetEcostones, sets[model.CatalogEcostone]); err != nil {
		return "", fmt.Errorf("写入生态石工作表失败: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	tmp := filepath.Join(dir, ".catalog-tmp.xlsx")
	if err := f.SaveAs(tmp); err != nil {
		return "", fmt.Errorf("保存报表失败: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return r.path, nil
}

func writeEnchantSheet(f *excelize.File, enchants map[string]model.EnchantCatalog) error {
	if err := writeHeader(f, sheetEnchants, []interface{}{"分区", "名称", "等级", "效果", "最小值", "最大值", "百分比"}); err != nil {
		return err
	}
	row := 2
	for _, partition := range []string{model.EnchantPrefix, model.EnchantSuffix} {
		catalog := enchants[partition]
		names := make([]string, 0, len(catalog))
		for name := range catalog {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			entry := catalog[name]
			effects := entry.Effects
			if len(effects) == 0 {
				effects = []model.EnchantEffect{{}}
			}
			for _, eff := range effects {
				values := []interface{}{partition, entry.Name, entry.Rank, eff.Text, floatCell(eff.Min), floatCell(eff.Max), eff.IsPercent}
				if err := setRow(f, sheetEnchants, row, values); err != nil {
					return err
				}
				row++
			}
		}
	}
	return nil
}

func writeSetSheet(f *excelize.File, sheet string, catalog model.SetCatalog) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := writeHeader(f, sheet, []interface{}{"类型", "名称"}); err != nil {
		return err
	}
	types := make([]string, 0, len(catalog))
	for typ := range catalog {
		types = append(types, typ)
	}
	sort.Strings(types)

	row := 2
	for _, typ := range types {
		for _, name := range catalog[typ] {
			if err := setRow(f, sheet, row, []interface{}{typ, name}); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, header []interface{}) error {
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func floatCell(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
