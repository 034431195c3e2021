package service

import (
	"AuctionSync/internal/extractor"
	"AuctionSync/internal/model"
)

// Processor 把原始拍卖记录归一化，并把选项中的元数据累积到 RunContext
type Processor struct{}

func NewProcessor() *Processor {
	return &Processor{}
}

// Process 归一化一个分类的拍卖记录；无法解析的选项直接跳过
func (p *Processor) Process(listings []model.RawListing, categoryID string, run *RunContext) []model.NormalizedItem {
	items := make([]model.NormalizedItem, 0, len(listings))
	for _, l := range listings {
		item := model.NormalizedItem{
			Name:        l.ItemName,
			DisplayName: l.DisplayName,
			Price:       l.PricePerUnit,
			Count:       l.Count,
			ExpireAt:    l.ExpireAt,
		}

		for _, opt := range l.Options {
			switch opt.Type {
			case model.OptionTypeEnchant:
				item.HasEnchant = true
				if fact, ok := extractor.ParseEnchant(opt.Value, opt.SubType, opt.Desc); ok {
					run.AddEnchant(fact)
				}
			case model.OptionTypeReforge:
				item.HasReforge = true
				if fact, ok := extractor.ParseReforge(opt.Value, categoryID); ok {
					run.AddReforge(fact)
				}
			case model.OptionTypeEcostone:
				item.HasEcostone = true
				if fact, ok := extractor.ParseEcostone(opt.Value, l.DisplayName); ok {
					run.AddEcostone(fact)
				}
			}
		}
		items = append(items, item)
	}
	return items
}
