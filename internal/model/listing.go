package model

import "time"

// 物品选项类型标签（option_type），用于判断是否携带元数据
const (
	OptionTypeEnchant  = "인챈트"
	OptionTypeReforge  = "세공 옵션"
	OptionTypeEcostone = "에코스톤 각성 능력"
)

// ItemOption 拍卖条目上的单个选项记录
type ItemOption struct {
	Type    string `json:"option_type"`
	SubType string `json:"option_sub_type,omitempty"`
	Value   string `json:"option_value"`
	Value2  string `json:"option_value2,omitempty"`
	Desc    string `json:"option_desc,omitempty"`
}

// RawListing API 返回的单条拍卖记录（仅在一次运行中存在，不直接落盘）
type RawListing struct {
	ItemName     string       `json:"item_name"`
	DisplayName  string       `json:"item_display_name"`
	Count        int          `json:"item_count"`
	PricePerUnit int64        `json:"auction_price_per_unit"`
	ExpireAt     string       `json:"date_auction_expire,omitempty"`
	Options      []ItemOption `json:"item_option"`
}

// NormalizedItem 归一化后的物品记录，写入分类快照
type NormalizedItem struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Price       int64  `json:"price"`
	Count       int    `json:"count"`
	ExpireAt    string `json:"expireAt,omitempty"`
	HasEnchant  bool   `json:"hasEnchant"`
	HasReforge  bool   `json:"hasReforge"`
	HasEcostone bool   `json:"hasEcostone"`
}

// CategorySnapshot 单个分类的当前行情快照（每次运行整体覆盖）
type CategorySnapshot struct {
	Updated time.Time        `json:"updated"`
	Count   int              `json:"count"`
	Items   []NormalizedItem `json:"items"`
}

// Page 一次分页请求的结果
// UsedFallback 为 true 时 Items 为空，Restored 为上次落盘的快照内容
type Page struct {
	Items        []RawListing
	NextCursor   string
	UsedFallback bool
	Restored     []NormalizedItem
}
