package model

// Category 拍卖行物品分类（静态配置，启动时加载一次）
type Category struct {
	ID          string `json:"id"`          // API 参数值（auction_item_category），同时决定快照文件名
	DisplayName string `json:"displayName"` // 展示名称
	ParentGroup string `json:"parentGroup"` // 上级分组，可为空
}
