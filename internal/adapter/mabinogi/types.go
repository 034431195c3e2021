package mabinogi

import "AuctionSync/internal/model"

// listResponse 拍卖列表接口的成功响应
type listResponse struct {
	Items      []model.RawListing `json:"auction_item"`
	NextCursor *string            `json:"next_cursor"`
}

// errorResponse 接口错误响应：{"error": {"name": "OPENAPI00004", "message": "..."}}
type errorResponse struct {
	Error struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"error"`
}
