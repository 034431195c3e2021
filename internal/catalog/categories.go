// Package catalog 拍卖行分类的静态清单
package catalog

import (
	"fmt"

	"AuctionSync/internal/model"
)

// 上级分组
const (
	GroupMelee     = "근거리 장비"
	GroupRanged    = "원거리 장비"
	GroupMagic     = "마법 장비"
	GroupArmor     = "갑옷"
	GroupDefense   = "방어 장비"
	GroupAccessory = "액세서리"
	GroupSpecial   = "특수 장비"
	GroupEnchant   = "인챈트 용품"
	GroupScroll    = "스크롤"
	GroupConsume   = "소모품"
	GroupMisc      = "기타"
)

// categories 顺序即采集顺序
var categories = []model.Category{
	{ID: "한손 장비", DisplayName: "한손 장비", ParentGroup: GroupMelee},
	{ID: "양손 장비", DisplayName: "양손 장비", ParentGroup: GroupMelee},
	{ID: "검", DisplayName: "검", ParentGroup: GroupMelee},
	{ID: "도끼", DisplayName: "도끼", ParentGroup: GroupMelee},
	{ID: "둔기", DisplayName: "둔기", ParentGroup: GroupMelee},
	{ID: "랜스", DisplayName: "랜스", ParentGroup: GroupMelee},
	{ID: "핸들", DisplayName: "핸들", ParentGroup: GroupMelee},
	{ID: "너클", DisplayName: "너클", ParentGroup: GroupMelee},
	{ID: "체인 블레이드", DisplayName: "체인 블레이드", ParentGroup: GroupMelee},

	{ID: "활", DisplayName: "활", ParentGroup: GroupRanged},
	{ID: "석궁", DisplayName: "석궁", ParentGroup: GroupRanged},
	{ID: "듀얼건", DisplayName: "듀얼건", ParentGroup: GroupRanged},
	{ID: "아틀라틀", DisplayName: "아틀라틀", ParentGroup: GroupRanged},
	{ID: "수리검", DisplayName: "수리검", ParentGroup: GroupRanged},

	{ID: "실린더", DisplayName: "실린더", ParentGroup: GroupMagic},
	{ID: "스태프", DisplayName: "스태프", ParentGroup: GroupMagic},
	{ID: "원드", DisplayName: "원드", ParentGroup: GroupMagic},
	{ID: "마도서", DisplayName: "마도서", ParentGroup: GroupMagic},
	{ID: "오브", DisplayName: "오브", ParentGroup: GroupMagic},

	{ID: "중갑옷", DisplayName: "중갑옷", ParentGroup: GroupArmor},
	{ID: "경갑옷", DisplayName: "경갑옷", ParentGroup: GroupArmor},
	{ID: "천옷", DisplayName: "천옷", ParentGroup: GroupArmor},

	{ID: "장갑", DisplayName: "장갑", ParentGroup: GroupDefense},
	{ID: "신발", DisplayName: "신발", ParentGroup: GroupDefense},
	{ID: "모자/가발", DisplayName: "모자/가발", ParentGroup: GroupDefense},
	{ID: "방패", DisplayName: "방패", ParentGroup: GroupDefense},
	{ID: "로브", DisplayName: "로브", ParentGroup: GroupDefense},

	{ID: "얼굴 장식", DisplayName: "얼굴 장식", ParentGroup: GroupAccessory},
	{ID: "액세서리", DisplayName: "액세서리", ParentGroup: GroupAccessory},
	{ID: "날개", DisplayName: "날개", ParentGroup: GroupAccessory},
	{ID: "꼬리", DisplayName: "꼬리", ParentGroup: GroupAccessory},

	{ID: "에코스톤", DisplayName: "에코스톤", ParentGroup: GroupSpecial},
	{ID: "에이도스", DisplayName: "에이도스", ParentGroup: GroupSpecial},
	{ID: "토템", DisplayName: "토템", ParentGroup: GroupSpecial},

	{ID: "인챈트 스크롤", DisplayName: "인챈트 스크롤", ParentGroup: GroupEnchant},
	{ID: "마기그래프", DisplayName: "마기그래프", ParentGroup: GroupEnchant},

	{ID: "도면", DisplayName: "도면", ParentGroup: GroupScroll},
	{ID: "옷본", DisplayName: "옷본", ParentGroup: GroupScroll},
	{ID: "마족 스크롤", DisplayName: "마족 스크롤", ParentGroup: GroupScroll},
	{ID: "악보", DisplayName: "악보", ParentGroup: GroupScroll},

	{ID: "포션", DisplayName: "포션", ParentGroup: GroupConsume},
	{ID: "음식", DisplayName: "음식", ParentGroup: GroupConsume},
	{ID: "허브", DisplayName: "허브", ParentGroup: GroupConsume},
	{ID: "던전 통행증", DisplayName: "던전 통행증", ParentGroup: GroupConsume},
	{ID: "알반 훈련석", DisplayName: "알반 훈련석", ParentGroup: GroupConsume},
	{ID: "개조석", DisplayName: "개조석", ParentGroup: GroupConsume},
	{ID: "보석", DisplayName: "보석", ParentGroup: GroupConsume},
	{ID: "변신 메달", DisplayName: "변신 메달", ParentGroup: GroupConsume},
	{ID: "염색 앰플", DisplayName: "염색 앰플", ParentGroup: GroupConsume},

	{ID: "기타 재료", DisplayName: "기타 재료", ParentGroup: GroupMisc},
	{ID: "기타 소모품", DisplayName: "기타 소모품", ParentGroup: GroupMisc},
	{ID: "기타", DisplayName: "기타", ParentGroup: GroupMisc},
}

var byID = func() map[string]model.Category {
	m := make(map[string]model.Category, len(categories))
	for _, c := range categories {
		m[c.ID] = c
	}
	return m
}()

// All 返回全部分类的副本
func All() []model.Category {
	out := make([]model.Category, len(categories))
	copy(out, categories)
	return out
}

// Lookup 按 ID 查找分类
func Lookup(id string) (model.Category, bool) {
	c, ok := byID[id]
	return c, ok
}

// Select 按给定 ID 顺序挑选分类；ids 为空时返回全部
func Select(ids []string) ([]model.Category, error) {
	if len(ids) == 0 {
		return All(), nil
	}
	out := make([]model.Category, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("未知分类: %s", id)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

// Groups 返回上级分组 → 分类 ID 列表
func Groups() map[string][]string {
	out := make(map[string][]string)
	for _, c := range categories {
		out[c.ParentGroup] = append(out[c.ParentGroup], c.ID)
	}
	return out
}
