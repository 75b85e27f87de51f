package store

import "mzhou/pocket-ledger/internal/models"

// DefaultCategories is the built-in bilingual category set used when no
// categories file is present. Keyword lists carry both English and Chinese
// vocabulary so matching works on either language.
func DefaultCategories() []models.Category {
	return []models.Category{
		{
			ID:   1,
			Name: "Grocery",
			KeywordsEN: []string{
				"grocery", "supermarket", "costco", "walmart", "loblaws",
				"no frills", "metro", "t&t", "superstore", "food basics",
				"milk", "eggs", "bread", "vegetable", "fruit",
			},
			KeywordsZH: []string{
				"超市", "买菜", "菜", "水果", "牛奶", "鸡蛋", "面包", "蔬菜",
			},
			Icon:     "cart",
			Color:    "#4caf50",
			IsSystem: true,
		},
		{
			ID:   2,
			Name: "Dining",
			KeywordsEN: []string{
				"restaurant", "coffee", "latte", "lunch", "dinner", "breakfast",
				"starbucks", "tim hortons", "mcdonald", "pizza", "sushi",
				"burger", "takeout", "cafe", "bubble tea",
			},
			KeywordsZH: []string{
				"餐厅", "咖啡", "拿铁", "午餐", "晚餐", "早餐", "外卖",
				"奶茶", "火锅", "烧烤", "吃饭",
			},
			Icon:     "utensils",
			Color:    "#ff9800",
			IsSystem: true,
		},
		{
			ID:   3,
			Name: "Transport",
			KeywordsEN: []string{
				"uber", "lyft", "taxi", "gas", "fuel", "parking", "transit",
				"bus", "subway", "train", "presto",
			},
			KeywordsZH: []string{
				"打车", "滴滴", "地铁", "公交", "加油", "停车", "出租车",
			},
			Icon:     "car",
			Color:    "#2196f3",
			IsSystem: true,
		},
		{
			ID:   4,
			Name: "Shopping",
			KeywordsEN: []string{
				"amazon", "clothing", "shoes", "electronics", "ikea",
				"best buy", "mall", "online order",
			},
			KeywordsZH: []string{
				"淘宝", "京东", "购物", "衣服", "鞋", "网购",
			},
			Icon:     "bag",
			Color:    "#9c27b0",
			IsSystem: true,
		},
		{
			ID:   5,
			Name: "Entertainment",
			KeywordsEN: []string{
				"movie", "cinema", "netflix", "spotify", "game", "concert",
				"theatre", "steam",
			},
			KeywordsZH: []string{
				"电影", "游戏", "演唱会", "娱乐", "唱歌",
			},
			Icon:     "film",
			Color:    "#e91e63",
			IsSystem: true,
		},
		{
			ID:   6,
			Name: "Health",
			KeywordsEN: []string{
				"pharmacy", "doctor", "dentist", "clinic", "medicine",
				"shoppers", "gym", "vitamin",
			},
			KeywordsZH: []string{
				"药", "医院", "诊所", "牙医", "健身", "体检",
			},
			Icon:     "heart",
			Color:    "#f44336",
			IsSystem: true,
		},
		{
			ID:   7,
			Name: "Utilities",
			KeywordsEN: []string{
				"hydro", "electricity", "internet", "phone bill", "water bill",
				"rent", "insurance", "rogers", "bell",
			},
			KeywordsZH: []string{
				"电费", "水费", "房租", "网费", "话费", "保险",
			},
			Icon:     "bolt",
			Color:    "#607d8b",
			IsSystem: true,
		},
		{
			ID:         8,
			Name:       models.CategoryNameOther,
			KeywordsEN: []string{},
			KeywordsZH: []string{},
			Icon:       "ellipsis",
			Color:      "#9e9e9e",
			IsSystem:   true,
		},
	}
}
