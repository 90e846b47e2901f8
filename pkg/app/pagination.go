package app

// Pager pagination info returned with every listing
// Pager 列表响应中的翻页信息
type Pager struct {
	Page       int   `json:"page"`       // Page number // 页码
	Limit      int   `json:"limit"`      // Page size // 每页数量
	Total      int64 `json:"total"`      // Total rows // 总行数
	TotalPages int   `json:"totalPages"` // ceil(total/limit)
	HasMore    bool  `json:"hasMore"`    // page < totalPages
}

// NewPager builds the pager from already clamped page/limit
// NewPager 根据已归一化的 page/limit 与总数生成翻页信息
func NewPager(page, limit int, total int64) Pager {
	p := Pager{Page: page, Limit: limit, Total: total}
	if limit > 0 && total > 0 {
		p.TotalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	p.HasMore = page < p.TotalPages
	return p
}
