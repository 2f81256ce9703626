package mvc

import (
	"gorm.io/gorm"
)

const maxPageSize = 100

type Page struct {
	PageNum int    `json:"pageNum" query:"pageNum"`
	Size    int    `json:"size" query:"size"`
	Sort    string `json:"sort" query:"-"`
}

// Normalize 页码从 1 开始，每页默认 10 条，上限 100 条
func (page *Page) Normalize() (int, int) {
	if page.PageNum <= 0 {
		page.PageNum = 1
	}
	if page.Size <= 0 {
		page.Size = 10
	}
	if page.Size > maxPageSize {
		page.Size = maxPageSize
	}
	return (page.PageNum - 1) * page.Size, page.Size
}

func Paginate(page *Page) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		offset, size := page.Normalize()
		return db.Offset(offset).Limit(size)
	}
}

// PageResult 分页返回结构
type PageResult[T any] struct {
	List    []*T  `json:"list"`
	Total   int64 `json:"total"`
	PageNum int   `json:"pageNum"`
	Size    int   `json:"size"`
}

func NewPageResult[T any](list []*T, total int64, page *Page) *PageResult[T] {
	if list == nil {
		list = []*T{}
	}
	return &PageResult[T]{List: list, Total: total, PageNum: page.PageNum, Size: page.Size}
}
