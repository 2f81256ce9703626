package mvc

import (
	"context"

	"gorm.io/gorm"
)

// IBaseDao 通用数据访问接口
type IBaseDao[T any] interface {
	Create(ctx context.Context, entity *T) error
	CreateBatch(ctx context.Context, entities []*T) error
	// DeleteById 软删除，模型未声明 DeletedAt 时为物理删除
	DeleteById(ctx context.Context, id interface{}) error
	// HardDeleteById 物理删除
	HardDeleteById(ctx context.Context, id interface{}) error
	// UpdateById 按 map 更新，零值字段同样写入
	UpdateById(ctx context.Context, id interface{}, fields map[string]interface{}) (int64, error)
	FindById(ctx context.Context, id interface{}) (*T, error)
	FindOneByColumn(ctx context.Context, column string, value interface{}) (*T, error)
	FindByMap(ctx context.Context, conditions map[string]interface{}) ([]*T, error)
	// FindPage 分页查询，scopes 用于追加过滤条件
	FindPage(ctx context.Context, page *Page, scopes ...func(*gorm.DB) *gorm.DB) ([]*T, int64, error)
	CountByMap(ctx context.Context, conditions map[string]interface{}) (int64, error)
	ExistsByMap(ctx context.Context, conditions map[string]interface{}) (bool, error)
	// WithTx 绑定事务，返回临时实例
	WithTx(tx *gorm.DB) IBaseDao[T]
	// DB 暴露底层连接，供复杂查询使用
	DB(ctx context.Context) *gorm.DB
}
