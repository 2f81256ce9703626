package mvc

import (
	"context"

	"gorm.io/gorm"
)

// BaseService 基础服务，业务服务通过嵌入复用 CRUD
type BaseService[T any] struct {
	Dao IBaseDao[T]
}

func NewBaseService[T any](dao IBaseDao[T]) *BaseService[T] {
	return &BaseService[T]{
		Dao: dao,
	}
}

func (s *BaseService[T]) Create(ctx context.Context, entity *T) error {
	return s.Dao.Create(ctx, entity)
}

func (s *BaseService[T]) FindById(ctx context.Context, id interface{}) (*T, error) {
	return s.Dao.FindById(ctx, id)
}

func (s *BaseService[T]) UpdateById(ctx context.Context, id interface{}, fields map[string]interface{}) (int64, error) {
	return s.Dao.UpdateById(ctx, id, fields)
}

func (s *BaseService[T]) DeleteById(ctx context.Context, id interface{}) error {
	return s.Dao.DeleteById(ctx, id)
}

func (s *BaseService[T]) FindPage(ctx context.Context, page *Page, scopes ...func(*gorm.DB) *gorm.DB) ([]*T, int64, error) {
	return s.Dao.FindPage(ctx, page, scopes...)
}
