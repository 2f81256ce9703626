package mvc

import (
	"context"

	errorc "linktrack/pkg/core/err"

	"gorm.io/gorm"
)

// GormDaoImpl IBaseDao 的 gorm 实现
type GormDaoImpl[T any] struct {
	db  *gorm.DB
	err *errorc.ErrorBuilder
}

func NewGormDao[T any](db *gorm.DB) *GormDaoImpl[T] {
	return &GormDaoImpl[T]{
		db:  db,
		err: errorc.NewErrorBuilder("GormDao"),
	}
}

func (d *GormDaoImpl[T]) WithTx(tx *gorm.DB) IBaseDao[T] {
	if tx == nil {
		return d
	}
	return &GormDaoImpl[T]{db: tx, err: d.err}
}

func (d *GormDaoImpl[T]) DB(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx)
}

func (d *GormDaoImpl[T]) Create(ctx context.Context, entity *T) error {
	if err := d.db.WithContext(ctx).Create(entity).Error; err != nil {
		return d.err.New("创建记录失败", err).DB()
	}
	return nil
}

func (d *GormDaoImpl[T]) CreateBatch(ctx context.Context, entities []*T) error {
	if len(entities) == 0 {
		return nil
	}
	if err := d.db.WithContext(ctx).Create(entities).Error; err != nil {
		return d.err.New("批量创建记录失败", err).DB()
	}
	return nil
}

func (d *GormDaoImpl[T]) DeleteById(ctx context.Context, id interface{}) error {
	return d.deleteById(d.db.WithContext(ctx), id)
}

func (d *GormDaoImpl[T]) HardDeleteById(ctx context.Context, id interface{}) error {
	return d.deleteById(d.db.WithContext(ctx).Unscoped(), id)
}

func (d *GormDaoImpl[T]) deleteById(db *gorm.DB, id interface{}) error {
	result := db.Delete(new(T), id)
	if result.Error != nil {
		return d.err.New("删除记录失败", result.Error).DB()
	}
	if result.RowsAffected == 0 {
		return d.err.New("要删除的记录不存在", nil).NotFound()
	}
	return nil
}

func (d *GormDaoImpl[T]) UpdateById(ctx context.Context, id interface{}, fields map[string]interface{}) (int64, error) {
	result := d.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return 0, d.err.New("更新记录失败", result.Error).DB()
	}
	if result.RowsAffected == 0 {
		return 0, d.err.New("要更新的记录不存在", nil).NotFound()
	}
	return result.RowsAffected, nil
}

func (d *GormDaoImpl[T]) FindById(ctx context.Context, id interface{}) (*T, error) {
	var entity T
	if err := d.db.WithContext(ctx).First(&entity, id).Error; err != nil {
		return nil, d.err.New("查询记录失败", err).DB()
	}
	return &entity, nil
}

func (d *GormDaoImpl[T]) FindOneByColumn(ctx context.Context, column string, value interface{}) (*T, error) {
	var entity T
	if err := d.db.WithContext(ctx).Where(column+" = ?", value).First(&entity).Error; err != nil {
		return nil, d.err.New("查询记录失败", err).DB()
	}
	return &entity, nil
}

func (d *GormDaoImpl[T]) FindByMap(ctx context.Context, conditions map[string]interface{}) ([]*T, error) {
	var entities []*T
	if err := d.db.WithContext(ctx).Where(conditions).Find(&entities).Error; err != nil {
		return nil, d.err.New("查询记录失败", err).DB()
	}
	return entities, nil
}

func (d *GormDaoImpl[T]) FindPage(ctx context.Context, page *Page, scopes ...func(*gorm.DB) *gorm.DB) ([]*T, int64, error) {
	var entities []*T
	var total int64
	if page == nil {
		page = &Page{}
	}

	db := d.db.WithContext(ctx).Model(new(T)).Scopes(scopes...)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, d.err.New("统计记录失败", err).DB()
	}

	db = db.Scopes(Paginate(page))
	if page.Sort != "" {
		db = db.Order(page.Sort)
	} else {
		db = db.Order("id DESC")
	}
	if err := db.Find(&entities).Error; err != nil {
		return nil, 0, d.err.New("查询记录失败", err).DB()
	}
	return entities, total, nil
}

func (d *GormDaoImpl[T]) CountByMap(ctx context.Context, conditions map[string]interface{}) (int64, error) {
	var count int64
	if err := d.db.WithContext(ctx).Model(new(T)).Where(conditions).Count(&count).Error; err != nil {
		return 0, d.err.New("统计记录失败", err).DB()
	}
	return count, nil
}

func (d *GormDaoImpl[T]) ExistsByMap(ctx context.Context, conditions map[string]interface{}) (bool, error) {
	count, err := d.CountByMap(ctx, conditions)
	return count > 0, err
}
