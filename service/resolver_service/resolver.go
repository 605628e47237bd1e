package resolver_service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"heartlink-service/models"
)

// Resolver 主存储（用户与关注关系）的只读访问层
type Resolver struct {
	db *gorm.DB
}

// NewResolver 创建解析器
func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// FollowersOf 查询某个被关注者的全部关注记录
func (r *Resolver) FollowersOf(userId string) ([]models.FollowerRecord, error) {
	var followers []models.FollowerRecord
	err := r.db.Where("subject_user_id = ?", userId).Find(&followers).Error
	if err != nil {
		return nil, fmt.Errorf("query followers of %s: %w", userId, err)
	}
	return followers, nil
}

// UserByID 按ID查询用户，不存在返回 nil 而不是错误
func (r *Resolver) UserByID(userId string) (*models.UserRecord, error) {
	var user models.UserRecord
	err := r.db.Where("id = ?", userId).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user %s: %w", userId, err)
	}
	return &user, nil
}

// UsersByIDs 按ID列表批量查询用户，结果保持入参顺序，缺失的ID直接跳过
func (r *Resolver) UsersByIDs(userIds []string) ([]*models.UserRecord, error) {
	if len(userIds) == 0 {
		return []*models.UserRecord{}, nil
	}

	var users []models.UserRecord
	err := r.db.Where("id IN ?", userIds).Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("query users by ids: %w", err)
	}

	byID := make(map[string]*models.UserRecord, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	ordered := make([]*models.UserRecord, 0, len(userIds))
	for _, id := range userIds {
		if user, ok := byID[id]; ok {
			ordered = append(ordered, user)
		}
	}
	return ordered, nil
}

// ForEachUserPage 分页遍历全部用户记录
// 不加过滤条件，避免主存储需要组合索引；过滤逻辑留给调用方
func (r *Resolver) ForEachUserPage(batchSize int, fn func(users []models.UserRecord) error) error {
	if batchSize <= 0 {
		batchSize = 500
	}

	var batch []models.UserRecord
	result := r.db.FindInBatches(&batch, batchSize, func(tx *gorm.DB, batchNo int) error {
		return fn(batch)
	})
	if result.Error != nil {
		return fmt.Errorf("page users: %w", result.Error)
	}
	return nil
}
