package repository

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"budget/apperror"
	"budget/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	errCategoryNotFound  = apperror.NotFound("category not found")
	errCategoryDuplicate = apperror.Conflict("category with this name already exists")
	errCategoryInUse     = apperror.Conflict("cannot delete category that is being used in transactions")

	whitespaceRun = regexp.MustCompile(`\s+`)
	nonSlugChars  = regexp.MustCompile(`[^\w-]`)
)

// Slugify derives a category id from its name. now supplies the fallback for names
// that leave nothing behind.
func Slugify(name string, now func() time.Time) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = whitespaceRun.ReplaceAllString(slug, "-")
	slug = nonSlugChars.ReplaceAllString(slug, "")
	if slug == "" {
		return fmt.Sprintf("cat-%d", now().UnixMilli())
	}
	return slug
}

// CategoryInput is the writable part of a category.
type CategoryInput struct {
	Name string
	Type models.Kind
	Icon string
}

func (in CategoryInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperror.Invalid("name is required")
	}
	if !in.Type.Valid() {
		return apperror.Invalid("type must be income or expense")
	}
	return nil
}

func (in CategoryInput) icon() string {
	if strings.TrimSpace(in.Icon) == "" {
		return models.DefaultCategoryIcon
	}
	return in.Icon
}

type CategoryRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db, now: time.Now}
}

// List returns the owner's categories ordered by type, then name.
func (r *CategoryRepository) List(ctx context.Context, owner uint) ([]models.Category, error) {
	cats := make([]models.Category, 0)
	err := r.db.WithContext(ctx).Where("user_id = ?", owner).Order("type, name").Find(&cats).Error
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// Exists reports whether the owner has a category with this id.
func (r *CategoryRepository) Exists(ctx context.Context, owner uint, id string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Category{}).
		Where("user_id = ? AND id = ?", owner, id).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check category: %w", err)
	}
	return n > 0, nil
}

// Add creates a category whose id is the slug of its name.
func (r *CategoryRepository) Add(ctx context.Context, owner uint, in CategoryInput) (*models.Category, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	cat := models.Category{
		ID:     Slugify(in.Name, r.now),
		UserID: owner,
		Name:   strings.TrimSpace(in.Name),
		Type:   in.Type,
		Icon:   in.icon(),
	}
	if err := r.db.WithContext(ctx).Create(&cat).Error; err != nil {
		if apperror.IsDuplicateKey(err) {
			return nil, errCategoryDuplicate
		}
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return &cat, nil
}

// Update rewrites name, type and icon. The id stays as it was.
func (r *CategoryRepository) Update(ctx context.Context, owner uint, id string, in CategoryInput) (*models.Category, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	cat := models.Category{
		ID:     id,
		UserID: owner,
		Name:   strings.TrimSpace(in.Name),
		Type:   in.Type,
		Icon:   in.icon(),
	}
	res := r.db.WithContext(ctx).Model(&models.Category{}).
		Where("user_id = ? AND id = ?", owner, id).
		Updates(map[string]interface{}{"name": cat.Name, "type": cat.Type, "icon": cat.Icon})
	if res.Error != nil {
		if apperror.IsDuplicateKey(res.Error) {
			return nil, errCategoryDuplicate
		}
		return nil, fmt.Errorf("update category: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, errCategoryNotFound
	}
	return &cat, nil
}

// Delete removes a category unless one of the owner's transactions still uses it.
// The check and the delete share one pooled connection; each statement starts its
// own session on it so the count's model and conditions do not leak into the delete.
func (r *CategoryRepository) Delete(ctx context.Context, owner uint, id string) error {
	return r.db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		n, err := countByCategory(conn.WithContext(ctx), owner, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return errCategoryInUse
		}
		res := conn.WithContext(ctx).Where("user_id = ? AND id = ?", owner, id).Delete(&models.Category{})
		if res.Error != nil {
			return fmt.Errorf("delete category: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return errCategoryNotFound
		}
		return nil
	})
}

// SeedDefaults gives the owner the default category set, keeping any ids they already have.
func (r *CategoryRepository) SeedDefaults(ctx context.Context, owner uint) error {
	cats := models.DefaultCategories()
	for i := range cats {
		cats[i].UserID = owner
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&cats).Error
	if err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	return nil
}
