package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	apperrors "tesoro/internal/errors"
	"tesoro/internal/ledger"
	"tesoro/internal/models"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

func duplicateCategory(name string) error {
	return apperrors.WithMessage(apperrors.ErrDuplicateCategory,
		fmt.Sprintf("A category named %q already exists", name))
}

// findByNameKey returns the user's category with the given normalized name, if any.
func (s *categoryService) findByNameKey(userID, nameKey string) (*models.Category, error) {
	var existing models.Category
	err := s.db.Where("user_id = ? AND name_key = ?", userID, nameKey).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &existing, nil
}

// CreateCategory creates a new category. Names are unique per user, ignoring case.
func (s *categoryService) CreateCategory(userID, name string, categoryType models.CategoryType) (*models.Category, error) {
	if err := ledger.ValidateCategory(name, categoryType); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	key := models.CategoryNameKey(name)

	existing, err := s.findByNameKey(userID, key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, duplicateCategory(name)
	}

	category := &models.Category{
		UserID:  userID,
		Name:    name,
		NameKey: key,
		Type:    categoryType,
	}

	if err := s.db.Create(category).Error; err != nil {
		// A concurrent create can slip past the lookup; the unique index decides.
		if isDuplicateKey(err) {
			return nil, duplicateCategory(name)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// GetUserCategories retrieves a user's categories sorted by name, optionally
// restricted to one type.
func (s *categoryService) GetUserCategories(userID string, categoryType *models.CategoryType) ([]models.Category, error) {
	q := s.db.Where("user_id = ?", userID)
	if categoryType != nil {
		if !ledger.IsCategoryType(*categoryType) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid category type. Must be 'income' or 'expense'")
		}
		q = q.Where("type = ?", *categoryType)
	}

	categories := []models.Category{}
	if err := q.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// GetCategoryByID retrieves a category owned by the user.
func (s *categoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	return loadOwned[models.Category](s.db, categoryID, userID, apperrors.ErrCategoryNotFound, "access this category")
}

// UpdateCategory renames a category or changes its type.
func (s *categoryService) UpdateCategory(userID, categoryID string, name *string, categoryType *models.CategoryType) (*models.Category, error) {
	category, err := loadOwned[models.Category](s.db, categoryID, userID, apperrors.ErrCategoryNotFound, "update this category")
	if err != nil {
		return nil, err
	}

	newName, newType := category.Name, category.Type
	if name != nil {
		newName = *name
	}
	if categoryType != nil {
		newType = *categoryType
	}
	if err := ledger.ValidateCategory(newName, newType); err != nil {
		return nil, err
	}
	newName = strings.TrimSpace(newName)

	updates := make(map[string]interface{})
	if name != nil {
		key := models.CategoryNameKey(newName)
		if key != category.NameKey {
			existing, err := s.findByNameKey(userID, key)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != category.ID {
				return nil, duplicateCategory(newName)
			}
		}
		updates["name"] = newName
		updates["name_key"] = key
	}
	if categoryType != nil {
		updates["type"] = newType
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			if isDuplicateKey(err) {
				return nil, duplicateCategory(newName)
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.db.Where("id = ?", category.ID).First(category).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return category, nil
}

// DeleteCategory deletes a category and its budget. Transactions that used
// it keep their rows and lose the category reference.
func (s *categoryService) DeleteCategory(userID, categoryID string) error {
	category, err := loadOwned[models.Category](s.db, categoryID, userID, apperrors.ErrCategoryNotFound, "delete this category")
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Transaction{}).
			Where("category_id = ?", category.ID).
			Update("category_id", nil).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Where("category_id = ?", category.ID).Delete(&models.Budget{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// GetCategoryStats counts a user's categories by type.
func (s *categoryService) GetCategoryStats(userID string) (*ledger.CategoryStats, error) {
	categories, err := s.GetUserCategories(userID, nil)
	if err != nil {
		return nil, err
	}
	stats := ledger.SummarizeCategories(categories)
	return &stats, nil
}
