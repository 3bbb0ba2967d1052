package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "tesoro/internal/errors"
	"tesoro/internal/models"
	"tesoro/internal/uuid"
)

// owned constrains PT to a pointer to T that reports its owner.
type owned[T any] interface {
	*T
	models.Owned
}

// loadOwned fetches the row with the given id and checks that it belongs to
// userID. An unknown id yields notFound; a row of another user yields a
// Forbidden error whose message reads "You don't have permission to <action>".
func loadOwned[T any, PT owned[T]](db *gorm.DB, id, userID string, notFound *apperrors.AppError, action string) (PT, error) {
	if !uuid.IsValid(id) {
		return nil, notFound
	}
	var row T
	if err := db.Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	entity := PT(&row)
	if err := assertOwnership(entity, userID, action); err != nil {
		return nil, err
	}
	return entity, nil
}

// loadOwnedForUpdate is loadOwned with a row lock held until tx ends.
func loadOwnedForUpdate[T any, PT owned[T]](tx *gorm.DB, id, userID string, notFound *apperrors.AppError, action string) (PT, error) {
	return loadOwned[T, PT](tx.Clauses(clause.Locking{Strength: "UPDATE"}), id, userID, notFound, action)
}

// assertOwnership fails with Forbidden unless entity belongs to userID.
func assertOwnership(entity models.Owned, userID, action string) error {
	if entity.OwnerID() != userID {
		return apperrors.WithMessage(apperrors.ErrForbidden, fmt.Sprintf("You don't have permission to %s", action))
	}
	return nil
}

// isDuplicateKey reports whether err is a unique-constraint violation.
// Requires gorm.Config.TranslateError.
func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
