package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Mil05h/calories-ai/apperr"
	"github.com/Mil05h/calories-ai/models"
)

// PlaceholderDescription is stored when a meal was analyzed from an image
// only and the caller supplied no text.
const PlaceholderDescription = "Meal from photo"

// MealService owns the per-user meal log. Records are append-only; there
// is deliberately no update or delete.
type MealService struct {
	db *gorm.DB
}

func NewMealService(db *gorm.DB) *MealService {
	return &MealService{db: db}
}

// Create writes a new record for ownerID. The store assigns identity and
// the creation timestamp.
func (s *MealService) Create(ownerID, description string, nutrition models.NutritionResult) (*models.MealRecord, error) {
	if description == "" {
		description = PlaceholderDescription
	}

	record := &models.MealRecord{
		OwnerID:     ownerID,
		Description: description,
		Calories:    nutrition.Calories,
		Protein:     nutrition.Protein,
		Carbs:       nutrition.Carbs,
		Fat:         nutrition.Fat,
	}
	if err := s.db.Create(record).Error; err != nil {
		return nil, apperr.Wrap(apperr.PersistenceFailed, "failed to save meal", err)
	}
	return record, nil
}

// List returns all of ownerID's records, newest first.
func (s *MealService) List(ownerID string) ([]models.MealRecord, error) {
	var records []models.MealRecord
	err := s.db.
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.PersistenceFailed, "failed to list meals", err)
	}
	return records, nil
}

// Get returns one of ownerID's records by id.
func (s *MealService) Get(ownerID, id string) (*models.MealRecord, error) {
	var record models.MealRecord
	err := s.db.
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "meal not found")
		}
		return nil, apperr.Wrap(apperr.PersistenceFailed, "failed to load meal", err)
	}
	return &record, nil
}
