package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mil05h/calories-ai/middlewares"
	"github.com/Mil05h/calories-ai/models"
	"github.com/Mil05h/calories-ai/services"
)

type MealController struct {
	meals *services.MealService
}

func NewMealController(meals *services.MealService) *MealController {
	return &MealController{meals: meals}
}

type SaveMealInput struct {
	Description string  `json:"description"`
	Calories    float64 `json:"calories" binding:"gte=0"`
	Protein     float64 `json:"protein" binding:"gte=0"`
	Carbs       float64 `json:"carbs" binding:"gte=0"`
	Fat         float64 `json:"fat" binding:"gte=0"`
}

func (mc *MealController) Save(c *gin.Context) {
	var input SaveMealInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid-argument"})
		return
	}

	record, err := mc.meals.Create(
		c.GetString(middlewares.ContextUserID),
		input.Description,
		models.NutritionResult{
			Calories: input.Calories,
			Protein:  input.Protein,
			Carbs:    input.Carbs,
			Fat:      input.Fat,
		},
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (mc *MealController) List(c *gin.Context) {
	records, err := mc.meals.List(c.GetString(middlewares.ContextUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (mc *MealController) Get(c *gin.Context) {
	record, err := mc.meals.Get(c.GetString(middlewares.ContextUserID), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}
