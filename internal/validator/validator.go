// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"tesoro/internal/ledger"
	"tesoro/internal/models"
)

// validCurrencies contains the ISO 4217 codes accepted as a user's currency.
var validCurrencies = map[string]bool{
	"ARS": true, "AUD": true, "BOB": true, "BRL": true, "CAD": true,
	"CHF": true, "CLP": true, "CNY": true, "COP": true, "CRC": true,
	"CZK": true, "DKK": true, "DOP": true, "EUR": true, "GBP": true,
	"GTQ": true, "HKD": true, "HNL": true, "HUF": true, "IDR": true,
	"ILS": true, "INR": true, "JPY": true, "KRW": true, "MXN": true,
	"MYR": true, "NIO": true, "NOK": true, "NZD": true, "PAB": true,
	"PEN": true, "PHP": true, "PLN": true, "PYG": true, "SEK": true,
	"SGD": true, "THB": true, "TRY": true, "TWD": true, "USD": true,
	"UYU": true, "VES": true, "ZAR": true,
}

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("iso4217", validateISO4217)
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		_ = v.RegisterValidation("category_type", validateCategoryType)
		_ = v.RegisterValidation("budget_period", validateBudgetPeriod)
		_ = v.RegisterValidation("goal_status", validateGoalStatus)
		_ = v.RegisterValidation("user_status", validateUserStatus)
		_ = v.RegisterValidation("calendar_day", validateCalendarDay)
	}
}

func validateISO4217(fl validator.FieldLevel) bool {
	return validCurrencies[fl.Field().String()]
}

func validateTransactionType(fl validator.FieldLevel) bool {
	return ledger.IsTransactionType(models.TransactionType(fl.Field().String()))
}

func validateCategoryType(fl validator.FieldLevel) bool {
	return ledger.IsCategoryType(models.CategoryType(fl.Field().String()))
}

func validateBudgetPeriod(fl validator.FieldLevel) bool {
	return ledger.IsBudgetPeriod(models.BudgetPeriod(fl.Field().String()))
}

func validateGoalStatus(fl validator.FieldLevel) bool {
	return ledger.IsGoalStatus(models.GoalStatus(fl.Field().String()))
}

func validateUserStatus(fl validator.FieldLevel) bool {
	switch models.UserStatus(fl.Field().String()) {
	case models.UserStatusInactive, models.UserStatusActive, models.UserStatusSuspended:
		return true
	}
	return false
}

// validateCalendarDay accepts "YYYY-MM-DD" or an RFC 3339 timestamp.
func validateCalendarDay(fl validator.FieldLevel) bool {
	_, err := ledger.ParseDay(fl.Field().String())
	return err == nil
}
