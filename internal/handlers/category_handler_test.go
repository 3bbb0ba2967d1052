package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "tesoro/internal/errors"
	"tesoro/internal/models"
)

func setupCategoryRouter(handler *CategoryHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/categories", handler.CreateCategory)
	auth.GET("/categories", handler.GetUserCategories)
	auth.GET("/categories/stats", handler.GetCategoryStats)
	auth.GET("/categories/:id", handler.GetCategoryByID)
	auth.PUT("/categories/:id", handler.UpdateCategory)
	auth.DELETE("/categories/:id", handler.DeleteCategory)
	return r
}

func TestCategoryHandler_CreateCategory(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{name: "success", body: `{"name":"Food","type":"expense"}`, wantStatus: http.StatusCreated},
		{name: "missing type", body: `{"name":"Food"}`, wantStatus: http.StatusBadRequest, wantCode: "INVALID_INPUT"},
		{name: "transfer is not a category type", body: `{"name":"Move","type":"transfer"}`, wantStatus: http.StatusBadRequest, wantCode: "INVALID_INPUT"},
		{name: "duplicate", body: `{"name":"food","type":"expense"}`, svcErr: apperrors.ErrDuplicateCategory, wantStatus: http.StatusBadRequest, wantCode: "DUPLICATE_CATEGORY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catSvc := &mockCategoryService{
				createCategoryFn: func(userID, name string, categoryType models.CategoryType) (*models.Category, error) {
					if tt.svcErr != nil {
						return nil, tt.svcErr
					}
					return &models.Category{UserID: userID, Name: name, Type: categoryType}, nil
				},
			}
			r := setupCategoryRouter(NewCategoryHandler(catSvc, &mockAuditService{}))

			rec := doRequest(r, "POST", "/categories", tt.body)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantCode != "" {
				assertErrorCode(t, parseJSON(t, rec), tt.wantCode)
			}
		})
	}
}

func TestCategoryHandler_GetUserCategories(t *testing.T) {
	t.Run("passes type filter", func(t *testing.T) {
		var got *models.CategoryType
		catSvc := &mockCategoryService{
			getUserCategoriesFn: func(_ string, categoryType *models.CategoryType) ([]models.Category, error) {
				got = categoryType
				return []models.Category{{Name: "Salary", Type: models.CategoryTypeIncome}}, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/categories?type=income", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got == nil || *got != models.CategoryTypeIncome {
			t.Errorf("expected income filter, got %v", got)
		}
		data := parseJSON(t, rec)["data"].([]interface{})
		if len(data) != 1 {
			t.Errorf("expected 1 category, got %d", len(data))
		}
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/categories?type=savings", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestCategoryHandler_UpdateCategory(t *testing.T) {
	var gotName *string
	var gotType *models.CategoryType
	catSvc := &mockCategoryService{
		updateCategoryFn: func(_, _ string, name *string, categoryType *models.CategoryType) (*models.Category, error) {
			gotName, gotType = name, categoryType
			return &models.Category{}, nil
		},
	}
	r := setupCategoryRouter(NewCategoryHandler(catSvc, &mockAuditService{}))

	rec := doRequest(r, "PUT", "/categories/cat-1", `{"type":"income"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotName != nil {
		t.Error("expected name untouched")
	}
	if gotType == nil || *gotType != models.CategoryTypeIncome {
		t.Errorf("expected income, got %v", gotType)
	}
}

func TestCategoryHandler_DeleteCategory(t *testing.T) {
	catSvc := &mockCategoryService{
		deleteCategoryFn: func(_, _ string) error { return apperrors.ErrCategoryNotFound },
	}
	r := setupCategoryRouter(NewCategoryHandler(catSvc, &mockAuditService{}))

	rec := doRequest(r, "DELETE", "/categories/missing", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	assertErrorCode(t, parseJSON(t, rec), "CATEGORY_NOT_FOUND")
}
