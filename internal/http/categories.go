package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dangcap/market/internal/entities"
)

// CategoryStore defines the category operations for both reads and admin
// mutations.
type CategoryStore interface {
	ListCategories() ([]entities.Category, error)
	GetCategoryByID(id uint) (*entities.Category, error)
	CreateCategory(name, description string) (*entities.Category, error)
	UpdateCategory(id uint, name, description string) (*entities.Category, error)
	DeleteCategory(id uint) (*entities.Category, error)
}

// CategoriesController serves the category API.
type CategoriesController struct {
	store    CategoryStore
	products ProductStore
}

func NewCategoriesController(store CategoryStore, products ProductStore) *CategoriesController {
	return &CategoriesController{store: store, products: products}
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// List returns all categories.
// GET /api/categories
func (cc *CategoriesController) List(c *gin.Context) {
	categories, err := cc.store.ListCategories()
	if err != nil {
		respondInternalError(c, err, "list categories")
		return
	}
	respondList(c, categories, len(categories))
}

// Get returns a single category.
// GET /api/categories/:id
func (cc *CategoriesController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	category, err := cc.store.GetCategoryByID(id)
	if err != nil {
		respondNotFound(c, "Category")
		return
	}
	respondData(c, http.StatusOK, category)
}

// ListProducts returns the products referencing a category.
// GET /api/categories/:id/products
func (cc *CategoriesController) ListProducts(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	products, err := cc.products.ListProducts(id)
	if err != nil {
		respondInternalError(c, err, "list category products")
		return
	}
	respondList(c, products, len(products))
}

// Create adds a new category.
// POST /api/categories (admin)
func (cc *CategoriesController) Create(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		respondBadRequest(c, "name is required")
		return
	}

	category, err := cc.store.CreateCategory(req.Name, req.Description)
	if err != nil {
		respondInternalError(c, err, "create category")
		return
	}
	respondMessage(c, http.StatusCreated, "Category created successfully", category)
}

// Update modifies an existing category.
// PUT /api/categories/:id (admin)
func (cc *CategoriesController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		respondBadRequest(c, "name is required")
		return
	}

	category, err := cc.store.UpdateCategory(id, req.Name, req.Description)
	if err != nil {
		respondNotFound(c, "Category")
		return
	}
	respondMessage(c, http.StatusOK, "Category updated successfully", category)
}

// Delete removes a category. Products referencing it are left orphaned on
// purpose; the storefront shows them as uncategorized.
// DELETE /api/categories/:id (admin)
func (cc *CategoriesController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	category, err := cc.store.DeleteCategory(id)
	if err != nil {
		respondNotFound(c, "Category")
		return
	}
	respondMessage(c, http.StatusOK, "Category deleted successfully", category)
}
