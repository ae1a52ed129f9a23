package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dangcap/market/internal/entities"
	"github.com/dangcap/market/internal/uploads"
)

// ProductStore defines the product operations for both reads and admin
// mutations.
type ProductStore interface {
	ListProducts(categoryID uint) ([]entities.Product, error)
	GetProductByID(id uint) (*entities.Product, error)
	CreateProduct(product *entities.Product) (*entities.Product, error)
	UpdateProduct(id uint, updates entities.Product) (*entities.Product, error)
	DeleteProduct(id uint) (*entities.Product, error)
}

// ProductsController serves the product API.
type ProductsController struct {
	store  ProductStore
	images *uploads.Store
}

func NewProductsController(store ProductStore, images *uploads.Store) *ProductsController {
	return &ProductsController{store: store, images: images}
}

// List returns all products, optionally filtered by ?category=<id>.
// GET /api/products
func (pc *ProductsController) List(c *gin.Context) {
	var categoryID uint
	if raw := c.Query("category"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondBadRequest(c, "invalid category filter")
			return
		}
		categoryID = uint(parsed)
	}

	products, err := pc.store.ListProducts(categoryID)
	if err != nil {
		respondInternalError(c, err, "list products")
		return
	}
	respondList(c, products, len(products))
}

// Get returns a single product with its category.
// GET /api/products/:id
func (pc *ProductsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := pc.store.GetProductByID(id)
	if err != nil {
		respondNotFound(c, "Product")
		return
	}
	respondData(c, http.StatusOK, product)
}

// Create adds a new product. Accepts JSON, or multipart form data with an
// optional "image" file that is stored and recorded as the product image.
// POST /api/products (admin)
func (pc *ProductsController) Create(c *gin.Context) {
	product, ok := pc.bindProduct(c)
	if !ok {
		return
	}
	if product.Name == "" {
		respondBadRequest(c, "name is required")
		return
	}

	created, err := pc.store.CreateProduct(product)
	if err != nil {
		respondInternalError(c, err, "create product")
		return
	}
	respondMessage(c, http.StatusCreated, "Product created successfully", created)
}

// Update modifies an existing product. A newly uploaded image replaces the
// recorded path; the old file is swept later by the orphan cleanup job.
// PUT /api/products/:id (admin)
func (pc *ProductsController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	updates, ok := pc.bindProduct(c)
	if !ok {
		return
	}

	product, err := pc.store.UpdateProduct(id, *updates)
	if err != nil {
		respondNotFound(c, "Product")
		return
	}
	respondMessage(c, http.StatusOK, "Product updated successfully", product)
}

// Delete removes a product.
// DELETE /api/products/:id (admin)
func (pc *ProductsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := pc.store.DeleteProduct(id)
	if err != nil {
		respondNotFound(c, "Product")
		return
	}
	respondMessage(c, http.StatusOK, "Product deleted successfully", product)
}

// bindProduct reads a product from either a JSON body or a multipart form.
// Responds with 400 and returns false on malformed input.
func (pc *ProductsController) bindProduct(c *gin.Context) (*entities.Product, bool) {
	contentType := c.ContentType()

	if strings.HasPrefix(contentType, "multipart/form-data") {
		var req struct {
			Name       string  `form:"name"`
			Price      float64 `form:"price"`
			CategoryID uint    `form:"category_id"`
		}
		if err := c.ShouldBind(&req); err != nil {
			respondBadRequest(c, "invalid product data")
			return nil, false
		}

		product := &entities.Product{
			Name:       req.Name,
			Price:      req.Price,
			CategoryID: req.CategoryID,
		}

		if file, err := c.FormFile("image"); err == nil && file != nil {
			if pc.images == nil {
				respondBadRequest(c, "image uploads are not configured")
				return nil, false
			}
			path, err := pc.images.Save(file)
			if err != nil {
				if errors.Is(err, uploads.ErrNotAnImage) || errors.Is(err, uploads.ErrFileTooLarge) {
					respondBadRequest(c, err.Error())
					return nil, false
				}
				respondInternalError(c, err, "save product image")
				return nil, false
			}
			product.Image = path
		}

		return product, true
	}

	var req struct {
		Name       string  `json:"name"`
		Price      float64 `json:"price"`
		Image      string  `json:"image"`
		CategoryID uint    `json:"category_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid product data")
		return nil, false
	}

	return &entities.Product{
		Name:       req.Name,
		Price:      req.Price,
		Image:      req.Image,
		CategoryID: req.CategoryID,
	}, true
}
