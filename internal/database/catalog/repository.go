// Package catalog provides database operations for categories and products.
package catalog

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/dangcap/market/internal/entities"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
)

// Repository handles category and product database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new catalog repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// --- Categories ---

// ListCategories returns all categories.
func (r *Repository) ListCategories() ([]entities.Category, error) {
	var categories []entities.Category
	err := r.db.Order("id").Find(&categories).Error
	return categories, err
}

// GetCategoryByID retrieves a category by ID.
func (r *Repository) GetCategoryByID(id uint) (*entities.Category, error) {
	var category entities.Category
	err := r.db.First(&category, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// CreateCategory creates a new category.
func (r *Repository) CreateCategory(name, description string) (*entities.Category, error) {
	category := &entities.Category{
		Name:        name,
		Description: description,
	}
	if err := r.db.Create(category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

// UpdateCategory updates a category's fields and returns the updated record.
func (r *Repository) UpdateCategory(id uint, name, description string) (*entities.Category, error) {
	category, err := r.GetCategoryByID(id)
	if err != nil {
		return nil, err
	}

	category.Name = name
	category.Description = description
	if err := r.db.Save(category).Error; err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return category, nil
}

// DeleteCategory removes a category and returns the deleted record.
// Products referencing it are left untouched; their category reference simply
// stops resolving.
func (r *Repository) DeleteCategory(id uint) (*entities.Category, error) {
	category, err := r.GetCategoryByID(id)
	if err != nil {
		return nil, err
	}
	if err := r.db.Delete(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// --- Products ---

// ListProducts returns all products with their category preloaded.
// When categoryID is non-zero, only products in that category are returned.
func (r *Repository) ListProducts(categoryID uint) ([]entities.Product, error) {
	var products []entities.Product
	q := r.db.Preload("Category").Order("id")
	if categoryID != 0 {
		q = q.Where("category_id = ?", categoryID)
	}
	err := q.Find(&products).Error
	return products, err
}

// GetProductByID retrieves a product by ID with its category preloaded.
func (r *Repository) GetProductByID(id uint) (*entities.Product, error) {
	var product entities.Product
	err := r.db.Preload("Category").First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// CreateProduct creates a new product and returns it with the category preloaded.
func (r *Repository) CreateProduct(product *entities.Product) (*entities.Product, error) {
	if err := r.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return r.GetProductByID(product.ID)
}

// UpdateProduct applies the given fields to an existing product.
// Zero-valued fields in updates are skipped.
func (r *Repository) UpdateProduct(id uint, updates entities.Product) (*entities.Product, error) {
	product, err := r.GetProductByID(id)
	if err != nil {
		return nil, err
	}

	if updates.Name != "" {
		product.Name = updates.Name
	}
	if updates.Price != 0 {
		product.Price = updates.Price
	}
	if updates.Image != "" {
		product.Image = updates.Image
	}
	if updates.CategoryID != 0 {
		product.CategoryID = updates.CategoryID
	}

	// Save on the bare struct so a stale preloaded association is not upserted
	product.Category = nil
	if err := r.db.Save(product).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return r.GetProductByID(id)
}

// DeleteProduct removes a product and returns the deleted record.
func (r *Repository) DeleteProduct(id uint) (*entities.Product, error) {
	product, err := r.GetProductByID(id)
	if err != nil {
		return nil, err
	}
	product.Category = nil
	if err := r.db.Delete(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// ListProductImages returns the image paths referenced by any product.
// Used by the upload cleanup job to identify orphaned files.
func (r *Repository) ListProductImages() ([]string, error) {
	var images []string
	err := r.db.Model(&entities.Product{}).
		Where("image <> ''").
		Pluck("image", &images).Error
	return images, err
}
