package http

import (
	"html/template"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/dangcap/market/internal/auth"
	"github.com/dangcap/market/internal/entities"
	"github.com/dangcap/market/internal/uploads"
)

// CatalogPagesController serves the server-rendered category and product
// admin pages. Listing pages need any authenticated session; mutations are
// admin-only, enforced by the gate at route registration.
type CatalogPagesController struct {
	categories CategoryStore
	products   ProductStore
	images     *uploads.Store
	templates  *template.Template
}

func NewCatalogPagesController(categories CategoryStore, products ProductStore, images *uploads.Store, templatesPath string) *CatalogPagesController {
	pattern := filepath.Join(templatesPath, "catalog", "*.html")
	tmpl, err := template.ParseGlob(pattern)
	if err != nil {
		tmpl = nil
	}

	return &CatalogPagesController{
		categories: categories,
		products:   products,
		images:     images,
		templates:  tmpl,
	}
}

// RegisterRoutes registers the catalog pages behind the gate's predicates.
func (cp *CatalogPagesController) RegisterRoutes(router *gin.Engine, gate *auth.Gate) {
	category := router.Group("/category", gate.RequireUser())
	category.GET("", cp.CategoryIndex)
	category.GET("/detail/:id", cp.CategoryDetail)

	categoryAdmin := router.Group("/category", gate.RequireAdmin())
	categoryAdmin.GET("/add", cp.CategoryAddPage)
	categoryAdmin.POST("/add", cp.CategoryAdd)
	categoryAdmin.GET("/edit/:id", cp.CategoryEditPage)
	categoryAdmin.POST("/edit/:id", cp.CategoryEdit)
	categoryAdmin.GET("/delete/:id", cp.CategoryDelete)

	product := router.Group("/product", gate.RequireUser())
	product.GET("", cp.ProductIndex)

	productAdmin := router.Group("/product", gate.RequireAdmin())
	productAdmin.GET("/add", cp.ProductAddPage)
	productAdmin.POST("/add", cp.ProductAdd)
	productAdmin.GET("/edit/:id", cp.ProductEditPage)
	productAdmin.POST("/edit/:id", cp.ProductEdit)
	productAdmin.GET("/delete/:id", cp.ProductDelete)
}

func (cp *CatalogPagesController) isAdmin(c *gin.Context) bool {
	return auth.GetUserRole(c) == entities.UserRoleAdmin
}

// CategoryIndex lists all categories.
func (cp *CatalogPagesController) CategoryIndex(c *gin.Context) {
	categories, err := cp.categories.ListCategories()
	if err != nil {
		respondInternalError(c, err, "category index")
		return
	}

	cp.renderTemplate(c, "category_index.html", gin.H{
		"Title":      "Categories",
		"Categories": categories,
		"IsAdmin":    cp.isAdmin(c),
		"Username":   auth.GetUsername(c),
	})
}

// CategoryDetail lists the products of one category.
func (cp *CatalogPagesController) CategoryDetail(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	category, err := cp.categories.GetCategoryByID(id)
	if err != nil {
		respondNotFound(c, "Category")
		return
	}
	products, err := cp.products.ListProducts(id)
	if err != nil {
		respondInternalError(c, err, "category detail")
		return
	}

	cp.renderTemplate(c, "product_index.html", gin.H{
		"Title":    category.Name,
		"Category": category,
		"Products": products,
		"IsAdmin":  cp.isAdmin(c),
		"Username": auth.GetUsername(c),
	})
}

// CategoryAddPage renders the new-category form.
func (cp *CatalogPagesController) CategoryAddPage(c *gin.Context) {
	cp.renderTemplate(c, "category_add.html", gin.H{
		"Title":     "Add Category",
		"CSRFToken": auth.GetCSRFToken(c),
		"Username":  auth.GetUsername(c),
	})
}

// CategoryAdd handles the new-category form submission.
func (cp *CatalogPagesController) CategoryAdd(c *gin.Context) {
	name := c.PostForm("name")
	description := c.PostForm("description")
	if name == "" {
		respondBadRequest(c, "name is required")
		return
	}

	if _, err := cp.categories.CreateCategory(name, description); err != nil {
		respondInternalError(c, err, "category add")
		return
	}
	c.Redirect(http.StatusFound, "/category")
}

// CategoryEditPage renders the edit form for a category.
func (cp *CatalogPagesController) CategoryEditPage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	category, err := cp.categories.GetCategoryByID(id)
	if err != nil {
		respondNotFound(c, "Category")
		return
	}

	cp.renderTemplate(c, "category_edit.html", gin.H{
		"Title":     "Edit Category",
		"Category":  category,
		"CSRFToken": auth.GetCSRFToken(c),
		"Username":  auth.GetUsername(c),
	})
}

// CategoryEdit handles the edit form submission.
func (cp *CatalogPagesController) CategoryEdit(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	name := c.PostForm("name")
	description := c.PostForm("description")
	if _, err := cp.categories.UpdateCategory(id, name, description); err != nil {
		respondNotFound(c, "Category")
		return
	}
	c.Redirect(http.StatusFound, "/category")
}

// CategoryDelete removes a category and redirects back to the list.
func (cp *CatalogPagesController) CategoryDelete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := cp.categories.DeleteCategory(id); err != nil {
		respondNotFound(c, "Category")
		return
	}
	c.Redirect(http.StatusFound, "/category")
}

// ProductIndex lists all products.
func (cp *CatalogPagesController) ProductIndex(c *gin.Context) {
	products, err := cp.products.ListProducts(0)
	if err != nil {
		respondInternalError(c, err, "product index")
		return
	}

	cp.renderTemplate(c, "product_index.html", gin.H{
		"Title":    "Products",
		"Products": products,
		"IsAdmin":  cp.isAdmin(c),
		"Username": auth.GetUsername(c),
	})
}

// ProductAddPage renders the new-product form.
func (cp *CatalogPagesController) ProductAddPage(c *gin.Context) {
	categories, err := cp.categories.ListCategories()
	if err != nil {
		respondInternalError(c, err, "product add page")
		return
	}

	cp.renderTemplate(c, "product_add.html", gin.H{
		"Title":      "Add Product",
		"Categories": categories,
		"CSRFToken":  auth.GetCSRFToken(c),
		"Username":   auth.GetUsername(c),
	})
}

// ProductAdd handles the new-product form, storing an uploaded image if one
// was attached.
func (cp *CatalogPagesController) ProductAdd(c *gin.Context) {
	product, ok := cp.bindProductForm(c)
	if !ok {
		return
	}
	if product.Name == "" {
		respondBadRequest(c, "name is required")
		return
	}

	if _, err := cp.products.CreateProduct(product); err != nil {
		respondInternalError(c, err, "product add")
		return
	}
	c.Redirect(http.StatusFound, "/product")
}

// ProductEditPage renders the edit form for a product.
func (cp *CatalogPagesController) ProductEditPage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := cp.products.GetProductByID(id)
	if err != nil {
		respondNotFound(c, "Product")
		return
	}
	categories, err := cp.categories.ListCategories()
	if err != nil {
		respondInternalError(c, err, "product edit page")
		return
	}

	cp.renderTemplate(c, "product_edit.html", gin.H{
		"Title":      "Edit Product",
		"Product":    product,
		"Categories": categories,
		"CSRFToken":  auth.GetCSRFToken(c),
		"Username":   auth.GetUsername(c),
	})
}

// ProductEdit handles the edit form submission.
func (cp *CatalogPagesController) ProductEdit(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	updates, ok := cp.bindProductForm(c)
	if !ok {
		return
	}

	if _, err := cp.products.UpdateProduct(id, *updates); err != nil {
		respondNotFound(c, "Product")
		return
	}
	c.Redirect(http.StatusFound, "/product")
}

// ProductDelete removes a product and redirects back to the list.
func (cp *CatalogPagesController) ProductDelete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := cp.products.DeleteProduct(id); err != nil {
		respondNotFound(c, "Product")
		return
	}
	c.Redirect(http.StatusFound, "/product")
}

// bindProductForm reads product fields and an optional image upload from a
// form submission.
func (cp *CatalogPagesController) bindProductForm(c *gin.Context) (*entities.Product, bool) {
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

	if file, err := c.FormFile("image"); err == nil && file != nil && cp.images != nil {
		path, err := cp.images.Save(file)
		if err != nil {
			respondBadRequest(c, err.Error())
			return nil, false
		}
		product.Image = path
	}

	return product, true
}

// renderTemplate renders a catalog template or falls back to JSON.
func (cp *CatalogPagesController) renderTemplate(c *gin.Context, name string, data gin.H) {
	if cp.templates == nil {
		c.JSON(http.StatusOK, data)
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := cp.templates.ExecuteTemplate(c.Writer, name, data); err != nil {
		c.String(http.StatusInternalServerError, "Template error: %v", err)
	}
}
