package handler

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-shop-api/internal/domain"
	"go-gin-shop-api/internal/feature/product"
	"go-gin-shop-api/internal/transport/http/ez"
	resp "go-gin-shop-api/internal/transport/http/response"
)

// ProductService is implemented by *product.Service.
type ProductService interface {
	Create(ctx context.Context, in product.CreateInput) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	Search(ctx context.Context, name string) ([]domain.Product, error)
	CreatedSince(ctx context.Context, since time.Time) ([]domain.Product, error)
	InStock(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type ProductHandler struct {
	svc ProductService
	log *zap.Logger
}

func NewProductHandler(svc ProductService, l *zap.Logger) *ProductHandler {
	return &ProductHandler{svc: svc, log: l}
}

func (h *ProductHandler) Priority() int { return 20 }

// MountAPI puts every catalog route behind authentication.
func (h *ProductHandler) MountAPI(_, authed *gin.RouterGroup) {
	g := authed.Group("/products")
	ez.RegisterAction(g, h.log, ez.Action[createProductIn]{
		Method: http.MethodPost, Path: "", Binder: ez.BindForm, Status: http.StatusCreated, Handler: h.create,
	})
	ez.RegisterAction(g, h.log, ez.Action[struct{}]{
		Method: http.MethodGet, Path: "", Binder: ez.BindNone, Handler: h.list,
	})
	ez.RegisterAction(g, h.log, ez.Action[sinceIn]{
		Method: http.MethodGet, Path: "/since", Binder: ez.BindQuery, Handler: h.since,
	})
	ez.RegisterAction(g, h.log, ez.Action[struct{}]{
		Method: http.MethodGet, Path: "/stock", Binder: ez.BindNone, Handler: h.stock,
	})
	ez.RegisterAction(g, h.log, ez.Action[struct{}]{
		Method: http.MethodGet, Path: "/:id", Binder: ez.BindNone, Handler: h.get,
	})
	ez.RegisterAction(g, h.log, ez.Action[updateProductIn]{
		Method: http.MethodPut, Path: "/:id", Binder: ez.BindJSON, Handler: h.update,
	})
	ez.RegisterAction(g, h.log, ez.Action[struct{}]{
		Method: http.MethodDelete, Path: "/:id", Binder: ez.BindNone, Handler: h.delete,
	})
}

// ProductItem is the listing projection: no images.
type ProductItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	IsAvailable bool    `json:"isAvailable"`
}

type ProductDetail struct {
	ProductItem
	Images    []string  `json:"images"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newItem(p *domain.Product) ProductItem {
	return ProductItem{ID: p.ID, Name: p.Name, Price: p.Price, IsAvailable: p.IsAvailable}
}

func newItems(ps []domain.Product) []ProductItem {
	out := make([]ProductItem, 0, len(ps))
	for i := range ps {
		out = append(out, newItem(&ps[i]))
	}
	return out
}

type createProductIn struct {
	Name        string                  `form:"name"`
	Price       *float64                `form:"price"`
	IsAvailable *bool                   `form:"isAvailable"`
	Images      []*multipart.FileHeader `form:"images"`
}

func (h *ProductHandler) create(c *gin.Context, in *createProductIn) (resp.Body, error) {
	images, err := product.EncodeImages(in.Images)
	switch {
	case errors.Is(err, product.ErrNoImages):
		return resp.Body{}, ez.BadRequest("No images provided.")
	case errors.Is(err, product.ErrImageType):
		return resp.Body{}, ez.BadRequest("Only image files are allowed!")
	case errors.Is(err, product.ErrImageTooLarge):
		return resp.Body{}, ez.TooLarge(fmt.Sprintf("Each image must be at most %dMB.", product.MaxImageSize>>20))
	case errors.Is(err, product.ErrTooManyImages):
		return resp.Body{}, ez.BadRequest(fmt.Sprintf("At most %d images are allowed.", product.MaxImages))
	case err != nil:
		return resp.Body{}, ez.Internal("Error creating product.", err)
	}

	p, err := h.svc.Create(c.Request.Context(), product.CreateInput{
		Name:        in.Name,
		Price:       in.Price,
		IsAvailable: in.IsAvailable,
		Images:      images,
	})
	switch {
	case errors.Is(err, domain.ErrMissingFields):
		return resp.Body{}, ez.BadRequest("Please provide all required fields.")
	case errors.Is(err, domain.ErrInvalidInput):
		return resp.Body{}, ez.BadRequest("Invalid product data.")
	case errors.Is(err, domain.ErrDuplicateName):
		return resp.Body{}, ez.Conflict(fmt.Sprintf("Product with name %s already exists.", domain.NormalizeProductName(in.Name)))
	case err != nil:
		return resp.Body{}, ez.Internal("Error creating product.", err)
	}
	return resp.OK("Product created successfully.", newItem(p)), nil
}

// list serves GET /products, or a name search when ?name is present.
func (h *ProductHandler) list(c *gin.Context, _ *struct{}) (resp.Body, error) {
	name, searching := c.GetQuery("name")
	if !searching {
		ps, err := h.svc.List(c.Request.Context())
		if err != nil {
			return resp.Body{}, ez.Internal("Error fetching products.", err)
		}
		return resp.OK("Products fetched successfully.", newItems(ps)), nil
	}

	ps, err := h.svc.Search(c.Request.Context(), name)
	switch {
	case errors.Is(err, domain.ErrMissingFields):
		return resp.Body{}, ez.BadRequest("Name is required.")
	case errors.Is(err, domain.ErrNotFound):
		return resp.Body{}, ez.NotFound("No products found.")
	case err != nil:
		return resp.Body{}, ez.Internal("Error fetching products.", err)
	}
	return resp.OK("Products fetched successfully.", newItems(ps)), nil
}

type sinceIn struct {
	Date string `form:"date"`
}

func (h *ProductHandler) since(c *gin.Context, in *sinceIn) (resp.Body, error) {
	t, err := product.ParseDate(in.Date)
	switch {
	case errors.Is(err, domain.ErrMissingFields):
		return resp.Body{}, ez.BadRequest("Date is required.")
	case err != nil:
		return resp.Body{}, ez.BadRequest("Invalid date.")
	}

	ps, err := h.svc.CreatedSince(c.Request.Context(), t)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return resp.Body{}, ez.NotFound("No products found.")
	case err != nil:
		return resp.Body{}, ez.Internal("Error fetching products.", err)
	}
	return resp.OK("Products fetched successfully.", newItems(ps)), nil
}

func (h *ProductHandler) stock(c *gin.Context, _ *struct{}) (resp.Body, error) {
	ps, err := h.svc.InStock(c.Request.Context())
	if err != nil {
		return resp.Body{}, ez.Internal("Error fetching products.", err)
	}
	return resp.OK("Available products fetched successfully.", newItems(ps)), nil
}

func (h *ProductHandler) get(c *gin.Context, _ *struct{}) (resp.Body, error) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return resp.Body{}, ez.NotFound("Product not found.")
	case err != nil:
		return resp.Body{}, ez.Internal("Error fetching product.", err)
	}
	return resp.OK("Product fetched successfully.", ProductDetail{
		ProductItem: newItem(p),
		Images:      p.Images,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}), nil
}

type updateProductIn struct {
	Name        *string  `json:"name"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	IsAvailable *bool    `json:"isAvailable"`
}

func (h *ProductHandler) update(c *gin.Context, in *updateProductIn) (resp.Body, error) {
	p, err := h.svc.Update(c.Request.Context(), c.Param("id"), domain.ProductPatch{
		Name:        in.Name,
		Price:       in.Price,
		IsAvailable: in.IsAvailable,
	})
	switch {
	case errors.Is(err, domain.ErrMissingFields):
		return resp.Body{}, ez.BadRequest("Please provide fields to update.")
	case errors.Is(err, domain.ErrInvalidInput):
		return resp.Body{}, ez.BadRequest("Invalid product data.")
	case errors.Is(err, domain.ErrNotFound):
		return resp.Body{}, ez.NotFound("Product not found.")
	case errors.Is(err, domain.ErrDuplicateName):
		return resp.Body{}, ez.Conflict(fmt.Sprintf("Product with name %s already exists.", domain.NormalizeProductName(deref(in.Name))))
	case err != nil:
		return resp.Body{}, ez.Internal("Error updating product.", err)
	}
	return resp.OK("Product updated successfully.", newItem(p)), nil
}

func (h *ProductHandler) delete(c *gin.Context, _ *struct{}) (resp.Body, error) {
	err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return resp.Body{}, ez.NotFound("Product not found.")
	case err != nil:
		return resp.Body{}, ez.Internal("Error deleting product.", err)
	}
	return resp.OK("Product deleted successfully.", nil), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
