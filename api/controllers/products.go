package controllers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/davidrenteria/storefront-backend/api/responses"
	"github.com/davidrenteria/storefront-backend/api/validators"
	"github.com/davidrenteria/storefront-backend/internal/catalog"
	pkgerrors "github.com/davidrenteria/storefront-backend/pkg/errors"
	"github.com/davidrenteria/storefront-backend/pkg/logger"
	"github.com/davidrenteria/storefront-backend/pkg/pagination"
)

// maxImageBytes caps product image uploads.
const maxImageBytes = 5 << 20

// ListProducts serves the public catalog with cursor pagination and filters.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		newOnly, err := validators.ParseQueryBool(r, "new")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalog.ListProductsInput{
			NewOnly: newOnly,
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("category_id")); raw != "" {
			categoryID, err := validators.ParseUUID(raw, "category_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.CategoryID = &categoryID
		}

		result, err := svc.ListProducts(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// GetProduct serves a single public product page.
func GetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.ParseUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// AdminCreateProduct creates a product, optionally with an image part.
func AdminCreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		form, image, err := parseProductForm(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := form.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), input, image)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// AdminUpdateProduct applies a partial product update; a new image part
// replaces the stored one.
func AdminUpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.ParseUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		form, image, err := parseProductForm(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := form.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), id, input, image)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// AdminDeleteProduct removes a product and its stored image.
func AdminDeleteProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.ParseUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// productForm is the admin mutation payload. JSON bodies carry the same
// fields; multipart bodies may add an "image" file part.
type productForm struct {
	Name          *string `json:"name,omitempty"`
	Description   *string `json:"description,omitempty"`
	Price         *string `json:"price,omitempty"`
	StockQuantity *int    `json:"stock_quantity,omitempty"`
	CategoryID    *string `json:"category_id,omitempty"`
	IsNew         *bool   `json:"is_new,omitempty"`
}

func (f productForm) toCreateInput() (catalog.CreateProductInput, error) {
	var input catalog.CreateProductInput
	if f.Name == nil || strings.TrimSpace(*f.Name) == "" {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if f.Price == nil {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "price is required")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(*f.Price))
	if err != nil {
		return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
	}
	if f.CategoryID == nil {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "category_id is required")
	}
	categoryID, err := validators.ParseUUID(*f.CategoryID, "category_id")
	if err != nil {
		return input, err
	}

	input = catalog.CreateProductInput{
		Name:       validators.SanitizeString(*f.Name, 200),
		Price:      price,
		CategoryID: categoryID,
	}
	if f.Description != nil {
		input.Description = validators.SanitizeString(*f.Description, 2000)
	}
	if f.StockQuantity != nil {
		input.StockQuantity = *f.StockQuantity
	}
	if f.IsNew != nil {
		input.IsNew = *f.IsNew
	}
	return input, nil
}

func (f productForm) toUpdateInput() (catalog.UpdateProductInput, error) {
	var input catalog.UpdateProductInput
	if f.Name != nil {
		name := validators.SanitizeString(*f.Name, 200)
		input.Name = &name
	}
	if f.Description != nil {
		description := validators.SanitizeString(*f.Description, 2000)
		input.Description = &description
	}
	if f.Price != nil {
		price, err := decimal.NewFromString(strings.TrimSpace(*f.Price))
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
		}
		input.Price = &price
	}
	if f.StockQuantity != nil {
		input.StockQuantity = f.StockQuantity
	}
	if f.CategoryID != nil {
		categoryID, err := validators.ParseUUID(*f.CategoryID, "category_id")
		if err != nil {
			return input, err
		}
		input.CategoryID = &categoryID
	}
	if f.IsNew != nil {
		input.IsNew = f.IsNew
	}
	return input, nil
}

func parseProductForm(r *http.Request) (productForm, *catalog.ImageUpload, error) {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		var form productForm
		if err := validators.DecodeJSONBody(r, &form); err != nil {
			return productForm{}, nil, err
		}
		return form, nil, nil
	}

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		return productForm{}, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}

	form := productForm{
		Name:        formValue(r, "name"),
		Description: formValue(r, "description"),
		Price:       formValue(r, "price"),
		CategoryID:  formValue(r, "category_id"),
	}
	if raw := formValue(r, "stock_quantity"); raw != nil {
		qty, err := strconv.Atoi(*raw)
		if err != nil {
			return productForm{}, nil, pkgerrors.New(pkgerrors.CodeValidation, "stock_quantity must be numeric")
		}
		form.StockQuantity = &qty
	}
	if raw := formValue(r, "is_new"); raw != nil {
		isNew, err := strconv.ParseBool(*raw)
		if err != nil {
			return productForm{}, nil, pkgerrors.New(pkgerrors.CodeValidation, "is_new must be a boolean")
		}
		form.IsNew = &isNew
	}

	image, err := readImagePart(r)
	if err != nil {
		return productForm{}, nil, err
	}
	return form, image, nil
}

func formValue(r *http.Request, key string) *string {
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	value := values[0]
	return &value
}

func readImagePart(r *http.Request) (*catalog.ImageUpload, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid image part")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read image part")
	}
	if len(data) > maxImageBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image exceeds the size limit")
	}

	return &catalog.ImageUpload{
		Filename:    header.Filename,
		ContentType: partContentType(header),
		Data:        data,
	}, nil
}

func partContentType(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
