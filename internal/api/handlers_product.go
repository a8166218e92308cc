/**
 * @description
 * HTTP handlers for the product provisioning pipeline and the listing
 * endpoints. Product creation accepts a multipart form so the image travels
 * with the metadata in a single request.
 */

package api

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/zelipay/monetization-service/internal/domain"
)

// maxProductImageBytes caps the uploaded image size (5 MiB).
const maxProductImageBytes = 5 << 20

var errInvalidAmountParam = errors.New("invalid amount parameter")

func parseAmountParam(raw string) (int64, error) {
	if raw == "" {
		return 0, errInvalidAmountParam
	}
	amount, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errInvalidAmountParam
	}
	return amount, nil
}

// CreateProductHandler runs the provisioning pipeline for a new product.
// The request is multipart/form-data with fields name, description, amount,
// currency, redirect_url and an optional image part.
func (h *MonetizationHandlers) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxProductImageBytes); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	name := r.FormValue("name")
	if name == "" {
		h.writeError(w, http.StatusBadRequest, "Product name is required")
		return
	}
	amount, err := parseAmountParam(r.FormValue("amount"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid amount parameter")
		return
	}
	currency := r.FormValue("currency")
	if currency == "" {
		currency = "XOF"
	}
	if !domain.IsSupportedCurrency(currency) {
		h.writeError(w, http.StatusBadRequest, "Unsupported currency")
		return
	}

	input := domain.NewProductInput{
		Name:        name,
		Description: r.FormValue("description"),
		Amount:      amount,
		Currency:    currency,
		RedirectURL: r.FormValue("redirect_url"),
	}

	file, header, err := r.FormFile("image")
	if err == nil {
		defer file.Close()
		data, readErr := io.ReadAll(io.LimitReader(file, maxProductImageBytes+1))
		if readErr != nil {
			h.writeError(w, http.StatusBadRequest, "Unable to read image upload")
			return
		}
		if len(data) > maxProductImageBytes {
			h.writeError(w, http.StatusRequestEntityTooLarge, "Image exceeds the 5 MiB limit")
			return
		}
		input.Image = data
		input.ImageContentType = header.Header.Get("Content-Type")
	} else if !errors.Is(err, http.ErrMissingFile) {
		h.writeError(w, http.StatusBadRequest, "Invalid image upload")
		return
	}

	log.Printf("level=info component=api endpoint=create_product outcome=accepted account_id=%s name=%q amount=%d", accountID, name, amount)

	product, err := h.service.CreateProduct(r.Context(), accountID, input)
	if err != nil {
		h.writePipelineError(w, "create_product", accountID, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, product)
}

// ListProductsHandler returns the account's products, newest first.
func (h *MonetizationHandlers) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	products, err := h.service.ListProducts(r.Context(), accountID)
	if err != nil {
		log.Printf("level=error component=api endpoint=list_products outcome=failed account_id=%s err=%v", accountID, err)
		h.writeError(w, http.StatusInternalServerError, genericFailureMessage)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	h.writeJSON(w, http.StatusOK, products)
}

// ListPaymentLinksHandler returns the account's provisioned payment links.
func (h *MonetizationHandlers) ListPaymentLinksHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	links, err := h.service.ListPaymentLinks(r.Context(), accountID)
	if err != nil {
		log.Printf("level=error component=api endpoint=list_payment_links outcome=failed account_id=%s err=%v", accountID, err)
		h.writeError(w, http.StatusInternalServerError, genericFailureMessage)
		return
	}
	if links == nil {
		links = []domain.PaymentLinkRef{}
	}
	h.writeJSON(w, http.StatusOK, links)
}
