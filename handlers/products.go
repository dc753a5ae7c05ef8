package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dukahub/backoffice/models"
)

const productSelectQuery = `SELECT id, name, sku, unit_price, stock_quantity, created_at, updated_at FROM products`

func scanProduct(scanner interface{ Scan(...any) error }) (models.Product, error) {
	var p models.Product
	err := scanner.Scan(&p.ID, &p.Name, &p.SKU, &p.UnitPrice, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// ListProducts lists all products
// @Summary      List products
// @Description  Get the product catalog.
// @Tags         products
// @Produce      json
// @Param        search  query     string  false  "Search by name or SKU"
// @Success      200     {object}  Response{data=[]models.Product}
// @Router       /products [get]
// @Security     BasicAuth
func ListProducts(w http.ResponseWriter, r *http.Request) {
	query := productSelectQuery
	var args []any
	if search := r.URL.Query().Get("search"); search != "" {
		query += " WHERE name LIKE ? OR sku LIKE ?"
		like := "%" + search + "%"
		args = append(args, like, like)
	}
	query += " ORDER BY name COLLATE NOCASE"

	rows, err := DB.Query(query, args...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		products = append(products, p)
	}
	if products == nil {
		products = []models.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// GetProduct retrieves a single product by ID
// @Summary      Get product
// @Tags         products
// @Produce      json
// @Param        id   path      int  true  "Product ID"
// @Success      200  {object}  Response{data=models.Product}
// @Failure      404  {object}  Response{error=string}
// @Router       /products/{id} [get]
// @Security     BasicAuth
func GetProduct(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	p, err := scanProduct(DB.QueryRow(productSelectQuery+" WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "product not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreateProduct creates a new product
// @Summary      Create product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        product  body      models.ProductInput  true  "Product contents"
// @Success      201      {object}  Response{data=models.Product}
// @Failure      400      {object}  Response{error=string}
// @Router       /products [post]
// @Security     BasicAuth
func CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input models.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	var id int
	err := DB.QueryRow(`INSERT INTO products (name, sku, unit_price, stock_quantity)
		VALUES (?, ?, ?, ?) RETURNING id`,
		input.Name, input.SKU, input.UnitPrice, input.StockQuantity).Scan(&id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	p, _ := scanProduct(DB.QueryRow(productSelectQuery+" WHERE id = ?", id))
	writeJSON(w, http.StatusCreated, p)
}

// UpdateProduct updates an existing product
// @Summary      Update product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id       path      int                  true  "Product ID"
// @Param        product  body      models.ProductInput  true  "Updated product contents"
// @Success      200      {object}  Response{data=models.Product}
// @Failure      404      {object}  Response{error=string}
// @Router       /products/{id} [put]
// @Security     BasicAuth
func UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var input models.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := DB.Exec(`UPDATE products SET name = ?, sku = ?, unit_price = ?, stock_quantity = ?,
		updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		input.Name, input.SKU, input.UnitPrice, input.StockQuantity, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	p, _ := scanProduct(DB.QueryRow(productSelectQuery+" WHERE id = ?", id))
	writeJSON(w, http.StatusOK, p)
}

// DeleteProduct deletes a product
// @Summary      Delete product
// @Tags         products
// @Produce      json
// @Param        id   path      int  true  "Product ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Router       /products/{id} [delete]
// @Security     BasicAuth
func DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	res, err := DB.Exec("DELETE FROM products WHERE id = ?", id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
