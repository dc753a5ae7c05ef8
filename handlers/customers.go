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

const customerSelectQuery = `SELECT c.id, c.name, c.phone, c.email, c.created_at, c.updated_at,
	COALESCE((SELECT SUM(p.amount) FROM payments p JOIN invoices i ON p.invoice_id = i.id WHERE i.customer_id = c.id), 0)
	FROM customers c`

func scanCustomer(scanner interface{ Scan(...any) error }) (models.Customer, error) {
	var c models.Customer
	err := scanner.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.CreatedAt, &c.UpdatedAt, &c.TotalPaid)
	return c, err
}

// ListCustomers lists all customers
// @Summary      List customers
// @Description  Get all customers with their total paid amounts.
// @Tags         customers
// @Produce      json
// @Success      200  {object}  Response{data=[]models.Customer}
// @Router       /customers [get]
// @Security     BasicAuth
func ListCustomers(w http.ResponseWriter, r *http.Request) {
	rows, err := DB.Query(customerSelectQuery + " ORDER BY c.name COLLATE NOCASE")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		customers = append(customers, c)
	}
	if customers == nil {
		customers = []models.Customer{}
	}
	writeJSON(w, http.StatusOK, customers)
}

// GetCustomer retrieves a single customer by ID
// @Summary      Get customer
// @Tags         customers
// @Produce      json
// @Param        id   path      int  true  "Customer ID"
// @Success      200  {object}  Response{data=models.Customer}
// @Failure      404  {object}  Response{error=string}
// @Router       /customers/{id} [get]
// @Security     BasicAuth
func GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	c, err := scanCustomer(DB.QueryRow(customerSelectQuery+" WHERE c.id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "customer not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CreateCustomer creates a new customer
// @Summary      Create customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        customer  body      models.CustomerInput  true  "Customer contents"
// @Success      201       {object}  Response{data=models.Customer}
// @Failure      400       {object}  Response{error=string}
// @Router       /customers [post]
// @Security     BasicAuth
func CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var input models.CustomerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	var id int
	err := DB.QueryRow(`INSERT INTO customers (name, phone, email) VALUES (?, ?, ?) RETURNING id`,
		input.Name, input.Phone, input.Email).Scan(&id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	c, _ := scanCustomer(DB.QueryRow(customerSelectQuery+" WHERE c.id = ?", id))
	writeJSON(w, http.StatusCreated, c)
}

// UpdateCustomer updates an existing customer
// @Summary      Update customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id        path      int                   true  "Customer ID"
// @Param        customer  body      models.CustomerInput  true  "Updated customer contents"
// @Success      200       {object}  Response{data=models.Customer}
// @Failure      404       {object}  Response{error=string}
// @Router       /customers/{id} [put]
// @Security     BasicAuth
func UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var input models.CustomerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := DB.Exec(`UPDATE customers SET name = ?, phone = ?, email = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		input.Name, input.Phone, input.Email, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "customer not found")
		return
	}
	c, _ := scanCustomer(DB.QueryRow(customerSelectQuery+" WHERE c.id = ?", id))
	writeJSON(w, http.StatusOK, c)
}

// DeleteCustomer deletes a customer
// @Summary      Delete customer
// @Tags         customers
// @Produce      json
// @Param        id   path      int  true  "Customer ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Router       /customers/{id} [delete]
// @Security     BasicAuth
func DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	res, err := DB.Exec("DELETE FROM customers WHERE id = ?", id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "customer not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
