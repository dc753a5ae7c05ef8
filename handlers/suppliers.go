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

const supplierSelectQuery = `SELECT id, name, phone, email, notes, created_at, updated_at FROM suppliers`

func scanSupplier(scanner interface{ Scan(...any) error }) (models.Supplier, error) {
	var s models.Supplier
	err := scanner.Scan(&s.ID, &s.Name, &s.Phone, &s.Email, &s.Notes, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// ListSuppliers lists all suppliers
// @Summary      List suppliers
// @Tags         suppliers
// @Produce      json
// @Success      200  {object}  Response{data=[]models.Supplier}
// @Router       /suppliers [get]
// @Security     BasicAuth
func ListSuppliers(w http.ResponseWriter, r *http.Request) {
	rows, err := DB.Query(supplierSelectQuery + " ORDER BY name COLLATE NOCASE")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	var suppliers []models.Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		suppliers = append(suppliers, s)
	}
	if suppliers == nil {
		suppliers = []models.Supplier{}
	}
	writeJSON(w, http.StatusOK, suppliers)
}

// GetSupplier retrieves a single supplier by ID
// @Summary      Get supplier
// @Tags         suppliers
// @Produce      json
// @Param        id   path      int  true  "Supplier ID"
// @Success      200  {object}  Response{data=models.Supplier}
// @Failure      404  {object}  Response{error=string}
// @Router       /suppliers/{id} [get]
// @Security     BasicAuth
func GetSupplier(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	s, err := scanSupplier(DB.QueryRow(supplierSelectQuery+" WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "supplier not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// CreateSupplier creates a new supplier
// @Summary      Create supplier
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        supplier  body      models.SupplierInput  true  "Supplier contents"
// @Success      201       {object}  Response{data=models.Supplier}
// @Failure      400       {object}  Response{error=string}
// @Router       /suppliers [post]
// @Security     BasicAuth
func CreateSupplier(w http.ResponseWriter, r *http.Request) {
	var input models.SupplierInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	var id int
	err := DB.QueryRow(`INSERT INTO suppliers (name, phone, email, notes) VALUES (?, ?, ?, ?) RETURNING id`,
		input.Name, input.Phone, input.Email, input.Notes).Scan(&id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s, _ := scanSupplier(DB.QueryRow(supplierSelectQuery+" WHERE id = ?", id))
	writeJSON(w, http.StatusCreated, s)
}

// UpdateSupplier updates an existing supplier
// @Summary      Update supplier
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        id        path      int                   true  "Supplier ID"
// @Param        supplier  body      models.SupplierInput  true  "Updated supplier contents"
// @Success      200       {object}  Response{data=models.Supplier}
// @Failure      404       {object}  Response{error=string}
// @Router       /suppliers/{id} [put]
// @Security     BasicAuth
func UpdateSupplier(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var input models.SupplierInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := DB.Exec(`UPDATE suppliers SET name = ?, phone = ?, email = ?, notes = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		input.Name, input.Phone, input.Email, input.Notes, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "supplier not found")
		return
	}
	s, _ := scanSupplier(DB.QueryRow(supplierSelectQuery+" WHERE id = ?", id))
	writeJSON(w, http.StatusOK, s)
}

// DeleteSupplier deletes a supplier
// @Summary      Delete supplier
// @Tags         suppliers
// @Produce      json
// @Param        id   path      int  true  "Supplier ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Router       /suppliers/{id} [delete]
// @Security     BasicAuth
func DeleteSupplier(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	res, err := DB.Exec("DELETE FROM suppliers WHERE id = ?", id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "supplier not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
