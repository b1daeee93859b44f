package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jhoicas/rental-api/internal/application/dto"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Columnas esperadas, en este orden: sku,name,category,price,rental_rate,quantity.
// rental_rate vacío = ítem sin tarifa (solo venta). La primera fila es el encabezado.
var catalogHeader = []string{"sku", "name", "category", "price", "rental_rate", "quantity"}

// readCatalog convierte el CSV en solicitudes de alta. latin1 decodifica archivos ISO-8859-1
// exportados desde planillas.
func readCatalog(r io.Reader, latin1 bool) ([]dto.CreateItemRequest, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = len(catalogHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("leer encabezado: %w", err)
	}
	for i, col := range catalogHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), col) {
			return nil, fmt.Errorf("columna %d: esperaba %q, encontró %q", i+1, col, header[i])
		}
	}

	var out []dto.CreateItemRequest
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		req, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		out = append(out, req)
	}
}

func parseRow(rec []string) (dto.CreateItemRequest, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(rec[3]))
	if err != nil {
		return dto.CreateItemRequest{}, fmt.Errorf("price: %w", err)
	}
	qty, err := strconv.Atoi(strings.TrimSpace(rec[5]))
	if err != nil {
		return dto.CreateItemRequest{}, fmt.Errorf("quantity: %w", err)
	}
	req := dto.CreateItemRequest{
		SKU:      rec[0],
		Name:     rec[1],
		Category: strings.TrimSpace(rec[2]),
		Price:    price,
		Quantity: qty,
	}
	if s := strings.TrimSpace(rec[4]); s != "" {
		rate, err := decimal.NewFromString(s)
		if err != nil {
			return dto.CreateItemRequest{}, fmt.Errorf("rental_rate: %w", err)
		}
		req.RentalRate = &rate
	} else {
		rentable := false
		req.IsRentable = &rentable
	}
	return req, nil
}
