package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/r1988spaulos-cloud/aquila-modas-infantil/internal/catalog"
)

// listProducts returns the catalog filtered by the query parameters.
// All filter parameters are optional; absent ones do not constrain the
// result. Multi-value parameters accept both repeats and comma lists.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := catalog.Query{
		Category:  q.Get("category"),
		Search:    q.Get("q"),
		Colors:    parseList(q["colors"]),
		Sizes:     parseList(q["sizes"]),
		AgeRanges: parseList(q["ages"]),
	}

	products := h.catalog.Filter(query)
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeProducts(e, products)
	})
}

// getProduct returns a single product by numeric id.
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "product id must be an integer")
		return
	}

	p, err := h.catalog.GetByID(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeProduct(e, p)
	})
}

// getFilters returns the filter vocabulary the catalog was built with.
func (h *Handler) getFilters(w http.ResponseWriter, r *http.Request) {
	v := h.catalog.Vocabulary()
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("categories", func(e *jx.Encoder) { encodeStrings(e, v.Categories) })
			e.Field("colors", func(e *jx.Encoder) { encodeStrings(e, v.Colors) })
			e.Field("sizes", func(e *jx.Encoder) { encodeStrings(e, v.Sizes) })
			e.Field("ageRanges", func(e *jx.Encoder) { encodeStrings(e, v.AgeRanges) })
		})
	})
}

// listNewArrivals returns the products highlighted as new.
func (h *Handler) listNewArrivals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeProducts(e, h.catalog.NewArrivals())
	})
}

// listBestSellers returns the products highlighted as best sellers.
func (h *Handler) listBestSellers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeProducts(e, h.catalog.BestSellers())
	})
}

func encodeProducts(e *jx.Encoder, products []catalog.Product) {
	e.Arr(func(e *jx.Encoder) {
		for _, p := range products {
			encodeProduct(e, p)
		}
	})
}

func encodeProduct(e *jx.Encoder, p catalog.Product) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int(p.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("price", func(e *jx.Encoder) { e.Float64(p.Price.InexactFloat64()) })
		e.Field("category", func(e *jx.Encoder) { e.Str(p.Category) })
		e.Field("image", func(e *jx.Encoder) { e.Str(p.Image) })
		e.Field("sizes", func(e *jx.Encoder) { encodeStrings(e, p.Sizes) })
		e.Field("description", func(e *jx.Encoder) { e.Str(p.Description) })
		e.Field("color", func(e *jx.Encoder) { e.Str(p.Color) })
		e.Field("ageRange", func(e *jx.Encoder) { e.Str(p.AgeRange) })
		e.Field("isNew", func(e *jx.Encoder) { e.Bool(p.New) })
		e.Field("isBestSeller", func(e *jx.Encoder) { e.Bool(p.BestSeller) })
	})
}

func encodeStrings(e *jx.Encoder, values []string) {
	e.Arr(func(e *jx.Encoder) {
		for _, v := range values {
			e.Str(v)
		}
	})
}

// parseList flattens repeated query values and comma lists into one
// slice, dropping empty entries.
func parseList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
