package product

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// fakeGraph rejoue en mémoire les requêtes catalogue.
type fakeGraph struct {
	mu       sync.Mutex
	products map[int64]map[string]any
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{products: map[int64]map[string]any{}}
}

func (f *fakeGraph) seed(p models.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[p.ID] = map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"price":       p.Price,
		"description": p.Description,
		"category":    p.Category,
	}
}

func (f *fakeGraph) projection(id int64) map[string]any {
	out := map[string]any{}
	for k, v := range f.products[id] {
		out[k] = v
	}
	return out
}

func (f *fakeGraph) Run(_ context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch cypher {
	case database.CypherAllProducts:
		ids := make([]int64, 0, len(f.products))
		for id := range f.products {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		rows := make([]map[string]any, 0, len(ids))
		for _, id := range ids {
			rows = append(rows, map[string]any{"product": f.projection(id)})
		}
		return rows, nil

	case database.CypherProductByID:
		id := params["id"].(int64)
		if _, ok := f.products[id]; !ok {
			return nil, nil
		}
		return []map[string]any{{"product": f.projection(id)}}, nil
	}
	return nil, nil
}

func (f *fakeGraph) RunWrite(_ context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch cypher {
	case database.CypherCreateProduct:
		id := params["id"].(int64)
		f.products[id] = map[string]any{
			"id":          id,
			"name":        params["name"],
			"price":       params["price"],
			"description": params["description"],
			"category":    params["category"],
		}
		return []map[string]any{{"id": id}}, nil

	case database.CypherUpdateProduct:
		id := params["id"].(int64)
		node, ok := f.products[id]
		if !ok {
			return nil, nil
		}
		for k, v := range params["properties"].(map[string]any) {
			node[k] = v
		}
		return []map[string]any{{"id": id}}, nil

	case database.CypherDeleteProduct:
		delete(f.products, params["id"].(int64))
		return []map[string]any{}, nil
	}
	return nil, nil
}

func newProductRouter(graph *fakeGraph) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(graph)

	r := gin.New()
	r.GET("/api/products", h.GetAllProducts)
	r.GET("/api/products/:id", h.GetProduct)
	r.POST("/api/products", h.CreateProduct)
	r.PUT("/api/products/:id", h.UpdateProduct)
	r.DELETE("/api/products/:id", h.DeleteProduct)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestGetAllProducts(t *testing.T) {
	graph := newFakeGraph()
	graph.seed(models.Product{ID: 1, Name: "Casque sans fil", Price: 59.99, Category: "Audio"})
	graph.seed(models.Product{ID: 2, Name: "Clavier mécanique", Price: 120, Category: "Périphériques"})

	rec := doJSON(t, newProductRouter(graph), http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var products []models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	require.Len(t, products, 2)
	require.Equal(t, "Casque sans fil", products[0].Name)
	require.Equal(t, "Périphériques", products[1].Category)
}

func TestGetAllProductsEmptyCatalog(t *testing.T) {
	rec := doJSON(t, newProductRouter(newFakeGraph()), http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())
}

func TestGetProduct(t *testing.T) {
	graph := newFakeGraph()
	graph.seed(models.Product{ID: 7, Name: "Casque sans fil", Price: 59.99, Category: "Audio"})

	rec := doJSON(t, newProductRouter(graph), http.MethodGet, "/api/products/7", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var p models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	require.Equal(t, int64(7), p.ID)
	require.Equal(t, "Casque sans fil", p.Name)
	require.Equal(t, 59.99, p.Price)
}

func TestGetProductNotFound(t *testing.T) {
	rec := doJSON(t, newProductRouter(newFakeGraph()), http.MethodGet, "/api/products/99", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetProductBadID(t *testing.T) {
	rec := doJSON(t, newProductRouter(newFakeGraph()), http.MethodGet, "/api/products/abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateProduct(t *testing.T) {
	graph := newFakeGraph()
	r := newProductRouter(graph)

	rec := doJSON(t, r, http.MethodPost, "/api/products", models.Product{
		ID: 3, Name: "Souris", Price: 25.5, Category: "Périphériques",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/products/3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateProductValidation(t *testing.T) {
	r := newProductRouter(newFakeGraph())

	for _, p := range []models.Product{
		{Name: "Souris", Price: 25.5, Category: "Périphériques"},
		{ID: 3, Price: 25.5, Category: "Périphériques"},
		{ID: 3, Name: "Souris", Category: "Périphériques"},
		{ID: 3, Name: "Souris", Price: 25.5},
	} {
		rec := doJSON(t, r, http.MethodPost, "/api/products", p)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	}
}

func TestUpdateProduct(t *testing.T) {
	graph := newFakeGraph()
	r := newProductRouter(graph)
	graph.seed(models.Product{ID: 1, Name: "Casque", Price: 59.99, Category: "Audio"})

	rec := doJSON(t, r, http.MethodPut, "/api/products/1", map[string]any{"price": 49.99})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/products/1", nil)
	var p models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	require.Equal(t, 49.99, p.Price)
}

func TestUpdateProductIgnoresIDRewrite(t *testing.T) {
	graph := newFakeGraph()
	r := newProductRouter(graph)
	graph.seed(models.Product{ID: 1, Name: "Casque", Price: 59.99, Category: "Audio"})

	rec := doJSON(t, r, http.MethodPut, "/api/products/1", map[string]any{"id": 42, "name": "Casque v2"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/products/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var p models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	require.Equal(t, int64(1), p.ID)
	require.Equal(t, "Casque v2", p.Name)
}

func TestUpdateProductNotFound(t *testing.T) {
	rec := doJSON(t, newProductRouter(newFakeGraph()), http.MethodPut, "/api/products/99", map[string]any{"price": 1})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteProduct(t *testing.T) {
	graph := newFakeGraph()
	r := newProductRouter(graph)
	graph.seed(models.Product{ID: 1, Name: "Casque", Price: 59.99, Category: "Audio"})

	rec := doJSON(t, r, http.MethodDelete, "/api/products/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/products/1", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
