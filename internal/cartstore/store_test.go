package cartstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"velora_back_end/internal/models"

	"github.com/stretchr/testify/require"
)

type staticIdentity struct {
	user *models.User
	err  error
}

func (s staticIdentity) CurrentUser(context.Context) (*models.User, error) {
	return s.user, s.err
}

type memoryStorage struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{entries: map[string][]byte{}}
}

func (m *memoryStorage) Load(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[name], nil
}

func (m *memoryStorage) Save(name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[name] = append([]byte(nil), data...)
	return nil
}

// fakeServer rejoue le contrat HTTP du panier en mémoire.
func fakeServer(t *testing.T) (*httptest.Server, *sync.Map) {
	t.Helper()

	var carts sync.Map // userID → map[int64]models.CartItem

	cartFor := func(userID string) map[int64]models.CartItem {
		v, _ := carts.LoadOrStore(userID, map[int64]models.CartItem{})
		return v.(map[int64]models.CartItem)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.Method == http.MethodGet {
			userID := r.Header.Get("user-id")
			if userID == "" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			items := make([]models.CartItem, 0)
			for _, item := range cartFor(userID) {
				items = append(items, item)
			}
			json.NewEncoder(w).Encode(items)
			return
		}

		var input struct {
			UserID    string `json:"userId"`
			ProductID int64  `json:"productId"`
			Quantity  *int64 `json:"quantity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.UserID == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		cart := cartFor(input.UserID)
		switch r.Method {
		case http.MethodPost:
			item := cart[input.ProductID]
			item.ProductID = input.ProductID
			item.Name = fmt.Sprintf("produit-%d", input.ProductID)
			item.Price = 10
			item.Quantity += *input.Quantity
			cart[input.ProductID] = item
			json.NewEncoder(w).Encode(item)

		case http.MethodPut:
			item, ok := cart[input.ProductID]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			if *input.Quantity == 0 {
				delete(cart, input.ProductID)
				json.NewEncoder(w).Encode(map[string]any{"message": "Produit retiré du panier"})
				return
			}
			item.Quantity = *input.Quantity
			cart[input.ProductID] = item
			json.NewEncoder(w).Encode(item)

		case http.MethodDelete:
			if _, ok := cart[input.ProductID]; !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			delete(cart, input.ProductID)
			json.NewEncoder(w).Encode(map[string]any{"message": "Produit supprimé du panier"})
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &carts
}

func loggedIn(id string) Identity {
	return staticIdentity{user: &models.User{ID: id, Email: id + "@example.com"}}
}

func TestFetchCartWithoutSessionIsEmpty(t *testing.T) {
	srv, _ := fakeServer(t)
	store := New(srv.URL, staticIdentity{}, newMemoryStorage())

	require.NoError(t, store.FetchCart(context.Background()))
	require.Empty(t, store.Items())
	require.NoError(t, store.Err())
}

func TestFetchCartFailureKeepsLocalItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	storage := newMemoryStorage()
	store := New(srv.URL, loggedIn("user-1"), storage)
	store.SetItems([]models.CartItem{{ProductID: 1, Name: "produit-1", Price: 10, Quantity: 2}})

	require.Error(t, store.FetchCart(context.Background()))
	require.Error(t, store.Err())
	require.Len(t, store.Items(), 1)
	require.Equal(t, int64(2), store.Items()[0].Quantity)
}

func TestAddToCartSendsDeltaAndMergesServerLine(t *testing.T) {
	srv, _ := fakeServer(t)
	store := New(srv.URL, loggedIn("user-1"), newMemoryStorage())

	require.NoError(t, store.AddToCart(context.Background(), 1, 1))
	require.NoError(t, store.AddToCart(context.Background(), 1, 2))

	items := store.Items()
	require.Len(t, items, 1)
	require.Equal(t, int64(3), items[0].Quantity)
}

func TestAddToCartWithoutSessionFails(t *testing.T) {
	srv, _ := fakeServer(t)
	store := New(srv.URL, staticIdentity{}, newMemoryStorage())

	require.Error(t, store.AddToCart(context.Background(), 1, 1))
	require.Error(t, store.Err())
}

func TestUpdateQuantityZeroDropsLine(t *testing.T) {
	srv, _ := fakeServer(t)
	store := New(srv.URL, loggedIn("user-1"), newMemoryStorage())

	require.NoError(t, store.AddToCart(context.Background(), 1, 2))
	require.NoError(t, store.UpdateQuantity(context.Background(), 1, 0))
	require.Empty(t, store.Items())
}

func TestUpdateQuantityIsAbsolute(t *testing.T) {
	srv, _ := fakeServer(t)
	store := New(srv.URL, loggedIn("user-1"), newMemoryStorage())

	require.NoError(t, store.AddToCart(context.Background(), 1, 5))
	require.NoError(t, store.UpdateQuantity(context.Background(), 1, 2))

	items := store.Items()
	require.Len(t, items, 1)
	require.Equal(t, int64(2), items[0].Quantity)
}

func TestMutationsCarryUserHeader(t *testing.T) {
	// Les limites anti-spam côté serveur sont indexées sur ce header,
	// il doit donc accompagner chaque mutation, pas seulement les lectures
	headers := map[string]string{}
	var mu sync.Mutex

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		headers[r.Method] = r.Header.Get("user-id")
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.CartItem{ProductID: 1, Price: 10, Quantity: 1})
	}))
	t.Cleanup(srv.Close)

	store := New(srv.URL, loggedIn("user-1"), newMemoryStorage())
	require.NoError(t, store.AddToCart(context.Background(), 1, 1))
	require.NoError(t, store.UpdateQuantity(context.Background(), 1, 2))
	require.NoError(t, store.RemoveFromCart(context.Background(), 1))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, "user-1", headers[http.MethodPost])
	require.Equal(t, "user-1", headers[http.MethodPut])
	require.Equal(t, "user-1", headers[http.MethodDelete])
}

func TestRemoveFromCartMissingLineKeepsItems(t *testing.T) {
	srv, _ := fakeServer(t)
	store := New(srv.URL, loggedIn("user-1"), newMemoryStorage())

	require.NoError(t, store.AddToCart(context.Background(), 1, 2))

	// Le serveur répond 404 : l'erreur est mémorisée, l'état local intact
	require.Error(t, store.RemoveFromCart(context.Background(), 42))
	require.Error(t, store.Err())

	items := store.Items()
	require.Len(t, items, 1)
	require.Equal(t, int64(1), items[0].ProductID)
	require.Equal(t, int64(2), items[0].Quantity)
}

func TestClearCartRemovesEveryLine(t *testing.T) {
	srv, _ := fakeServer(t)
	store := New(srv.URL, loggedIn("user-1"), newMemoryStorage())

	require.NoError(t, store.AddToCart(context.Background(), 1, 1))
	require.NoError(t, store.AddToCart(context.Background(), 2, 3))
	require.NoError(t, store.ClearCart(context.Background()))
	require.Empty(t, store.Items())
}

func TestGetTotal(t *testing.T) {
	store := New("http://unused", staticIdentity{}, nil)
	require.Equal(t, float64(0), store.GetTotal())

	store.SetItems([]models.CartItem{
		{ProductID: 1, Price: 59.99, Quantity: 2},
		{ProductID: 2, Price: 120, Quantity: 1},
	})
	require.InDelta(t, 239.98, store.GetTotal(), 0.0001)
}

func TestStatePersistsAcrossInstances(t *testing.T) {
	srv, _ := fakeServer(t)
	storage := newMemoryStorage()

	store := New(srv.URL, loggedIn("user-1"), storage)
	require.NoError(t, store.AddToCart(context.Background(), 1, 2))

	// Une nouvelle instance sur le même stockage retrouve l'état
	reloaded := New(srv.URL, loggedIn("user-1"), storage)
	items := reloaded.Items()
	require.Len(t, items, 1)
	require.Equal(t, int64(1), items[0].ProductID)
	require.Equal(t, int64(2), items[0].Quantity)
}

func TestFileStorageRoundTrip(t *testing.T) {
	fs, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	missing, err := fs.Load("cart-storage")
	require.NoError(t, err)
	require.Nil(t, missing)

	require.NoError(t, fs.Save("cart-storage", []byte(`{"items":[]}`)))
	data, err := fs.Load("cart-storage")
	require.NoError(t, err)
	require.JSONEq(t, `{"items":[]}`, string(data))
}
