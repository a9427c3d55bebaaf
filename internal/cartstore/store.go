package cartstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"velora_back_end/internal/models"
)

// storageKey est le nom de l'entrée persistée, identique entre sessions.
const storageKey = "cart-storage"

// Identity fournit l'utilisateur courant. Un retour (nil, nil) signifie
// qu'aucune session n'est ouverte.
type Identity interface {
	CurrentUser(ctx context.Context) (*models.User, error)
}

// Store est le magasin panier côté client : il reflète l'état serveur,
// le persiste localement et expose les mutations du panier.
type Store struct {
	baseURL  string
	client   *http.Client
	identity Identity
	storage  Storage

	mu        sync.Mutex
	items     []models.CartItem
	isLoading bool
	lastErr   error
}

type persistedState struct {
	Items []models.CartItem `json:"items"`
}

func New(baseURL string, identity Identity, storage Storage) *Store {
	s := &Store{
		baseURL:  baseURL,
		client:   &http.Client{Timeout: 10 * time.Second},
		identity: identity,
		storage:  storage,
	}
	s.restore()
	return s
}

// restore recharge l'état persisté, silencieusement si rien n'existe.
func (s *Store) restore() {
	if s.storage == nil {
		return
	}
	data, err := s.storage.Load(storageKey)
	if err != nil || len(data) == 0 {
		return
	}
	var state persistedState
	if err := json.Unmarshal(data, &state); err != nil {
		return
	}
	s.items = state.Items
}

// persist écrit l'état courant. L'appelant détient déjà le verrou.
func (s *Store) persist() {
	if s.storage == nil {
		return
	}
	data, err := json.Marshal(persistedState{Items: s.items})
	if err != nil {
		return
	}
	_ = s.storage.Save(storageKey, data)
}

// currentUserID résout l'utilisateur connecté, "" si personne.
func (s *Store) currentUserID(ctx context.Context) (string, error) {
	if s.identity == nil {
		return "", nil
	}
	user, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", nil
	}
	return user.ID, nil
}

//
// 🛒 FetchCart — recharge le panier depuis le serveur.
// Sans session ouverte le panier est simplement vide, jamais une erreur.
//
func (s *Store) FetchCart(ctx context.Context) error {
	s.mu.Lock()
	s.isLoading = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isLoading = false
		s.mu.Unlock()
	}()

	userID, err := s.currentUserID(ctx)
	if err != nil {
		return s.fail(err)
	}
	if userID == "" {
		s.mu.Lock()
		s.items = []models.CartItem{}
		s.lastErr = nil
		s.persist()
		s.mu.Unlock()
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/cart", nil)
	if err != nil {
		return s.fail(err)
	}
	req.Header.Set("user-id", userID)

	resp, err := s.client.Do(req)
	if err != nil {
		return s.fail(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return s.fail(fmt.Errorf("chargement du panier: statut %d", resp.StatusCode))
	}

	var items []models.CartItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return s.fail(err)
	}
	if items == nil {
		items = []models.CartItem{}
	}

	s.mu.Lock()
	s.items = items
	s.lastErr = nil
	s.persist()
	s.mu.Unlock()
	return nil
}

//
// 🟢 AddToCart — envoie un DELTA de quantité, le serveur fait l'incrément.
// La ligne retournée par le serveur remplace (ou complète) l'état local.
//
func (s *Store) AddToCart(ctx context.Context, productID, quantity int64) error {
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return s.fail(err)
	}
	if userID == "" {
		return s.fail(fmt.Errorf("aucun utilisateur connecté"))
	}

	var item models.CartItem
	err = s.do(ctx, http.MethodPost, userID, map[string]any{
		"userId":    userID,
		"productId": productID,
		"quantity":  quantity,
	}, &item)
	if err != nil {
		return s.fail(err)
	}

	s.mu.Lock()
	s.upsertLocked(item)
	s.lastErr = nil
	s.persist()
	s.mu.Unlock()
	return nil
}

//
// 🔁 UpdateQuantity — quantité ABSOLUE. 0 retire la ligne.
//
func (s *Store) UpdateQuantity(ctx context.Context, productID, quantity int64) error {
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return s.fail(err)
	}
	if userID == "" {
		return s.fail(fmt.Errorf("aucun utilisateur connecté"))
	}

	payload := map[string]any{
		"userId":    userID,
		"productId": productID,
		"quantity":  quantity,
	}

	if quantity == 0 {
		if err := s.do(ctx, http.MethodPut, userID, payload, nil); err != nil {
			return s.fail(err)
		}
		s.mu.Lock()
		s.dropLocked(productID)
		s.lastErr = nil
		s.persist()
		s.mu.Unlock()
		return nil
	}

	var item models.CartItem
	if err := s.do(ctx, http.MethodPut, userID, payload, &item); err != nil {
		return s.fail(err)
	}

	s.mu.Lock()
	s.upsertLocked(item)
	s.lastErr = nil
	s.persist()
	s.mu.Unlock()
	return nil
}

//
// ❌ RemoveFromCart — supprime la ligne côté serveur puis localement.
//
func (s *Store) RemoveFromCart(ctx context.Context, productID int64) error {
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return s.fail(err)
	}
	if userID == "" {
		return s.fail(fmt.Errorf("aucun utilisateur connecté"))
	}

	err = s.do(ctx, http.MethodDelete, userID, map[string]any{
		"userId":    userID,
		"productId": productID,
	}, nil)
	if err != nil {
		return s.fail(err)
	}

	s.mu.Lock()
	s.dropLocked(productID)
	s.lastErr = nil
	s.persist()
	s.mu.Unlock()
	return nil
}

// ClearCart vide le panier ligne par ligne, le serveur n'ayant pas
// d'opération de purge globale.
func (s *Store) ClearCart(ctx context.Context) error {
	for _, item := range s.Items() {
		if err := s.RemoveFromCart(ctx, item.ProductID); err != nil {
			return err
		}
	}
	return nil
}

// GetTotal calcule Σ prix × quantité sur l'état local, sans réseau.
func (s *Store) GetTotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, item := range s.items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Items retourne une copie de l'état local.
func (s *Store) Items() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// SetItems remplace l'état local, typiquement après une synchro externe.
func (s *Store) SetItems(items []models.CartItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if items == nil {
		items = []models.CartItem{}
	}
	s.items = items
	s.persist()
}

func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLoading
}

func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// fail mémorise l'erreur sans toucher aux items déjà chargés.
func (s *Store) fail(err error) error {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	return err
}

// do envoie une requête JSON sur /api/cart et décode la réponse si demandé.
// Le header user-id accompagne chaque mutation, c'est la clé des limites
// anti-spam côté serveur.
func (s *Store) do(ctx context.Context, method, userID string, payload map[string]any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+"/api/cart", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("user-id", userID)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("panier: statut %d", resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (s *Store) upsertLocked(item models.CartItem) {
	for i := range s.items {
		if s.items[i].ProductID == item.ProductID {
			s.items[i] = item
			return
		}
	}
	s.items = append(s.items, item)
}

func (s *Store) dropLocked(productID int64) {
	kept := s.items[:0]
	for _, item := range s.items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	s.items = kept
}
