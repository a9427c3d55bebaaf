package user

import (
	"context"
	"net/http"
	"velora_back_end/internal/cache"
	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
	"velora_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/markbates/goth/gothic"
)

// Handler gère l'authentification et le profil, le nœud User vivant dans le graphe
type Handler struct {
	Graph database.GraphRunner
}

func NewHandler(graph database.GraphRunner) *Handler {
	return &Handler{Graph: graph}
}

// ================== AUTH LOCALE ==================

//
// 🟢 POST /api/auth/register — création de compte + nœud User dans le graphe
//
func (h *Handler) Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Name == "" || input.Email == "" || input.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Champs requis manquants"})
		return
	}

	ctx := c.Request.Context()

	// email déjà pris pour un compte local ?
	existing, err := h.Graph.Run(ctx, database.CypherUserByEmail, map[string]any{
		"email":    input.Email,
		"provider": "local",
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur interne"})
		return
	}
	if len(existing) > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Un compte avec cet email existe déjà"})
		return
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	user := models.User{
		ID:       uuid.NewString(),
		Name:     input.Name,
		Email:    input.Email,
		Password: hashedPassword,
		Role:     "customer",
		Provider: "local",
	}

	// MERGE du nœud User (le panier sera rattaché à ce nœud au premier ajout)
	if _, err := h.Graph.RunWrite(ctx, database.CypherCreateUser, map[string]any{
		"id":       user.ID,
		"email":    user.Email,
		"name":     user.Name,
		"password": user.Password,
		"role":     user.Role,
		"provider": user.Provider,
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	token, _ := utils.GenerateJWT(user)
	c.JSON(http.StatusCreated, gin.H{
		"token":  token,
		"userId": user.ID,
		"email":  user.Email,
		"name":   user.Name,
		"role":   user.Role,
	})
}

//
// 🔐 POST /api/auth/login
//
func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	rows, err := h.Graph.Run(ctx, database.CypherUserByEmail, map[string]any{
		"email":    input.Email,
		"provider": "local",
	})
	if err != nil || len(rows) == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	user := userFromRow(rows[0])

	// ✅ Cache Redis des vérifications réussies pour éviter argon2 à chaque login
	valid, _ := cache.GetPasswordHashFromCache(input.Email, input.Password)
	if !valid {
		valid, _ = utils.VerifyPassword(input.Password, user.Password)
		if valid {
			cache.SetPasswordHashInCache(input.Email, input.Password)
		}
	}
	if !valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	token, _ := utils.GenerateJWT(user)
	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"userId": user.ID,
		"email":  user.Email,
		"name":   user.Name,
		"role":   user.Role,
	})
}

//
// 👤 GET /api/auth/me (authentifié)
//
func (h *Handler) Me(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "non authentifié"})
		return
	}

	rows, err := h.Graph.Run(c.Request.Context(), database.CypherUserByID, map[string]any{"id": userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur interne"})
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	c.JSON(http.StatusOK, userFromRow(rows[0]))
}

// ================== AUTH SOCIALE (WEB) ==================

func (h *Handler) BeginAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "aucun provider spécifié"})
		return
	}

	q := c.Request.URL.Query()
	q.Set("provider", provider)
	c.Request.URL.RawQuery = q.Encode()

	gothic.BeginAuthHandler(c.Writer, c.Request)
}

func (h *Handler) CallbackAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "aucun provider spécifié"})
		return
	}

	q := c.Request.URL.Query()
	q.Set("provider", provider)
	c.Request.URL.RawQuery = q.Encode()

	gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Upsert du nœud User pour ce provider
	rows, err := h.Graph.RunWrite(context.Background(), database.CypherUpsertOAuthUser, map[string]any{
		"id":       uuid.NewString(),
		"email":    gothUser.Email,
		"name":     gothUser.Name,
		"role":     "customer",
		"provider": provider,
	})
	if err != nil || len(rows) == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	user := userFromRow(rows[0])
	user.Provider = provider

	token, _ := utils.GenerateJWT(user)
	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"provider": provider,
		"userId":   user.ID,
		"email":    user.Email,
		"name":     user.Name,
	})
}

// userFromRow normalise une ligne du graphe en User
func userFromRow(row map[string]any) models.User {
	u := models.User{}
	if id, ok := row["id"].(string); ok {
		u.ID = id
	}
	if email, ok := row["email"].(string); ok {
		u.Email = email
	}
	if name, ok := row["name"].(string); ok {
		u.Name = name
	}
	if password, ok := row["password"].(string); ok {
		u.Password = password
	}
	if role, ok := row["role"].(string); ok {
		u.Role = role
	}
	if provider, ok := row["provider"].(string); ok {
		u.Provider = provider
	}
	if phone, ok := row["phoneNumber"].(string); ok {
		u.PhoneNumber = phone
	}
	return u
}
