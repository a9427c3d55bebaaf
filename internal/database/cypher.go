package database

import (
	"context"
	"log"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// GraphRunner est l'interface consommée par les handlers (injectable dans les tests)
type GraphRunner interface {
	Run(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)
	RunWrite(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)
}

// Requêtes Cypher nommées pour les opérations fréquentes
const (
	// Panier : User -[:HAS_CART]-> Cart -[r:CONTAINS]-> Product
	CypherGetCart = `
		MATCH (u:User {id: $userId})-[:HAS_CART]->(c:Cart)-[r:CONTAINS]->(p:Product)
		RETURN p.id AS productId, p.name AS name, p.price AS price, r.quantity AS quantity,
		       CASE WHEN p.images IS NOT NULL AND size(p.images) > 0 THEN p.images[0] ELSE NULL END AS image`

	// Ajout : crée le chemin User/Cart/Product si absent et incrémente la quantité (delta)
	CypherAddToCart = `
		MERGE (u:User {id: $userId})
		MERGE (u)-[:HAS_CART]->(c:Cart)
		MERGE (p:Product {id: $productId})
		MERGE (c)-[r:CONTAINS]->(p)
		ON CREATE SET r.quantity = $quantity
		ON MATCH SET r.quantity = r.quantity + $quantity
		RETURN p.id AS productId, p.name AS name, p.price AS price, r.quantity AS quantity,
		       CASE WHEN p.images IS NOT NULL AND size(p.images) > 0 THEN p.images[0] ELSE NULL END AS image`

	// Mise à jour : quantité absolue (SET, pas d'incrément)
	CypherSetCartQuantity = `
		MATCH (u:User {id: $userId})-[:HAS_CART]->(c:Cart)-[r:CONTAINS]->(p:Product {id: $productId})
		SET r.quantity = $quantity
		RETURN p.id AS productId, p.name AS name, p.price AS price, r.quantity AS quantity,
		       CASE WHEN p.images IS NOT NULL AND size(p.images) > 0 THEN p.images[0] ELSE NULL END AS image`

	// Suppression de la relation CONTAINS (la ligne du panier)
	CypherRemoveFromCart = `
		MATCH (u:User {id: $userId})-[:HAS_CART]->(c:Cart)-[r:CONTAINS]->(p:Product {id: $productId})
		DELETE r
		RETURN p.id AS productId`

	// Catalogue produits
	CypherAllProducts = `
		MATCH (p:Product)
		OPTIONAL MATCH (p)-[:BELONGS_TO]->(c:Category)
		WITH p, c
		RETURN DISTINCT {
			id: p.id, name: p.name, price: p.price, rating: p.rating,
			ratingCount: p.ratingCount, description: p.description,
			features: p.features, category: c.name, images: p.images
		} AS product`

	CypherProductByID = `
		MATCH (p:Product {id: $id})
		OPTIONAL MATCH (p)-[:BELONGS_TO]->(c:Category)
		RETURN {
			id: p.id, name: p.name, price: p.price, rating: p.rating,
			ratingCount: p.ratingCount, description: p.description,
			features: p.features, category: c.name, images: p.images
		} AS product`

	CypherCreateProduct = `
		CREATE (p:Product {
			id: $id, name: $name, price: $price, rating: $rating,
			ratingCount: $ratingCount, description: $description,
			category: $category, features: $features, images: $images
		})
		WITH p
		MERGE (c:Category {name: $category})
		MERGE (p)-[:BELONGS_TO]->(c)
		RETURN p.id AS id`

	CypherUpdateProduct = `
		MATCH (p:Product {id: $id})
		SET p += $properties
		RETURN p.id AS id`

	CypherDeleteProduct = `
		MATCH (p:Product {id: $id})
		DETACH DELETE p`

	CypherAllCategories = `
		MATCH (c:Category)
		RETURN c.name AS name, c.description AS description, c.imageUrl AS imageUrl
		ORDER BY c.name`

	CypherAppendProductImage = `
		MATCH (p:Product {id: $id})
		SET p.images = coalesce(p.images, []) + $url
		RETURN p.id AS id`

	// Utilisateurs
	CypherUserByEmail = `
		MATCH (u:User {email: $email, provider: $provider})
		RETURN u.id AS id, u.email AS email, u.name AS name, u.password AS password,
		       u.role AS role, u.provider AS provider, u.phoneNumber AS phoneNumber`

	CypherUserByID = `
		MATCH (u:User {id: $id})
		RETURN u.id AS id, u.email AS email, u.name AS name,
		       u.role AS role, u.provider AS provider, u.phoneNumber AS phoneNumber`

	CypherCreateUser = `
		MERGE (u:User {id: $id})
		SET u.email = $email, u.name = $name, u.password = $password,
		    u.role = $role, u.provider = $provider
		RETURN u.id AS id`

	CypherUpsertOAuthUser = `
		MERGE (u:User {email: $email, provider: $provider})
		ON CREATE SET u.id = $id, u.name = $name, u.role = $role
		RETURN u.id AS id, u.email AS email, u.name AS name, u.role AS role`

	CypherSetUserPhone = `
		MATCH (u:User {id: $userId})
		SET u.phoneNumber = $phoneNumber
		RETURN u.id AS id, u.phoneNumber AS phoneNumber`

	CypherSetUserPassword = `
		MATCH (u:User {id: $userId})
		SET u.password = $password
		RETURN u.id AS id`
)

// Run exécute une requête Cypher en lecture (session par appel, comme le driver JS)
func (gm *GraphManager) Run(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, gm.config.Timeout)
	defer cancel()

	session := gm.session(ctx)
	defer session.Close(ctx)

	result, err := session.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}

	records, err := result.Collect(ctx)
	if err != nil {
		return nil, err
	}

	return recordsToMaps(records), nil
}

// RunWrite exécute une mutation multi-étapes dans une transaction explicite :
// tout le chemin (création + merge de relation) est appliqué ou annulé en bloc
func (gm *GraphManager) RunWrite(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, gm.config.Timeout)
	defer cancel()

	session := gm.session(ctx)
	defer session.Close(ctx)

	out, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		return recordsToMaps(records), nil
	})
	if err != nil {
		return nil, err
	}

	return out.([]map[string]any), nil
}

func recordsToMaps(records []*neo4j.Record) []map[string]any {
	rows := make([]map[string]any, 0, len(records))
	for _, record := range records {
		rows = append(rows, NormalizeGraphValues(record.AsMap()))
	}
	return rows
}

// InitGraphConstraints crée les contraintes d'unicité du modèle
func InitGraphConstraints() {
	ctx := context.Background()

	constraints := []string{
		"CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE",
		"CREATE CONSTRAINT product_id_unique IF NOT EXISTS FOR (p:Product) REQUIRE p.id IS UNIQUE",
		"CREATE CONSTRAINT category_name_unique IF NOT EXISTS FOR (c:Category) REQUIRE c.name IS UNIQUE",
	}

	for _, constraint := range constraints {
		if _, err := Graph.RunWrite(ctx, constraint, nil); err != nil {
			log.Printf("⚠️ Impossible de créer une contrainte du graphe: %v", err)
			return
		}
	}

	log.Println("✅ Contraintes du graphe initialisées")
}

// NormalizeGraphValues normalise récursivement les entiers natifs du graphe
// (toutes les variantes signées/non signées → int64) avant de franchir la
// frontière du service, y compris dans les champs imbriqués
func NormalizeGraphValues(row map[string]any) map[string]any {
	for key, value := range row {
		row[key] = NormalizeGraphValue(value)
	}
	return row
}

func NormalizeGraphValue(value any) any {
	switch v := value.(type) {
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case uint:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return int64(v)
	case map[string]any:
		return NormalizeGraphValues(v)
	case []any:
		for i := range v {
			v[i] = NormalizeGraphValue(v[i])
		}
		return v
	default:
		return value
	}
}
