package database

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/redis/go-redis/v9"
)

// --- Configuration Neo4j ---
type GraphConfig struct {
	URI      string
	Username string
	Password string
	Database string
	Timeout  time.Duration
}

// GraphManager gère le driver Neo4j et ouvre une session par requête
type GraphManager struct {
	driver neo4j.DriverWithContext
	config GraphConfig
	mu     sync.Mutex
}

// --- Variables Globales ---
var (
	Graph       *GraphManager
	Redis       *redis.Client
	RedisClient *redis.Client // Alias pour compatibilité
	Elastic     *elasticsearch.Client
	MinIO       *minio.Client
)

// --- Initialisation ---
func ConnectDatabases() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 1. Initialiser Neo4j
	if err := InitGraph(ctx); err != nil {
		log.Fatalf("❌ Échec initialisation Neo4j: %v", err)
	}

	// 2. Initialiser Redis
	connectRedis(ctx)

	// 3. Initialiser Elasticsearch
	connectElastic()

	// 4. Initialiser MinIO
	connectMinIO(ctx)

	log.Println("✅ Toutes les bases de données sont connectées")
}

// =============================================
// NEO4J (graphe User / Cart / Product / Category)
// =============================================

// InitGraph initialise le gestionnaire de connexions Neo4j
func InitGraph(ctx context.Context) error {
	cfg := loadGraphConfig()

	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return err
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		return err
	}

	Graph = &GraphManager{driver: driver, config: cfg}
	log.Println("✅ Connecté à Neo4j :", cfg.URI)
	return nil
}

// loadGraphConfig charge la configuration depuis .env
func loadGraphConfig() GraphConfig {
	uri := os.Getenv("NEO4J_URI")
	if uri == "" {
		uri = "bolt://localhost:7687"
	}

	database := os.Getenv("NEO4J_DATABASE")
	if database == "" {
		database = "neo4j"
	}

	return GraphConfig{
		URI:      uri,
		Username: os.Getenv("NEO4J_USERNAME"),
		Password: os.Getenv("NEO4J_PASSWORD"),
		Database: database,
		Timeout:  5 * time.Second, // ✅ timeout borné sur chaque aller-retour
	}
}

// session ouvre une session Neo4j (fermée par l'appelant)
func (gm *GraphManager) session(ctx context.Context) neo4j.SessionWithContext {
	return gm.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: gm.config.Database})
}

// CloseGraph ferme le driver Neo4j
func CloseGraph() {
	if Graph == nil {
		return
	}
	Graph.mu.Lock()
	defer Graph.mu.Unlock()

	if err := Graph.driver.Close(context.Background()); err != nil {
		log.Printf("⚠️ Erreur fermeture driver Neo4j: %v", err)
	} else {
		log.Println("✅ Driver Neo4j fermé")
	}
}

// =============================================
// REDIS (inchangé)
// =============================================
func connectRedis(ctx context.Context) {
	Redis = redis.NewClient(&redis.Options{
		Addr:     os.Getenv("REDIS_HOST"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})
	RedisClient = Redis // Alias pour compatibilité

	if err := Redis.Ping(ctx).Err(); err != nil {
		log.Fatal("❌ Erreur connexion Redis:", err)
	}
	log.Println("✅ Connecté à Redis")
}

// =============================================
// ELASTICSEARCH (inchangé)
// =============================================
func connectElastic() {
	cfg := elasticsearch.Config{
		Addresses: []string{os.Getenv("ELASTIC_URL")},
		Username:  os.Getenv("ELASTIC_USER"),
		Password:  os.Getenv("ELASTIC_PASSWORD"),
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		log.Fatal("❌ Erreur création client Elasticsearch:", err)
	}

	res, err := client.Info()
	if err != nil {
		log.Fatal("❌ Erreur connexion Elasticsearch:", err)
	}
	defer res.Body.Close()

	Elastic = client
	log.Println("✅ Connecté à Elasticsearch")
}

// =============================================
// MINIO (inchangé)
// =============================================
func connectMinIO(ctx context.Context) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	accessKey := os.Getenv("MINIO_ACCESS_KEY")
	secretKey := os.Getenv("MINIO_SECRET_KEY")
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		log.Fatal("❌ Erreur connexion MinIO:", err)
	}

	bucketName := os.Getenv("MINIO_BUCKET")
	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		log.Fatal("❌ Erreur vérification bucket MinIO:", err)
	}
	if !exists {
		err = client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{})
		if err != nil {
			log.Fatal("❌ Erreur création bucket MinIO:", err)
		}
		log.Println("🪣 Bucket créé :", bucketName)
	} else {
		log.Println("🪣 Bucket MinIO déjà présent :", bucketName)
	}

	MinIO = client
	log.Println("✅ Connecté à MinIO :", endpoint)
}
