package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath        string
	OutputDir     string
	EndpointsPath string
	APIKeyPath    string
	ProductsCache string
	AuditLogPath  string
	ListenAddr    string

	HTTPTimeoutMs int
	UpdateReason  string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:        getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		OutputDir:     getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		EndpointsPath: getEnv("ENDPOINTS_PATH", filepath.Join(cwd, "config.json")),
		APIKeyPath:    getEnv("API_KEY_PATH", filepath.Join(cwd, "utils", "api_key.txt")),
		ProductsCache: getEnv("PRODUCTS_CACHE_PATH", filepath.Join(cwd, ".cache", "products.json")),
		AuditLogPath:  getEnv("STOCK_LOG_PATH", filepath.Join(cwd, "gen", "update_stock.log")),
		ListenAddr:    getEnv("LISTEN_ADDR", ":8080"),
		HTTPTimeoutMs: getEnvInt("HTTP_TIMEOUT_MS", 15000),
		UpdateReason:  getEnv("UPDATE_REASON", "sync from pdf"),
	}

	return cfg, nil
}

// Endpoints are the remote URLs the pipeline talks to. Empty fields disable
// the corresponding feature.
type Endpoints struct {
	LookupURL      string
	ProductsURL    string
	UpdateStockURL string
}

type endpointsFile struct {
	LookupURL      string `json:"lookup_url"`
	LookupProducts string `json:"lookup_products_url"`
	ProductsURL    string `json:"products_url"`
	UpdateStockURL string `json:"update_product_stock_url"`
}

// LoadEndpoints reads the endpoints JSON file. A missing or malformed file is
// not an error: lookups, catalog fetch and stock updates are just disabled.
func LoadEndpoints(path string) Endpoints {
	blob, err := os.ReadFile(path)
	if err != nil {
		return Endpoints{}
	}
	var file endpointsFile
	if err := json.Unmarshal(blob, &file); err != nil {
		return Endpoints{}
	}

	out := Endpoints{UpdateStockURL: file.UpdateStockURL}
	out.LookupURL = file.LookupURL
	if out.LookupURL == "" {
		out.LookupURL = file.LookupProducts
	}
	out.ProductsURL = file.ProductsURL
	if out.ProductsURL == "" {
		// No dedicated products endpoint: the paginated lookup URL without
		// its query string serves as one.
		out.ProductsURL = stripQuery(file.LookupProducts)
	}
	if out.ProductsURL == "" {
		out.ProductsURL = stripQuery(out.LookupURL)
	}
	return out
}

// LoadAPIKey reads the userApiKey header value; missing or empty file means
// requests go out unauthenticated.
func LoadAPIKey(path string) string {
	blob, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(blob))
}

func stripQuery(url string) string {
	if i := strings.Index(url, "?"); i >= 0 {
		return url[:i]
	}
	return url
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
