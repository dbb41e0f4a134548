// config/config.go
package config

import (
	"log"
	"os"
	"time"
)

var (
	Port          string
	Store         string
	MongoURI      string
	MongoDB       string
	JWTKey        []byte
	JWTExpiration time.Duration
	LogLevel      string
)

func LoadConfig() {
	Port = os.Getenv("PORT")
	if Port == "" {
		Port = "8080"
	}

	// STORE selects the repository backend: "mongo" or "memory".
	Store = os.Getenv("STORE")
	if Store == "" {
		Store = "mongo"
	}

	MongoURI = os.Getenv("MONGODB_URI")
	if MongoURI == "" {
		MongoURI = "mongodb://localhost:27017"
	}

	MongoDB = os.Getenv("MONGO_DB")
	if MongoDB == "" {
		MongoDB = "assetmgt"
	}

	JWTKey = []byte(os.Getenv("JWT_SECRET"))
	if len(JWTKey) == 0 {
		JWTKey = []byte("secret")
	}

	expireStr := os.Getenv("JWT_EXPIRE")
	dur := 24 * time.Hour
	if expireStr != "" {
		if expireStr == "7d" {
			dur = 7 * 24 * time.Hour
		} else {
			var err error
			dur, err = time.ParseDuration(expireStr)
			if err != nil {
				log.Printf("Invalid JWT_EXPIRE: %s, using 24h", expireStr)
				dur = 24 * time.Hour
			}
		}
	}
	JWTExpiration = dur

	LogLevel = os.Getenv("LOG_LEVEL")
	if LogLevel == "" {
		LogLevel = "info"
	}
}
