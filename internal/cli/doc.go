// Package cli provides command-line interface setup and configuration
// for wksentence. It handles flag parsing, command creation, .env and
// config file loading, and resolves the run Config using cobra, viper
// and godotenv.
package cli
