package constants

// DefaultConfigPath is the default path to the config.toml file
const DefaultConfigPath = "./config.toml"
