package config

// Supported gorm engines.
const (
	EngineSQLite   = "sqlite"
	EngineMySQL    = "mysql"
	EnginePostgres = "postgres"
)

// DB holds the database configuration settings.
type DB struct {
	GormEngine string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string // database name, or the file path for sqlite
	SSLMode    string // postgres only
	Extras     string // appended to the dsn as is
	Debug      bool   // log every statement
}
