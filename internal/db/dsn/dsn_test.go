package dsn

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rentfusion/rentfusion/internal/config"
)

func TestCreate(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DB
		want string
	}{
		{
			name: "mysql default extras",
			cfg:  config.DB{GormEngine: config.EngineMySQL, User: "u", Password: "p", Host: "db", Port: 3306, Name: "rent"},
			want: "u:p@tcp(db:3306)/rent?charset=utf8mb4&parseTime=True&loc=UTC",
		},
		{
			name: "postgres",
			cfg:  config.DB{GormEngine: config.EnginePostgres, User: "u", Password: "p", Host: "db", Port: 5432, Name: "rent", SSLMode: "require"},
			want: "host=db port=5432 user=u password=p dbname=rent sslmode=require TimeZone=UTC",
		},
		{
			name: "sqlite memory",
			cfg:  config.DB{GormEngine: config.EngineSQLite},
			want: ":memory:",
		},
		{
			name: "sqlite file with pragma",
			cfg:  config.DB{GormEngine: config.EngineSQLite, Name: "rent.db", Extras: "_pragma=foreign_keys(1)"},
			want: "rent.db?_pragma=foreign_keys(1)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Create(&tt.cfg))
		})
	}
}
