package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stagepass/stagepass/internal/config"
)

func TestDSN(t *testing.T) {
	cfg := config.Config{DBUser: "app", DBPass: "s3cret", DBHost: "db", DBPort: "3306", DBName: "stagepass"}

	assert.Equal(t, "app:s3cret@tcp(db:3306)/stagepass?charset=utf8mb4&parseTime=true&loc=UTC", dsn(cfg))
}

func TestDSNWithoutPassword(t *testing.T) {
	cfg := config.Config{DBUser: "app", DBHost: "localhost", DBPort: "3306", DBName: "stagepass"}

	// No colon and no blank credential when the password is empty.
	assert.Equal(t, "app@tcp(localhost:3306)/stagepass?charset=utf8mb4&parseTime=true&loc=UTC", dsn(cfg))
}
