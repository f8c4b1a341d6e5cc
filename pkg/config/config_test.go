package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestGetInt(t *testing.T) {
	v := viper.New()
	v.Set("PAGE_SIZE", "25")
	v.Set("PAGE_SIZE_ROTO", "veinticinco")
	v.Set("PAGE_SIZE_NATIVO", 40)

	assert.Equal(t, 25, getInt(v, "PAGE_SIZE", 50))
	// Un valor no numérico cae al default, no a cero
	assert.Equal(t, 50, getInt(v, "PAGE_SIZE_ROTO", 50))
	assert.Equal(t, 40, getInt(v, "PAGE_SIZE_NATIVO", 50))
	assert.Equal(t, 50, getInt(v, "NO_EXISTE", 50))
}

func TestGetString(t *testing.T) {
	v := viper.New()
	v.Set("APP_ENV", "production")

	assert.Equal(t, "production", getString(v, "APP_ENV", "development"))
	assert.Equal(t, "development", getString(v, "NO_EXISTE", "development"))
}

func TestDBConfigConnectionString(t *testing.T) {
	withURL := DBConfig{DatabaseURL: "postgres://app:secret@db:5432/ledger?sslmode=require"}
	assert.Equal(t, withURL.DatabaseURL, withURL.ConnectionString())

	built := DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "p@ss word", DBName: "pos_ledger", SSLMode: "disable"}
	dsn := built.ConnectionString()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "p%40ss%20word") // la contraseña va URL-escapada
	assert.Contains(t, dsn, "/pos_ledger?sslmode=disable")
}
