package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"ecobazaar/internal/carbon"
	"ecobazaar/internal/database"
	"ecobazaar/internal/models"
	"ecobazaar/internal/repositories"
	"ecobazaar/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestSeedDevelopmentData_Idempotent(t *testing.T) {
	db, err := database.Open(database.Config{
		Driver: database.DriverSQLite,
		DSN:    fmt.Sprintf("file:seed_%d?mode=memory&cache=shared", time.Now().UnixNano()),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	repos := repositories.NewGORMRepositories(db)
	auth := services.NewAuthService(repos.Users, "seed-secret", time.Hour)
	engine := carbon.NewEngine(carbon.DefaultConfig())

	seedDevelopmentData(repos, auth, engine)
	seedDevelopmentData(repos, auth, engine)

	var users, products int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Product{}).Count(&products).Error)
	assert.Equal(t, int64(2), users)
	assert.Equal(t, int64(1), products)

	product, err := repos.Products.GetBySlug(context.Background(), "bamboo-toothbrush")
	require.NoError(t, err)
	assert.Equal(t, 100, product.StockQuantity)
	assert.Greater(t, product.CarbonSavedPerItem, 0.0)
}
