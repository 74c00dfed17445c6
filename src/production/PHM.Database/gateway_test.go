package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	database "gitlab.com/maplesense1/phm.server/src/production/PHM.Database"
	"gitlab.com/maplesense1/phm.server/src/production/PHM.Database/databasetest"
)

const insertPlant = `INSERT INTO plants (plant_name, species, age_days, location, farmer_name, notes)
	VALUES ($1, $2, $3, $4, $5, $6) RETURNING plant_id`

func countPlants(t *testing.T, gw *database.Gateway) int {
	t.Helper()
	var n int
	require.NoError(t, gw.QueryRow(context.Background(), "SELECT COUNT(*) FROM plants").Scan(&n))
	return n
}

func TestGateway_InsertAndExec(t *testing.T) {
	ctx := context.Background()
	gw := databasetest.NewGateway(t)

	id1, err := gw.Insert(ctx, insertPlant, "a", "Tomato", 10, "Field A", "John Smith", "")
	require.NoError(t, err)
	id2, err := gw.Insert(ctx, insertPlant, "b", "Corn", 11, "Field B", "Maria Garcia", "")
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	n, err := gw.Exec(ctx, "UPDATE plants SET notes = $1", "x")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestGateway_WithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	gw := databasetest.NewGateway(t)

	boom := errors.New("boom")
	err := gw.WithTx(ctx, func(tx *database.Gateway) error {
		if _, err := tx.Insert(ctx, insertPlant, "a", "Tomato", 10, "Field A", "John Smith", ""); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, countPlants(t, gw))

	err = gw.WithTx(ctx, func(tx *database.Gateway) error {
		_, err := tx.Insert(ctx, insertPlant, "a", "Tomato", 10, "Field A", "John Smith", "")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, countPlants(t, gw))
}

func TestGateway_ForeignKeysEnforced(t *testing.T) {
	gw := databasetest.NewGateway(t)

	_, err := gw.Insert(context.Background(),
		`INSERT INTO alerts (plant_id, message) VALUES ($1, $2) RETURNING alert_id`, 999, "orphan")
	assert.Error(t, err)
}

func TestGateway_Wipe(t *testing.T) {
	ctx := context.Background()
	gw := databasetest.NewGateway(t)

	id, err := gw.Insert(ctx, insertPlant, "a", "Tomato", 10, "Field A", "John Smith", "")
	require.NoError(t, err)
	_, err = gw.Insert(ctx, `INSERT INTO alerts (plant_id, message) VALUES ($1, $2) RETURNING alert_id`, id, "m")
	require.NoError(t, err)

	require.NoError(t, gw.Wipe(ctx))
	assert.Equal(t, 0, countPlants(t, gw))
}

func TestHealthChecker(t *testing.T) {
	gw := databasetest.NewGateway(t)

	status, ok := database.NewHealthChecker(gw).Status(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "ok", status["status"])

	require.NoError(t, gw.Close())
	_, ok = database.NewHealthChecker(gw).Status(context.Background())
	assert.False(t, ok)
}
