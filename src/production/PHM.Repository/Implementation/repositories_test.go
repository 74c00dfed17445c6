package implementation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/maplesense1/phm.server/src/production/PHM.Database/databasetest"
	phmmodels "gitlab.com/maplesense1/phm.server/src/production/PHM.Models"
	auth_models "gitlab.com/maplesense1/phm.server/src/production/PHM.Models/auth"
	interfaces "gitlab.com/maplesense1/phm.server/src/production/PHM.Repository/Interfaces"
)

var (
	_ interfaces.AccountRepository        = (*SQLAccountRepository)(nil)
	_ interfaces.PlantRepository          = (*SQLPlantRepository)(nil)
	_ interfaces.HealthLogRepository      = (*SQLHealthLogRepository)(nil)
	_ interfaces.RecommendationRepository = (*SQLRecommendationRepository)(nil)
	_ interfaces.AlertRepository          = (*SQLAlertRepository)(nil)
	_ interfaces.RawReadingRepository     = (*MongoRawReadingRepository)(nil)
)

func tomato() phmmodels.PlantInput {
	return phmmodels.PlantInput{
		PlantName:  "plant001",
		Species:    "Tomato",
		AgeDays:    30,
		Location:   "Greenhouse 1",
		FarmerName: "John Smith",
		Notes:      "Notes for plant001 - Tomato",
	}
}

func float(v float64) *float64 { return &v }
func integer(v int64) *int64   { return &v }

func TestPlantRepository_CreateGetUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLPlantRepository(databasetest.NewGateway(t))

	created, err := repo.Create(ctx, tomato())
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.NotZero(t, created.PlantID)

	fetched, err := repo.GetByID(ctx, created.PlantID)
	require.NoError(t, err)
	assert.Equal(t, created, fetched)

	missing, err := repo.GetByID(ctx, created.PlantID+100)
	require.NoError(t, err)
	assert.Nil(t, missing)

	in := tomato()
	in.Species = "Pepper"
	in.Notes = ""
	updated, err := repo.Update(ctx, created.PlantID, in)
	require.NoError(t, err)
	assert.Equal(t, "Pepper", updated.Species)
	assert.Equal(t, "", updated.Notes)

	none, err := repo.Update(ctx, created.PlantID+100, in)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestPlantRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLPlantRepository(databasetest.NewGateway(t))

	for _, p := range []phmmodels.PlantInput{
		{PlantName: "alpha", Species: "Tomato", AgeDays: 10, Location: "Field A", FarmerName: "John Smith", Notes: "tall"},
		{PlantName: "beta", Species: "Tomato", AgeDays: 20, Location: "Field B", FarmerName: "Maria Garcia"},
		{PlantName: "gamma", Species: "Tomatoes", AgeDays: 30, Location: "Field A", FarmerName: "Emily Davis", Notes: "Yellowing"},
	} {
		_, err := repo.Create(ctx, p)
		require.NoError(t, err)
	}

	all, err := repo.List(ctx, phmmodels.PlantFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "gamma", all[0].PlantName)
	assert.Greater(t, all[0].PlantID, all[1].PlantID)

	tomatoes, err := repo.List(ctx, phmmodels.PlantFilter{Species: "Tomato"})
	require.NoError(t, err)
	assert.Len(t, tomatoes, 2)
	for _, p := range tomatoes {
		assert.Equal(t, "Tomato", p.Species)
	}

	byFarmer, err := repo.List(ctx, phmmodels.PlantFilter{Search: "garcia"})
	require.NoError(t, err)
	require.Len(t, byFarmer, 1)
	assert.Equal(t, "beta", byFarmer[0].PlantName)

	byNotes, err := repo.List(ctx, phmmodels.PlantFilter{Search: "yellow", Location: "Field A"})
	require.NoError(t, err)
	require.Len(t, byNotes, 1)
	assert.Equal(t, "gamma", byNotes[0].PlantName)

	none, err := repo.List(ctx, phmmodels.PlantFilter{Species: "Rice"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestHealthLogRepository(t *testing.T) {
	ctx := context.Background()
	gw := databasetest.NewGateway(t)
	plants := NewSQLPlantRepository(gw)
	logs := NewSQLHealthLogRepository(gw)

	plant, err := plants.Create(ctx, tomato())
	require.NoError(t, err)

	today := phmmodels.NewDate(time.Now())
	for i := 0; i < 5; i++ {
		_, err := logs.Create(ctx, &phmmodels.HealthLog{
			PlantID:      plant.PlantID,
			LogDate:      phmmodels.NewDate(today.AddDate(0, 0, -i*2)),
			SoilMoisture: float(40.25),
			SunlightLux:  integer(5000),
		})
		require.NoError(t, err)
	}

	sparse, err := logs.Create(ctx, &phmmodels.HealthLog{PlantID: plant.PlantID, LogDate: today})
	require.NoError(t, err)
	assert.Nil(t, sparse.SoilMoisture)
	assert.Nil(t, sparse.DiseaseRisk)
	assert.Equal(t, today.String(), sparse.LogDate.String())

	all, err := logs.ListByPlant(ctx, plant.PlantID, nil)
	require.NoError(t, err)
	require.Len(t, all, 6)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].LogDate.After(all[i-1].LogDate.Time), "logs must be newest first")
	}
	assert.InDelta(t, 40.25, *all[len(all)-1].SoilMoisture, 1e-9)

	since := phmmodels.NewDate(today.AddDate(0, 0, -3))
	recent, err := logs.ListByPlant(ctx, plant.PlantID, &since)
	require.NoError(t, err)
	assert.Len(t, recent, 3) // today twice plus two days ago

	other, err := logs.ListByPlant(ctx, plant.PlantID+1, nil)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestRecommendationRepository_JoinsAuthor(t *testing.T) {
	ctx := context.Background()
	gw := databasetest.NewGateway(t)
	plants := NewSQLPlantRepository(gw)
	accounts := NewSQLAccountRepository(gw)
	recs := NewSQLRecommendationRepository(gw)

	plant, err := plants.Create(ctx, tomato())
	require.NoError(t, err)
	author, err := accounts.Create(ctx, auth_models.NewAccount("agro01", "hash", "Agronomist 1", "Soil Science", "", ""))
	require.NoError(t, err)

	first, err := recs.Create(ctx, plant.PlantID, author.AgronomistID, "Water more")
	require.NoError(t, err)
	assert.Equal(t, "Agronomist 1", first.AgronomistName)
	assert.Equal(t, "Soil Science", first.Specialization)
	assert.False(t, first.CreatedAt.IsZero())

	second, err := recs.Create(ctx, plant.PlantID, author.AgronomistID, "Prune")
	require.NoError(t, err)

	list, err := recs.ListByPlant(ctx, plant.PlantID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.RecID, list[0].RecID)

	_, err = recs.Create(ctx, plant.PlantID, author.AgronomistID+50, "ghost")
	assert.Error(t, err, "foreign key on agronomist_id")
}

func TestAlertRepository(t *testing.T) {
	ctx := context.Background()
	gw := databasetest.NewGateway(t)
	plant, err := NewSQLPlantRepository(gw).Create(ctx, tomato())
	require.NoError(t, err)
	alerts := NewSQLAlertRepository(gw)

	active, err := alerts.Create(ctx, plant.PlantID, "Low soil moisture", "")
	require.NoError(t, err)
	assert.Equal(t, phmmodels.AlertStatusActive, active.Status)

	_, err = alerts.Create(ctx, plant.PlantID, "pH imbalance", phmmodels.AlertStatusResolved)
	require.NoError(t, err)

	all, err := alerts.ListByPlant(ctx, plant.PlantID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	resolved, err := alerts.ListByPlant(ctx, plant.PlantID, phmmodels.AlertStatusResolved)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, "pH imbalance", resolved[0].Message)
}

func TestAccountRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLAccountRepository(databasetest.NewGateway(t))

	farmer := auth_models.NewAccount("farmer001", "hash", "Demo Farmer", "Crop Monitoring", "+1-555-000-0000", "farmer001@farm.com")
	created, err := repo.CreateIfAbsent(ctx, farmer)
	require.NoError(t, err)
	assert.True(t, created)

	again, err := repo.CreateIfAbsent(ctx, farmer)
	require.NoError(t, err)
	assert.False(t, again)

	got, err := repo.GetByUsername(ctx, "farmer001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, auth_models.RoleFarmer, got.Role)
	assert.Equal(t, "hash", got.Password)

	byID, err := repo.GetByID(ctx, got.AgronomistID)
	require.NoError(t, err)
	assert.Equal(t, got, byID)

	unknown, err := repo.GetByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, unknown)

	_, err = repo.Create(ctx, auth_models.NewAccount("farmer001", "h", "dup", "", "", ""))
	assert.Error(t, err, "username is unique")

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
