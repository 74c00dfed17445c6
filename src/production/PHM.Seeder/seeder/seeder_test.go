package seeder

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"gitlab.com/maplesense1/phm.server/src/production/PHM.Database/databasetest"
	logger "gitlab.com/maplesense1/phm.server/src/production/PHM.Logger"
	phmmodels "gitlab.com/maplesense1/phm.server/src/production/PHM.Models"
	auth_models "gitlab.com/maplesense1/phm.server/src/production/PHM.Models/auth"
	implementation "gitlab.com/maplesense1/phm.server/src/production/PHM.Repository/Implementation"
)

var fixedNow = time.Date(2024, 5, 20, 15, 4, 5, 0, time.UTC)

func newTestSeeder(t *testing.T, seed uint64) (*Seeder, context.Context) {
	t.Helper()
	gw := databasetest.NewGateway(t)
	s := New(gw, bcrypt.MinCost, logger.Nop(),
		WithRand(rand.New(rand.NewPCG(seed, 1))),
		WithClock(func() time.Time { return fixedNow }),
	)
	return s, context.Background()
}

func TestSeeder_Run(t *testing.T) {
	s, ctx := newTestSeeder(t, 42)

	summary, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, AgronomistCount, summary.Agronomists)
	assert.Equal(t, PlantCount, summary.Plants)
	assert.True(t, summary.FarmerCreated)
	assert.GreaterOrEqual(t, summary.HealthLogs, PlantCount*minLogsPerPlant)
	assert.LessOrEqual(t, summary.HealthLogs, PlantCount*maxLogsPerPlant)
	assert.Positive(t, summary.Recommendations)
	assert.Positive(t, summary.Alerts)

	accounts := implementation.NewSQLAccountRepository(s.gw)
	n, err := accounts.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, AgronomistCount+1, n)

	agro, err := accounts.GetByUsername(ctx, "agro07")
	require.NoError(t, err)
	require.NotNil(t, agro)
	assert.Equal(t, "Agronomist 7", agro.FullName)
	assert.Equal(t, "agro7@farm.com", agro.Email)
	assert.Equal(t, auth_models.RoleAgronomist, agro.EffectiveRole())
	assert.Contains(t, specializations, agro.Specialization)
	assert.Regexp(t, `^\+1-555-\d{3}-\d{4}$`, agro.Phone)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(agro.Password), []byte("pass07")))

	farmer, err := accounts.GetByUsername(ctx, FarmerUsername)
	require.NoError(t, err)
	require.NotNil(t, farmer)
	assert.Equal(t, auth_models.RoleFarmer, farmer.EffectiveRole())
	assert.Equal(t, "Demo Farmer", farmer.FullName)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(farmer.Password), []byte(FarmerPassword)))
}

func TestSeeder_PlantsAndLogs(t *testing.T) {
	s, ctx := newTestSeeder(t, 7)
	_, err := s.Run(ctx)
	require.NoError(t, err)

	plants, err := implementation.NewSQLPlantRepository(s.gw).List(ctx, phmmodels.PlantFilter{})
	require.NoError(t, err)
	require.Len(t, plants, PlantCount)

	first := plants[len(plants)-1]
	assert.Equal(t, "plant001", first.PlantName)
	assert.Equal(t, "Notes for plant001 - "+first.Species, first.Notes)

	logs := implementation.NewSQLHealthLogRepository(s.gw)
	for _, p := range plants {
		assert.Contains(t, species, p.Species)
		assert.Contains(t, locations, p.Location)
		assert.Contains(t, farmerNames, p.FarmerName)
		assert.GreaterOrEqual(t, p.AgeDays, 10)
		assert.LessOrEqual(t, p.AgeDays, 180)

		entries, err := logs.ListByPlant(ctx, p.PlantID, nil)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(entries), minLogsPerPlant)
		require.LessOrEqual(t, len(entries), maxLogsPerPlant)

		// Newest first, one per day, ending today
		assert.Equal(t, "2024-05-20", entries[0].LogDate.String())
		for i := 1; i < len(entries); i++ {
			want := entries[i-1].LogDate.AddDate(0, 0, -1).Format(phmmodels.DateLayout)
			assert.Equal(t, want, entries[i].LogDate.String())
		}

		e := entries[0]
		require.NotNil(t, e.SoilPH)
		assert.InDelta(t, 6.5, *e.SoilPH, 1.0)
		require.NotNil(t, e.DiseaseRisk)
		assert.LessOrEqual(t, *e.DiseaseRisk, int64(100))
		require.NotNil(t, e.SunlightLux)
		assert.GreaterOrEqual(t, *e.SunlightLux, int64(2000))
	}
}

func TestSeeder_RunTwice(t *testing.T) {
	s, ctx := newTestSeeder(t, 3)

	_, err := s.Run(ctx)
	require.NoError(t, err)
	second, err := s.Run(ctx)
	require.NoError(t, err)
	assert.True(t, second.FarmerCreated)

	accounts, err := implementation.NewSQLAccountRepository(s.gw).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, AgronomistCount+1, accounts)

	plants, err := implementation.NewSQLPlantRepository(s.gw).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, PlantCount, plants)
}

func TestSeeder_ReadingRounding(t *testing.T) {
	s, _ := newTestSeeder(t, 11)
	for i := 0; i < 100; i++ {
		v := *s.reading(5.5, 7.5)
		assert.GreaterOrEqual(t, v, 5.5)
		assert.LessOrEqual(t, v, 7.5)
		assert.InDelta(t, v, float64(int64(v*100+0.5))/100, 1e-9)
	}
}

func TestSeeder_DefaultClockIsUTC(t *testing.T) {
	s := New(databasetest.NewGateway(t), bcrypt.MinCost, logger.Nop())
	assert.Equal(t, time.UTC, s.now().Location())
}

func TestSeeder_LogDatesUseUTCDay(t *testing.T) {
	// 2024-05-20 12:00 UTC, which is already the 21st at UTC+14
	east := time.FixedZone("UTC+14", 14*3600)
	gw := databasetest.NewGateway(t)
	s := New(gw, bcrypt.MinCost, logger.Nop(),
		WithRand(rand.New(rand.NewPCG(5, 1))),
		WithClock(func() time.Time { return time.Date(2024, 5, 21, 2, 0, 0, 0, east) }),
	)
	ctx := context.Background()
	_, err := s.Run(ctx)
	require.NoError(t, err)

	plants, err := implementation.NewSQLPlantRepository(gw).List(ctx, phmmodels.PlantFilter{})
	require.NoError(t, err)
	entries, err := implementation.NewSQLHealthLogRepository(gw).ListByPlant(ctx, plants[0].PlantID, nil)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "2024-05-20", entries[0].LogDate.String())
}
