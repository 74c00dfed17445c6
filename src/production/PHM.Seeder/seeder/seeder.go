// Package seeder fills the store with a reproducible demo data set.
package seeder

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	authService "gitlab.com/maplesense1/phm.server/src/production/PHM.ApiService/implementation/auth"
	database "gitlab.com/maplesense1/phm.server/src/production/PHM.Database"
	logger "gitlab.com/maplesense1/phm.server/src/production/PHM.Logger"
	phmmodels "gitlab.com/maplesense1/phm.server/src/production/PHM.Models"
	auth_models "gitlab.com/maplesense1/phm.server/src/production/PHM.Models/auth"
	implementation "gitlab.com/maplesense1/phm.server/src/production/PHM.Repository/Implementation"
)

const (
	AgronomistCount = 20
	PlantCount      = 200

	minLogsPerPlant = 7
	maxLogsPerPlant = 14

	FarmerUsername = "farmer001"
	FarmerPassword = "pwd001"
)

var (
	specializations = []string{
		"Crop Management", "Soil Science", "Pest Control", "Irrigation Systems",
		"Organic Farming", "Greenhouse Management", "Compost Technology", "Seed Production",
	}
	species     = []string{"Tomato", "Corn", "Wheat", "Rice", "Potato", "Carrot", "Lettuce", "Cucumber", "Pepper", "Beans"}
	locations   = []string{"Field A", "Field B", "Field C", "Greenhouse 1", "Greenhouse 2", "Plot 1", "Plot 2", "Plot 3"}
	farmerNames = []string{"John Smith", "Maria Garcia", "Robert Johnson", "Sarah Williams", "James Brown", "Emily Davis"}

	adviceTexts = []string{
		"Increase watering frequency to maintain optimal soil moisture",
		"Apply nitrogen-rich fertilizer to boost growth",
		"Monitor for pest activity in the coming weeks",
		"Consider pruning to improve air circulation",
		"Soil pH is optimal, maintain current levels",
		"Increase sunlight exposure if possible",
		"Apply potassium supplement to strengthen root system",
		"Temperature is within optimal range, continue monitoring",
		"Consider mulching to retain soil moisture",
		"Disease risk is low, maintain current practices",
	}
	alertMessages = []string{
		"Low soil moisture detected - immediate watering recommended",
		"High disease risk detected - inspect plant for symptoms",
		"Temperature outside optimal range - consider protection measures",
		"Low nutrient levels - fertilizer application needed",
		"Abnormal growth pattern detected - consult agronomist",
		"Soil pH imbalance - corrective action required",
		"Insufficient sunlight exposure - relocate if possible",
		"Humidity levels critical - adjust irrigation system",
	}
)

// Summary counts what one run wrote
type Summary struct {
	Agronomists     int
	Plants          int
	HealthLogs      int
	Recommendations int
	Alerts          int
	FarmerCreated   bool
}

// Seeder wipes and repopulates the store
type Seeder struct {
	gw       *database.Gateway
	rand     *rand.Rand
	hashCost int
	logger   *logger.Logger
	now      func() time.Time
}

// Option customizes a Seeder
type Option func(*Seeder)

// WithRand replaces the random source
func WithRand(r *rand.Rand) Option {
	return func(s *Seeder) { s.rand = r }
}

// WithClock replaces the clock the log dates are counted back from. The
// default is UTC to match the API's notion of today.
func WithClock(now func() time.Time) Option {
	return func(s *Seeder) { s.now = now }
}

// New creates a seeder hashing passwords with the given bcrypt cost
func New(gw *database.Gateway, hashCost int, log *logger.Logger, opts ...Option) *Seeder {
	s := &Seeder{
		gw:       gw,
		rand:     rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)),
		hashCost: hashCost,
		logger:   log.WithComponent("seeder"),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run clears every table and writes the demo data set in one transaction
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	if err := s.gw.Wipe(ctx); err != nil {
		return nil, err
	}
	s.logger.Info("Existing data cleared")

	summary := &Summary{}
	err := s.gw.WithTx(ctx, func(tx *database.Gateway) error {
		agronomistIDs, err := s.seedAgronomists(ctx, tx)
		if err != nil {
			return err
		}
		summary.Agronomists = len(agronomistIDs)

		plantIDs, err := s.seedPlants(ctx, tx)
		if err != nil {
			return err
		}
		summary.Plants = len(plantIDs)

		if summary.HealthLogs, err = s.seedHealthLogs(ctx, tx, plantIDs); err != nil {
			return err
		}
		if summary.Recommendations, err = s.seedRecommendations(ctx, tx, plantIDs, agronomistIDs); err != nil {
			return err
		}
		if summary.Alerts, err = s.seedAlerts(ctx, tx, plantIDs); err != nil {
			return err
		}

		summary.FarmerCreated, err = s.seedFarmer(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Logger.Info().
		Int("agronomists", summary.Agronomists).
		Int("plants", summary.Plants).
		Int("health_logs", summary.HealthLogs).
		Int("recommendations", summary.Recommendations).
		Int("alerts", summary.Alerts).
		Bool("farmer_created", summary.FarmerCreated).
		Msg("Database seeded")

	return summary, nil
}

func (s *Seeder) seedAgronomists(ctx context.Context, tx *database.Gateway) ([]int64, error) {
	repo := implementation.NewSQLAccountRepository(tx)
	ids := make([]int64, 0, AgronomistCount)

	for i := 1; i <= AgronomistCount; i++ {
		hash, err := authService.HashPassword(fmt.Sprintf("pass%02d", i), s.hashCost)
		if err != nil {
			return nil, err
		}
		account := auth_models.NewAccount(
			fmt.Sprintf("agro%02d", i),
			hash,
			fmt.Sprintf("Agronomist %d", i),
			pick(s.rand, specializations),
			fmt.Sprintf("+1-555-%d-%d", s.between(100, 999), s.between(1000, 9999)),
			fmt.Sprintf("agro%d@farm.com", i),
		)
		created, err := repo.Create(ctx, account)
		if err != nil {
			return nil, fmt.Errorf("failed to create agronomist %s: %w", account.Username, err)
		}
		ids = append(ids, created.AgronomistID)
	}
	return ids, nil
}

func (s *Seeder) seedPlants(ctx context.Context, tx *database.Gateway) ([]int64, error) {
	repo := implementation.NewSQLPlantRepository(tx)
	ids := make([]int64, 0, PlantCount)

	for i := 1; i <= PlantCount; i++ {
		name := fmt.Sprintf("plant%03d", i)
		kind := pick(s.rand, species)
		plant, err := repo.Create(ctx, phmmodels.PlantInput{
			PlantName:  name,
			Species:    kind,
			AgeDays:    s.between(10, 180),
			Location:   pick(s.rand, locations),
			FarmerName: pick(s.rand, farmerNames),
			Notes:      fmt.Sprintf("Notes for %s - %s", name, kind),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create plant %s: %w", name, err)
		}
		ids = append(ids, plant.PlantID)
	}
	return ids, nil
}

func (s *Seeder) seedHealthLogs(ctx context.Context, tx *database.Gateway, plantIDs []int64) (int, error) {
	repo := implementation.NewSQLHealthLogRepository(tx)
	today := s.now().UTC()
	total := 0

	for _, plantID := range plantIDs {
		n := s.between(minLogsPerPlant, maxLogsPerPlant)
		for day := n - 1; day >= 0; day-- {
			if _, err := repo.Create(ctx, s.healthLog(plantID, today.AddDate(0, 0, -day))); err != nil {
				return 0, fmt.Errorf("failed to create health log for plant %d: %w", plantID, err)
			}
			total++
		}
	}
	return total, nil
}

func (s *Seeder) healthLog(plantID int64, day time.Time) *phmmodels.HealthLog {
	return &phmmodels.HealthLog{
		PlantID:        plantID,
		LogDate:        phmmodels.NewDate(day),
		SoilMoisture:   s.reading(20, 80),
		SoilPH:         s.reading(5.5, 7.5),
		Temperature:    s.reading(18, 36),
		Humidity:       s.reading(40, 90),
		SunlightLux:    s.count(2000, 80000),
		NutrientN:      s.reading(20, 300),
		NutrientP:      s.reading(20, 300),
		NutrientK:      s.reading(20, 300),
		GrowthHeightCM: s.reading(10, 250),
		DiseaseRisk:    s.count(0, 100),
	}
}

func (s *Seeder) seedRecommendations(ctx context.Context, tx *database.Gateway, plantIDs, agronomistIDs []int64) (int, error) {
	repo := implementation.NewSQLRecommendationRepository(tx)
	total := 0

	for _, plantID := range plantIDs {
		if s.rand.Float64() >= 0.7 {
			continue
		}
		if _, err := repo.Create(ctx, plantID, pick(s.rand, agronomistIDs), pick(s.rand, adviceTexts)); err != nil {
			return 0, fmt.Errorf("failed to create recommendation for plant %d: %w", plantID, err)
		}
		total++
	}
	return total, nil
}

func (s *Seeder) seedAlerts(ctx context.Context, tx *database.Gateway, plantIDs []int64) (int, error) {
	repo := implementation.NewSQLAlertRepository(tx)
	total := 0

	for _, plantID := range plantIDs {
		if s.rand.Float64() >= 0.3 {
			continue
		}
		status := phmmodels.AlertStatusActive
		if s.rand.Float64() < 0.5 {
			status = phmmodels.AlertStatusResolved
		}
		if _, err := repo.Create(ctx, plantID, pick(s.rand, alertMessages), status); err != nil {
			return 0, fmt.Errorf("failed to create alert for plant %d: %w", plantID, err)
		}
		total++
	}
	return total, nil
}

func (s *Seeder) seedFarmer(ctx context.Context, tx *database.Gateway) (bool, error) {
	hash, err := authService.HashPassword(FarmerPassword, s.hashCost)
	if err != nil {
		return false, err
	}
	farmer := auth_models.NewAccount(FarmerUsername, hash, "Demo Farmer", "Crop Monitoring", "+1-555-000-0000", "farmer001@farm.com")

	created, err := implementation.NewSQLAccountRepository(tx).CreateIfAbsent(ctx, farmer)
	if err != nil {
		return false, fmt.Errorf("failed to create farmer account: %w", err)
	}
	return created, nil
}

// between returns an integer in [lo, hi]
func (s *Seeder) between(lo, hi int) int {
	return lo + s.rand.IntN(hi-lo+1)
}

func (s *Seeder) reading(lo, hi float64) *float64 {
	v := math.Round((lo+s.rand.Float64()*(hi-lo))*100) / 100
	return &v
}

func (s *Seeder) count(lo, hi int) *int64 {
	v := int64(s.between(lo, hi))
	return &v
}

func pick[T any](r *rand.Rand, items []T) T {
	return items[r.IntN(len(items))]
}
