package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/careloop/patient-intake/internal/admin"
	"github.com/careloop/patient-intake/internal/roster"
)

// The simulator drives the real user journey against a running server:
// intake -> register -> book, with a share of admin schedule/cancel
// transitions and confirmation reads mixed in.

type SimConfig struct {
	APIBaseURL    string
	Duration      time.Duration
	Workers       int
	JourneyRatio  float64
	ScheduleRatio float64
	CancelRatio   float64
	ReadRatio     float64
	AccessKey     string
}

type booking struct {
	UserID        uuid.UUID
	AppointmentID uuid.UUID
}

type DataPool struct {
	mu       sync.RWMutex
	bookings []booking
}

func (dp *DataPool) Add(b booking) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.bookings = append(dp.bookings, b)
}

func (dp *DataPool) Random(rng *rand.Rand) (booking, bool) {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	if len(dp.bookings) == 0 {
		return booking{}, false
	}
	return dp.bookings[rng.Intn(len(dp.bookings))], true
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, success bool, conflict bool) {
	atomic.AddInt64(&om.Total, 1)
	if success {
		atomic.AddInt64(&om.Success, 1)
	} else if conflict {
		atomic.AddInt64(&om.Conflict, 1)
	} else {
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)

	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]

	p50Idx := len(latencies) * 50 / 100
	if p50Idx >= len(latencies) {
		p50Idx = len(latencies) - 1
	}
	p50 = latencies[p50Idx]

	p95Idx := len(latencies) * 95 / 100
	if p95Idx >= len(latencies) {
		p95Idx = len(latencies) - 1
	}
	p95 = latencies[p95Idx]

	return avg, min, max, p50, p95
}

type Metrics struct {
	Journey  OperationMetrics
	Schedule OperationMetrics
	Cancel   OperationMetrics
	Read     OperationMetrics
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *http.Client
	metrics Metrics
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulator starting")

	cfg := loadSimConfig()
	if err := validateSimConfig(cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	log.Printf("config: duration=%s workers=%d journey=%.2f schedule=%.2f cancel=%.2f read=%.2f",
		cfg.Duration, cfg.Workers, cfg.JourneyRatio, cfg.ScheduleRatio, cfg.CancelRatio, cfg.ReadRatio)

	gofakeit.Seed(time.Now().UnixNano())

	sim := &Simulator{
		config: cfg,
		pool:   &DataPool{},
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	sim.Run()
	sim.PrintReport()
}

func loadSimConfig() SimConfig {
	cfg := SimConfig{
		APIBaseURL:    getEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Duration:      getDuration("SIM_DURATION", 30*time.Second),
		Workers:       getInt("SIM_WORKERS", 10),
		JourneyRatio:  getFloat("SIM_JOURNEY_RATIO", 0.4),
		ScheduleRatio: getFloat("SIM_SCHEDULE_RATIO", 0.2),
		CancelRatio:   getFloat("SIM_CANCEL_RATIO", 0.1),
		ReadRatio:     getFloat("SIM_READ_RATIO", 0.3),
	}

	if passkey := os.Getenv("ADMIN_PASSKEY"); passkey != "" {
		cfg.AccessKey = admin.EncryptKey(passkey)
	} else {
		log.Println("ADMIN_PASSKEY not set, gated transitions will be rejected")
	}

	// Normalize ratios
	total := cfg.JourneyRatio + cfg.ScheduleRatio + cfg.CancelRatio + cfg.ReadRatio
	if total > 0 {
		cfg.JourneyRatio /= total
		cfg.ScheduleRatio /= total
		cfg.CancelRatio /= total
		cfg.ReadRatio /= total
	}

	return cfg
}

func validateSimConfig(cfg SimConfig) error {
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	return nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	log.Printf("starting simulation for %s with %d workers", s.config.Duration, s.config.Workers)

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	log.Println("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for {
		select {
		case <-ctx.Done():
			return
		default:
			r := rng.Float64()
			switch {
			case r < s.config.JourneyRatio:
				s.doJourney(ctx, rng)
			case r < s.config.JourneyRatio+s.config.ScheduleRatio:
				s.doSchedule(ctx, rng)
			case r < s.config.JourneyRatio+s.config.ScheduleRatio+s.config.CancelRatio:
				s.doCancel(ctx, rng)
			default:
				s.doRead(ctx, rng)
			}
		}
	}
}

// doJourney runs the full flow: intake, registration, booking. One journey
// is one metric sample; failure at any step counts as an error.
func (s *Simulator) doJourney(ctx context.Context, rng *rand.Rand) {
	start := time.Now()

	name := gofakeit.Name()
	email := gofakeit.Email()
	phone := "+1" + gofakeit.Numerify("##########")

	userID, ok := s.postJSON(ctx, "/patients", map[string]any{
		"name":  name,
		"email": email,
		"phone": phone,
	}, http.StatusCreated, "user", "id")
	if !ok {
		s.metrics.Journey.Record(time.Since(start), false, false)
		return
	}

	doctors := roster.Doctors()
	physician := doctors[rng.Intn(len(doctors))].Name

	patientID, ok := s.postJSON(ctx, fmt.Sprintf("/patients/%s/register", userID), map[string]any{
		"name":                   name,
		"email":                  email,
		"phone":                  phone,
		"birthDate":              "1985-04-12",
		"gender":                 "other",
		"address":                gofakeit.Street() + ", " + gofakeit.City(),
		"occupation":             gofakeit.JobTitle(),
		"emergencyContactName":   gofakeit.Name(),
		"emergencyContactNumber": "+1" + gofakeit.Numerify("##########"),
		"primaryPhysician":       physician,
		"insuranceProvider":      gofakeit.Company(),
		"insurancePolicyNumber":  gofakeit.Numerify("POL-########"),
		"treatmentConsent":       true,
		"disclosureConsent":      true,
		"privacyConsent":         true,
	}, http.StatusCreated, "patient", "id")
	if !ok {
		s.metrics.Journey.Record(time.Since(start), false, false)
		return
	}

	schedule := time.Now().Add(time.Duration(1+rng.Intn(30*24)) * time.Hour).UTC().Format(time.RFC3339)

	apptID, ok := s.postJSON(ctx, "/appointments", map[string]any{
		"userId":           userID.String(),
		"patientId":        patientID.String(),
		"primaryPhysician": physician,
		"schedule":         schedule,
		"reason":           "annual checkup",
	}, http.StatusCreated, "appointment", "id")
	if !ok {
		s.metrics.Journey.Record(time.Since(start), false, false)
		return
	}

	s.pool.Add(booking{UserID: userID, AppointmentID: apptID})
	s.metrics.Journey.Record(time.Since(start), true, false)
}

func (s *Simulator) doSchedule(ctx context.Context, rng *rand.Rand) {
	b, ok := s.pool.Random(rng)
	if !ok {
		return
	}

	start := time.Now()

	doctors := roster.Doctors()
	body, _ := json.Marshal(map[string]any{
		"primaryPhysician": doctors[rng.Intn(len(doctors))].Name,
		"schedule":         time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339),
	})

	req, _ := http.NewRequestWithContext(ctx, "POST",
		fmt.Sprintf("%s/appointments/%s/schedule", s.config.APIBaseURL, b.AppointmentID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Access-Key", s.config.AccessKey)

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success := false
	conflict := false
	if err == nil {
		defer resp.Body.Close()
		success = resp.StatusCode == http.StatusOK
		conflict = resp.StatusCode == http.StatusConflict
	}

	s.metrics.Schedule.Record(latency, success, conflict)
}

func (s *Simulator) doCancel(ctx context.Context, rng *rand.Rand) {
	b, ok := s.pool.Random(rng)
	if !ok {
		return
	}

	start := time.Now()

	body, _ := json.Marshal(map[string]any{
		"cancellationReason": "patient request",
	})

	req, _ := http.NewRequestWithContext(ctx, "POST",
		fmt.Sprintf("%s/appointments/%s/cancel", s.config.APIBaseURL, b.AppointmentID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Access-Key", s.config.AccessKey)

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success := false
	conflict := false
	if err == nil {
		defer resp.Body.Close()
		success = resp.StatusCode == http.StatusOK
		conflict = resp.StatusCode == http.StatusConflict
	}

	s.metrics.Cancel.Record(latency, success, conflict)
}

func (s *Simulator) doRead(ctx context.Context, rng *rand.Rand) {
	b, ok := s.pool.Random(rng)
	if !ok {
		return
	}

	start := time.Now()

	req, _ := http.NewRequestWithContext(ctx, "GET",
		fmt.Sprintf("%s/patients/%s/new-appointment/success?appointmentId=%s",
			s.config.APIBaseURL, b.UserID, b.AppointmentID), nil)

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success := false
	if err == nil {
		defer resp.Body.Close()
		success = resp.StatusCode == http.StatusOK
	}

	s.metrics.Read.Record(latency, success, false)
}

// postJSON posts a body and extracts objKey.idKey as a UUID from the
// response.
func (s *Simulator) postJSON(ctx context.Context, path string, payload map[string]any, wantStatus int, objKey, idKey string) (uuid.UUID, bool) {
	body, _ := json.Marshal(payload)

	req, _ := http.NewRequestWithContext(ctx, "POST", s.config.APIBaseURL+path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return uuid.Nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return uuid.Nil, false
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return uuid.Nil, false
	}

	var parsed map[string]json.RawMessage
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return uuid.Nil, false
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(parsed[objKey], &obj); err != nil {
		return uuid.Nil, false
	}

	var id uuid.UUID
	if err := json.Unmarshal(obj[idKey], &id); err != nil {
		return uuid.Nil, false
	}
	return id, id != uuid.Nil
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Println()

	printOperationReport("Journey (intake+register+book)", &s.metrics.Journey)
	printOperationReport("Schedule", &s.metrics.Schedule)
	printOperationReport("Cancel", &s.metrics.Cancel)
	printOperationReport("Read confirmation", &s.metrics.Read)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	conflict := atomic.LoadInt64(&om.Conflict)
	errCount := atomic.LoadInt64(&om.Error)

	avg, min, max, p50, p95 := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if conflict > 0 {
		fmt.Printf("  Conflicts: %d (%.1f%%)\n", conflict, float64(conflict)/float64(total)*100)
	}
	if errCount > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", errCount, float64(errCount)/float64(total)*100)
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), min.Round(time.Millisecond), max.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Println()
}

// Helper functions

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
