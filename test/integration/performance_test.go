package integration

import (
	"testing"
	"time"

	"github.com/iwvelando/loan-schedule/internal/config"
	"github.com/iwvelando/loan-schedule/pkg/loans"
	"github.com/iwvelando/loan-schedule/pkg/output"
	"go.uber.org/zap"
)

func longestTerms(t testing.TB) (loans.LoanTerms, *config.Configuration) {
	t.Helper()
	conf, err := config.LoadConfiguration("../test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration failed: %v", err)
	}
	conf.Loan.TermMonths = 18
	conf.Loan.Frequency = "daily"

	terms, err := conf.ToLoanTerms()
	if err != nil {
		t.Fatalf("ToLoanTerms failed: %v", err)
	}
	return terms, conf
}

// TestPerformance bounds the time needed for the largest supported schedule.
func TestPerformance(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping performance test in short mode.")
	}

	terms, conf := longestTerms(t)
	cal, err := conf.Calendar()
	if err != nil {
		t.Fatalf("Calendar failed: %v", err)
	}
	generator := loans.NewScheduleGenerator(zap.NewNop(), cal)

	const iterations = 20
	start := time.Now()
	for i := 0; i < iterations; i++ {
		schedule, err := generator.Generate(terms)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, err := output.CsvString(schedule); err != nil {
			t.Fatalf("CsvString failed: %v", err)
		}
	}
	elapsed := time.Since(start)

	t.Logf("%d daily 18-month schedules in %v (%v each)", iterations, elapsed, elapsed/iterations)
	if elapsed > 10*time.Second {
		t.Errorf("Schedule generation too slow: %v for %d iterations", elapsed, iterations)
	}
}

func BenchmarkGenerate(b *testing.B) {
	terms, conf := longestTerms(b)
	cal, err := conf.Calendar()
	if err != nil {
		b.Fatalf("Calendar failed: %v", err)
	}
	generator := loans.NewScheduleGenerator(zap.NewNop(), cal)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := generator.Generate(terms); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCsvString(b *testing.B) {
	terms, conf := longestTerms(b)
	cal, err := conf.Calendar()
	if err != nil {
		b.Fatalf("Calendar failed: %v", err)
	}
	schedule, err := loans.NewScheduleGenerator(zap.NewNop(), cal).Generate(terms)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := output.CsvString(schedule); err != nil {
			b.Fatal(err)
		}
	}
}
