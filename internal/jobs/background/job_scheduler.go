package background

import (
	"context"
	"log"
	"sync"
	"time"

	"gurukul/internal/reporting"
	"gurukul/internal/services"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler runs the periodic maintenance jobs: due roll-number
// schedules, overdue bill sweeps and report cache warming.
type JobScheduler struct {
	scheduler         gocron.Scheduler
	rollNumberService services.RollNumberServiceInterface
	billGenService    services.BillGenServiceInterface
	reportingSvc      *reporting.Service
	jobs              map[string]gocron.Job
	mu                sync.RWMutex
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(rollNumberService services.RollNumberServiceInterface,
	billGenService services.BillGenServiceInterface, reportingSvc *reporting.Service) *JobScheduler {

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler:         scheduler,
		rollNumberService: rollNumberService,
		billGenService:    billGenService,
		reportingSvc:      reportingSvc,
		jobs:              make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// registerJobs registers all background jobs
func (js *JobScheduler) registerJobs() {
	// Scheduled roll-number runs are persisted rows; poll for due ones
	// every minute so a restart never loses a schedule.
	scheduleJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(js.runDueSchedules),
		gocron.WithName("roll-number-schedule-poller"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create schedule poller job: %v", err)
	} else {
		js.jobs["roll-number-schedules"] = scheduleJob
	}

	// Overdue bill sweep - every hour
	overdueJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.markOverdueBills),
		gocron.WithName("overdue-bill-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create overdue bill job: %v", err)
	} else {
		js.jobs["overdue-bills"] = overdueJob
	}

	// Report cache warm - every 15 minutes
	reportJob, err := js.scheduler.NewJob(
		gocron.DurationJob(15*time.Minute),
		gocron.NewTask(js.warmReportCache),
		gocron.WithName("report-cache-warm"),
	)
	if err != nil {
		log.Printf("Failed to create report warm job: %v", err)
	} else {
		js.jobs["report-warm"] = reportJob
	}

	log.Printf("Registered %d background jobs", len(js.jobs))
}

func (js *JobScheduler) runDueSchedules() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := js.rollNumberService.RunDueJobs(ctx); err != nil {
		log.Printf("Roll-number schedule run failed: %v", err)
	}
}

func (js *JobScheduler) markOverdueBills() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	count, err := js.billGenService.MarkOverdueBills(ctx)
	if err != nil {
		log.Printf("Overdue bill sweep failed: %v", err)
		return
	}
	if count > 0 {
		log.Printf("Marked %d bills overdue", count)
	}
}

func (js *JobScheduler) warmReportCache() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	start, end := reporting.DefaultRange(time.Now())
	if _, err := js.reportingSvc.Summary(ctx, start, end, nil); err != nil {
		log.Printf("Report cache warm failed: %v", err)
		return
	}
	if _, err := js.reportingSvc.RevenueBreakdown(ctx, start, end, nil); err != nil {
		log.Printf("Revenue breakdown warm failed: %v", err)
	}
	if _, err := js.reportingSvc.ExpenseBreakdown(ctx, start, end, nil); err != nil {
		log.Printf("Expense breakdown warm failed: %v", err)
	}
}
