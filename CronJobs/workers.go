package CronJobs

import (
	"fmt"
	"log"
	"time"

	"MindLine/Dispatch"
	"MindLine/Models"
	"MindLine/Whatsapp"

	"github.com/go-co-op/gocron"
	"gorm.io/gorm"
)

// Workers owns the background jobs: resuming interrupted waterfall
// dispatches and sending appointment reminders.
type Workers struct {
	DB     *gorm.DB
	Runner *Dispatch.Runner
}

func NewWorkers(db *gorm.DB, runner *Dispatch.Runner) *Workers {
	return &Workers{
		DB:     db,
		Runner: runner,
	}
}

// Start schedules the recurring jobs and returns the scheduler.
func (w *Workers) Start() *gocron.Scheduler {
	scheduler := gocron.NewScheduler(time.Local)

	scheduler.Every(1).Minutes().Do(func() {
		if err := w.ResumePendingDispatches(); err != nil {
			log.Printf("Error resuming pending dispatches: %v", err)
		}
	})

	scheduler.Every(1).Minutes().Do(func() {
		log.Println("Running appointment reminder check...")
		if err := w.SendAppointmentReminders(); err != nil {
			log.Printf("Error sending appointment reminders: %v", err)
		}
	})

	scheduler.StartAsync()
	log.Println("Background jobs started")

	return scheduler
}

// ResumePendingDispatches picks up waterfall jobs that were mid-flight
// when the process last stopped. The Runner ignores jobs it is already
// executing, so the sweep is safe to run every minute.
func (w *Workers) ResumePendingDispatches() error {
	var jobs []Models.NotificationJob
	if err := w.DB.Where("status = ? AND strategy = ?",
		Models.JobStatusSending, Models.StrategyWaterfall).Find(&jobs).Error; err != nil {
		return fmt.Errorf("failed to query pending dispatches: %w", err)
	}

	for index := range jobs {
		w.Runner.Resume(&jobs[index])
	}
	return nil
}

// SendAppointmentReminders messages patients roughly three hours before
// their session.
func (w *Workers) SendAppointmentReminders() error {
	now := time.Now()

	startWindow := now.Add(2*time.Hour + 53*time.Minute)
	endWindow := now.Add(3*time.Hour + 7*time.Minute)

	var appointments []Models.Appointment

	result := w.DB.Joins("JOIN patients ON appointments.patient_id = patients.id").
		Where("appointments.is_completed = ? AND appointments.reminder_sent = ? AND appointments.date_time BETWEEN ? AND ?",
			false, false,
			formatDateTime(startWindow),
			formatDateTime(endWindow)).
		Find(&appointments)

	if result.Error != nil {
		return fmt.Errorf("failed to query upcoming appointments: %w", result.Error)
	}

	for _, appointment := range appointments {
		var patient Models.Patient
		if err := w.DB.First(&patient, appointment.PatientID).Error; err != nil {
			log.Printf("Failed to find patient for appointment ID %d: %v", appointment.ID, err)
			continue
		}

		if !patient.IsVerified || patient.Phone == "" {
			continue
		}

		appointmentTime, err := parseDateTime(appointment.DateTime)
		if err != nil {
			log.Printf("Failed to parse appointment time for ID %d: %v", appointment.ID, err)
			continue
		}

		message := fmt.Sprintf(
			"Reminder: You have a session with %s today at %s (in 3 hours). "+
				"If you need to reschedule, please contact the practice.",
			appointment.ProviderName,
			appointmentTime.Format("3:04 PM"),
		)

		if err := Whatsapp.SendMessage(patient.Phone, message); err != nil {
			log.Printf("Failed to send reminder to patient %s: %v", patient.Name, err)
			continue
		}

		w.DB.Model(&Models.Appointment{}).Where("id = ?", appointment.ID).Update("reminder_sent", true)
		log.Printf("Reminder sent to %s for session at %s", patient.Name, appointment.DateTime)
	}

	return nil
}

func parseDateTime(dateTimeStr string) (time.Time, error) {
	return time.Parse("2006/01/02 & 3:04 PM", dateTimeStr)
}

func formatDateTime(t time.Time) string {
	return t.Format("2006/01/02 & 3:04 PM")
}
