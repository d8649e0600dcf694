package Dispatch

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"MindLine/Models"
)

// Messenger is the outbound message collaborator. The WhatsApp gateway
// client satisfies it in production; tests plug in a recorder.
type Messenger interface {
	SendMessage(phone, message string) error
}

// Recipient is one dispatch target, in send order.
type Recipient struct {
	PatientID uint
	Name      string
	Phone     string
}

type Progress struct {
	Sent  int `json:"sent"`
	Total int `json:"total"`
}

// Result is the final state of a dispatch run. Failed holds the names of
// recipients whose sends errored; AcceptedByID is set when a waterfall
// stopped early because a recipient took the slot.
type Result struct {
	Status       string
	Sent         int
	Total        int
	Failed       []string
	AcceptedByID *uint
}

// Options tune a single dispatch run.
type Options struct {
	// Interval between waterfall sends. Ignored for blast.
	Interval time.Duration
	// OnProgress fires after every completed send. Sent counts are
	// monotonically non-decreasing.
	OnProgress func(Progress)
	// OnSent fires per recipient after a successful send, with the
	// recipient's position in the list.
	OnSent func(index int, r Recipient)
	// Accept delivers the patient ID of a recipient who accepted the
	// offered slot; the waterfall stops early when it fires.
	Accept <-chan uint
}

// MissingPhoneError is the fail-fast precondition failure: no messages
// are attempted when any recipient has no phone on file.
type MissingPhoneError struct {
	Names []string
}

func (e *MissingPhoneError) Error() string {
	return fmt.Sprintf("recipients missing phone numbers: %s", strings.Join(e.Names, ", "))
}

// Personalize substitutes the {name} placeholder in a template.
func Personalize(template, name string) string {
	return strings.ReplaceAll(template, "{name}", name)
}

// Dispatcher sends a personalized template to a recipient list using the
// blast or waterfall strategy. A Dispatcher runs one job at a time; the
// Runner owns one per active job.
type Dispatcher struct {
	messenger Messenger
	clock     Clock

	mu     sync.Mutex
	status string
	sent   int
	total  int

	// progressMu serializes advance-plus-callback so observers never
	// see the sent count go backwards during a blast.
	progressMu sync.Mutex
}

func NewDispatcher(messenger Messenger, clock Clock) *Dispatcher {
	if clock == nil {
		clock = NewRealClock()
	}
	return &Dispatcher{messenger: messenger, clock: clock, status: Models.JobStatusIdle}
}

// Snapshot returns the current status and progress. Callers must treat
// the snapshot as an immutable read.
func (d *Dispatcher) Snapshot() (string, Progress) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status, Progress{Sent: d.sent, Total: d.total}
}

// Dispatch validates, then runs the chosen strategy to completion. It
// blocks until the job finishes, fails, or is cancelled; run it in a
// goroutine for fire-and-forget use. startIndex is non-zero only when a
// persisted waterfall is being resumed.
func (d *Dispatcher) Dispatch(ctx context.Context, recipients []Recipient, template, strategy string, startIndex int, opts Options) (Result, error) {
	if err := validatePhones(recipients); err != nil {
		d.setStatus(Models.JobStatusError)
		return Result{Status: Models.JobStatusError, Total: len(recipients)}, err
	}

	d.mu.Lock()
	d.status = Models.JobStatusSending
	d.sent = startIndex
	d.total = len(recipients)
	d.mu.Unlock()

	switch strategy {
	case Models.StrategyBlast:
		return d.blast(recipients, template, opts), nil
	case Models.StrategyWaterfall:
		return d.waterfall(ctx, recipients, template, startIndex, opts), nil
	}
	d.setStatus(Models.JobStatusError)
	return Result{Status: Models.JobStatusError, Total: len(recipients)}, fmt.Errorf("unknown strategy %q", strategy)
}

func validatePhones(recipients []Recipient) error {
	var missing []string
	for _, r := range recipients {
		if strings.TrimSpace(r.Phone) == "" {
			missing = append(missing, r.Name)
		}
	}
	if len(missing) > 0 {
		return &MissingPhoneError{Names: missing}
	}
	return nil
}

// blast fires every message concurrently. Once issued it cannot be
// cancelled; the result aggregates any per-recipient failures.
func (d *Dispatcher) blast(recipients []Recipient, template string, opts Options) Result {
	var wg sync.WaitGroup
	var failedMu sync.Mutex
	var failed []string

	for i, recipient := range recipients {
		wg.Add(1)
		go func(index int, r Recipient) {
			defer wg.Done()
			if err := d.messenger.SendMessage(r.Phone, Personalize(template, r.Name)); err != nil {
				log.Printf("Failed to send to %s: %v", r.Name, err)
				failedMu.Lock()
				failed = append(failed, r.Name)
				failedMu.Unlock()
				return
			}
			d.progressMu.Lock()
			progress := d.advance()
			if opts.OnSent != nil {
				opts.OnSent(index, r)
			}
			if opts.OnProgress != nil {
				opts.OnProgress(progress)
			}
			d.progressMu.Unlock()
		}(i, recipient)
	}
	wg.Wait()

	status := Models.JobStatusSent
	if len(failed) > 0 {
		status = Models.JobStatusError
	}
	d.setStatus(status)
	_, progress := d.Snapshot()
	return Result{Status: status, Sent: progress.Sent, Total: progress.Total, Failed: failed}
}

// waterfall sends strictly in list order with a fixed delay between
// recipients. A send failure is logged and the queue continues. The run
// stops early on cancellation or when Accept fires.
func (d *Dispatcher) waterfall(ctx context.Context, recipients []Recipient, template string, startIndex int, opts Options) Result {
	var failed []string
	var acceptedBy *uint

loop:
	for i := startIndex; i < len(recipients); i++ {
		if i > startIndex {
			select {
			case <-d.clock.After(opts.Interval):
			case <-ctx.Done():
				d.setStatus(Models.JobStatusCancelled)
				_, progress := d.Snapshot()
				return Result{Status: Models.JobStatusCancelled, Sent: progress.Sent, Total: progress.Total, Failed: failed}
			// a nil Accept channel never fires, which is what we want
			case patientID := <-opts.Accept:
				acceptedBy = &patientID
				break loop
			}
		}

		recipient := recipients[i]
		if err := d.messenger.SendMessage(recipient.Phone, Personalize(template, recipient.Name)); err != nil {
			log.Printf("Failed to send to %s: %v", recipient.Name, err)
			failed = append(failed, recipient.Name)
			continue
		}
		progress := d.advance()
		if opts.OnSent != nil {
			opts.OnSent(i, recipient)
		}
		if opts.OnProgress != nil {
			opts.OnProgress(progress)
		}
	}

	status := Models.JobStatusSent
	if len(failed) > 0 && acceptedBy == nil {
		status = Models.JobStatusError
	}
	d.setStatus(status)
	_, progress := d.Snapshot()
	return Result{Status: status, Sent: progress.Sent, Total: progress.Total, Failed: failed, AcceptedByID: acceptedBy}
}

func (d *Dispatcher) advance() Progress {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent++
	return Progress{Sent: d.sent, Total: d.total}
}

func (d *Dispatcher) setStatus(status string) {
	d.mu.Lock()
	d.status = status
	d.mu.Unlock()
}
