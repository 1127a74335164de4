package bot

import (
	"log"
	"sync"
	"time"

	"orgbot/model"
	"orgbot/scanner"
	"orgbot/utils"
)

// Scheduler manages all scheduled tasks: the expiry sweepers and the daily
// member-profile cleanup.
type Scheduler struct {
	bot  *Bot
	done chan struct{}
	wg   sync.WaitGroup

	absenceSweeper  *scanner.Sweeper
	sanctionSweeper *scanner.Sweeper
}

// NewScheduler creates a new scheduler.
func NewScheduler(b *Bot) *Scheduler {
	return &Scheduler{
		bot:  b,
		done: make(chan struct{}),
	}
}

// Start begins all scheduled tasks.
func (s *Scheduler) Start() {
	cfg := s.bot.Config

	absenceInterval := cfg.Absence.SweepInterval
	if absenceInterval <= 0 {
		absenceInterval = time.Minute
	}
	sanctionInterval := cfg.Sanction.SweepInterval
	if sanctionInterval <= 0 {
		sanctionInterval = 10 * time.Minute
	}

	s.absenceSweeper = scanner.NewSweeper("absence-sweeper", s.bot.Records, s.bot.Manager,
		absenceInterval, model.KindAbsence)
	s.sanctionSweeper = scanner.NewSweeper("sanction-sweeper", s.bot.Records, s.bot.Manager,
		sanctionInterval, model.SanctionKinds()...)
	s.absenceSweeper.Start()
	s.sanctionSweeper.Start()

	// Overdue records accumulated during downtime should not wait for the
	// first tick.
	s.absenceSweeper.Sweep()
	s.sanctionSweeper.Sweep()

	s.wg.Add(1)
	go s.startDailyTasks()
}

// Stop terminates all scheduled tasks gracefully.
func (s *Scheduler) Stop() {
	log.Println("Stopping scheduler...")
	close(s.done)
	if s.absenceSweeper != nil {
		s.absenceSweeper.Stop()
	}
	if s.sanctionSweeper != nil {
		s.sanctionSweeper.Stop()
	}
	s.wg.Wait()
	log.Println("Scheduler stopped.")
}

func (s *Scheduler) startDailyTasks() {
	defer s.wg.Done()
	runHour := 5 // 5 AM local time

	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), runHour, 0, 0, 0, now.Location())
		if !now.Before(next) {
			next = next.Add(24 * time.Hour)
		}

		log.Printf("Next daily task scheduled for: %v", next)
		select {
		case <-time.After(next.Sub(now)):
			s.cleanupMemberProfiles()
			s.refreshRoster()
		case <-s.done:
			return
		}
	}
}

// cleanupMemberProfiles drops member profiles past the retention window.
// Retention 0 disables the cleanup.
func (s *Scheduler) cleanupMemberProfiles() {
	retention := s.bot.Config.Registration.MemberRetentionDays
	if retention <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -retention)
	removed, err := s.bot.Registrations.DeleteMembersBefore(cutoff)
	if err != nil {
		log.Printf("Failed to clean up member profiles: %v", err)
		utils.LogError(s.bot.Session, s.bot.Config.LogChannelID, "Scheduler", "Member cleanup", err.Error())
		return
	}
	if removed > 0 {
		log.Printf("Removed %d member profile(s) older than %d days", removed, retention)
	}
}

// refreshRoster picks up role changes made outside the bot (manual
// promotions, departures) that no handler sees.
func (s *Scheduler) refreshRoster() {
	if s.bot.RosterListing == nil {
		return
	}
	if err := s.bot.RosterListing.Refresh(); err != nil {
		log.Printf("Failed to refresh roster listing: %v", err)
		utils.LogError(s.bot.Session, s.bot.Config.LogChannelID, "Scheduler", "Roster refresh", err.Error())
	}
}
