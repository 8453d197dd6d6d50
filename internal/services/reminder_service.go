package services

import (
	"context"
	"fmt"
	"html"
	"log"
	"time"

	"taskmaster/internal/models"
	"taskmaster/internal/repositories"
)

// ReminderService periodically scans for open tasks coming due and notifies
// their owners once per task (reminded_at guards against repeats). It only
// reads tasks and stamps the reminder marker; task lifecycle state is never
// touched.
type ReminderService struct {
	tasks    repositories.TaskRepository
	users    repositories.UserRepository
	email    EmailService
	tg       *TelegramService
	interval time.Duration
	leadTime time.Duration
}

func NewReminderService(
	tasks repositories.TaskRepository,
	users repositories.UserRepository,
	email EmailService,
	tg *TelegramService,
	interval, leadTime time.Duration,
) *ReminderService {
	return &ReminderService{
		tasks:    tasks,
		users:    users,
		email:    email,
		tg:       tg,
		interval: interval,
		leadTime: leadTime,
	}
}

// Run blocks until ctx is cancelled. Call it from its own goroutine.
func (s *ReminderService) Run(ctx context.Context) {
	log.Printf("[reminder] started interval=%s lead=%s", s.interval, s.leadTime)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[reminder] stopped: %v", ctx.Err())
			return
		case <-ticker.C:
			s.scan(ctx)
		}
	}
}

func (s *ReminderService) scan(ctx context.Context) {
	cutoff := time.Now().Add(s.leadTime)
	due, err := s.tasks.ListDueForReminder(ctx, cutoff, 100)
	if err != nil {
		log.Printf("[reminder][scan][err] %v", err)
		return
	}
	notified := 0
	for i := range due {
		task := &due[i]
		if err := s.notify(ctx, task); err != nil {
			log.Printf("[reminder][notify][err] task=%d: %v", task.ID, err)
			continue
		}
		notified++
		if err := s.tasks.SetReminderFired(ctx, task.ID); err != nil {
			log.Printf("[reminder][mark][err] task=%d: %v", task.ID, err)
		}
	}
	if notified > 0 {
		log.Printf("[reminder][scan][ok] notified=%d", notified)
	}
}

func (s *ReminderService) notify(ctx context.Context, task *models.Task) error {
	due := "soon"
	if task.DueDate != nil {
		due = task.DueDate.Format("2006-01-02 15:04")
	}

	var sent bool
	if s.email != nil {
		owner, err := s.users.GetByID(ctx, task.OwnerID)
		if err != nil {
			return err
		}
		if err := s.email.SendDueReminderEmail(owner.Email, task.Title, due); err != nil {
			return err
		}
		sent = true
	}
	if s.tg != nil {
		msg := "⏰ Task due soon\n" +
			"• <b>" + html.EscapeString(task.Title) + "</b>\n" +
			"• Due: <code>" + due + "</code>\n" +
			"• Status: <code>" + string(task.Status) + "</code>"
		if err := s.tg.SendMessage(msg); err != nil {
			return err
		}
		sent = true
	}
	if !sent {
		return fmt.Errorf("no notification channel configured")
	}
	return nil
}
