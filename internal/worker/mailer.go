package worker

import (
	"context"
	"log"
	"time"

	"novella-shop/internal/client"
	"novella-shop/internal/repository"
)

// Mailer drains the email outbox in the background so no request ever
// waits on the mail server. Failed jobs are marked and logged; retrying
// is not this worker's job.
type Mailer struct {
	tick         time.Duration
	batchSize    int
	emailJobRepo repository.EmailJobRepository
	mailClient   client.MailClient
}

func NewMailer(emailJobRepo repository.EmailJobRepository, mailClient client.MailClient) *Mailer {
	return &Mailer{
		tick:         5 * time.Second,
		batchSize:    50,
		emailJobRepo: emailJobRepo,
		mailClient:   mailClient,
	}
}

func (m *Mailer) Run(ctx context.Context) {
	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.processQueuedJobs(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (m *Mailer) processQueuedJobs(ctx context.Context) {
	jobs, err := m.emailJobRepo.GetQueued(ctx, m.batchSize)
	if err != nil {
		log.Printf("fetch queued emails: %v", err)
		return
	}

	for _, job := range jobs {
		if err := m.mailClient.Send(job.ToAddress, job.Subject, job.Body); err != nil {
			log.Printf("send email job %d: %v", job.ID, err)
			if markErr := m.emailJobRepo.MarkFailed(ctx, job.ID); markErr != nil {
				log.Printf("mark email job %d failed: %v", job.ID, markErr)
			}
			continue
		}

		if err := m.emailJobRepo.MarkSent(ctx, job.ID); err != nil {
			log.Printf("mark email job %d sent: %v", job.ID, err)
		}
	}
}
