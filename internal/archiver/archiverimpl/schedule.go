package archiverimpl

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/orgball2608/insta-archive/internal/archiver"
	"github.com/orgball2608/insta-archive/internal/domain"
	"github.com/orgball2608/insta-archive/internal/repositories/user"
	"github.com/orgball2608/insta-archive/pkg/formatter"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/fx"
)

// RunReport summarizes one scheduled pass.
type RunReport struct {
	Kind     user.AutoUpdateKind
	Users    int
	Updated  int
	Limited  int
	Failed   int
	Stories  int
	Duration time.Duration
	Errors   []string
}

func registerSchedules(lc fx.Lifecycle, a *ArchiverImpl) error {
	if !a.Config.Archiver.Enabled {
		a.Logger.Info("Scheduled archiving disabled")
		return nil
	}

	loc, err := time.LoadLocation(a.Config.Archiver.Timezone)
	if err != nil {
		loc = time.UTC
		a.Logger.Warn("Failed to load archiver timezone, using UTC", "timezone", a.Config.Archiver.Timezone, "error", err)
	}

	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(loc),
	)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	jobs := []struct {
		kind     user.AutoUpdateKind
		interval time.Duration
	}{
		{user.AutoUpdateStories, a.Config.Archiver.StoriesInterval},
		{user.AutoUpdateProfile, a.Config.Archiver.ProfileInterval},
	}
	for _, job := range jobs {
		kind := job.kind
		_, err = scheduler.NewJob(
			gocron.DurationJob(job.interval),
			gocron.NewTask(func() {
				if ctx.Err() != nil {
					return
				}
				runCtx, stop := context.WithTimeout(ctx, job.interval)
				defer stop()
				a.notify(a.RunScheduled(runCtx, kind))
			}),
			gocron.WithName("archive "+string(kind)),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			cancel()
			return fmt.Errorf("failed to schedule %s updates: %w", kind, err)
		}
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := a.Instagram.Login(ctx); err != nil {
					a.Logger.Error("Instagram login error", "error", err)
					a.Telegram.SendMessageToUser(formatter.EscapeMarkdownV2("Instagram login error: " + err.Error()))
				}
			}()
			scheduler.Start()
			a.Logger.Info("Archive schedules started",
				"stories_every", a.Config.Archiver.StoriesInterval.String(),
				"profiles_every", a.Config.Archiver.ProfileInterval.String(),
			)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			a.Logger.Info("Stopping archive scheduler")
			return scheduler.Shutdown()
		},
	})

	return nil
}

// RunScheduled updates every user that opted into automatic updates of kind, honouring
// their daily limits, on a worker pool.
func (a *ArchiverImpl) RunScheduled(ctx context.Context, kind user.AutoUpdateKind) RunReport {
	started := a.now()
	report := RunReport{Kind: kind}

	users, err := a.UserRepo.ListAutoUpdate(ctx, kind)
	if err != nil {
		a.Logger.Error("Failed to list users for automatic update", "kind", kind, "error", err)
		report.Failed++
		report.Errors = append(report.Errors, err.Error())
		return report
	}

	report.Users = len(users)
	if len(users) == 0 {
		a.Logger.Info("No users opted into automatic updates", "kind", kind)
		return report
	}

	a.Logger.Info("Starting scheduled update", "kind", kind, "users", len(users))
	a.runJobsWithAnts(ctx, shuffleUsers(users), func(u *domain.InstagramUser) outcome {
		return a.updateUser(ctx, kind, u)
	}, &report)

	report.Duration = a.now().Sub(started)
	a.Logger.Info("Scheduled update finished",
		"kind", kind,
		"updated", report.Updated,
		"limited", report.Limited,
		"failed", report.Failed,
		"stories", report.Stories,
	)
	return report
}

type outcome struct {
	updated bool
	limited bool
	stories int
	err     error
}

func (a *ArchiverImpl) updateUser(ctx context.Context, kind user.AutoUpdateKind, u *domain.InstagramUser) outcome {
	ok, err := a.quotaLeft(ctx, kind, u)
	if err != nil {
		return outcome{err: fmt.Errorf("%s: %w", u.Username, err)}
	}
	if !ok {
		a.Logger.Debug("Daily limit reached", "username", u.Username, "kind", kind)
		return outcome{limited: true}
	}

	var o outcome
	switch kind {
	case user.AutoUpdateProfile:
		_, err = a.RefreshProfile(ctx, u)
	default:
		var res archiver.Result
		res, err = a.ArchiveStories(ctx, u)
		o.stories = res.Created
	}
	if err != nil {
		o.err = fmt.Errorf("%s: %w", u.Username, err)
		return o
	}

	a.useQuota(ctx, kind, u)
	o.updated = true
	return o
}

func (a *ArchiverImpl) runJobsWithAnts(ctx context.Context, users []*domain.InstagramUser, job func(*domain.InstagramUser) outcome, report *RunReport) {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	record := func(o outcome) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case o.err != nil:
			report.Failed++
			report.Errors = append(report.Errors, o.err.Error())
		case o.limited:
			report.Limited++
		case o.updated:
			report.Updated++
		}
		report.Stories += o.stories
	}

	pool, err := ants.NewPool(max(1, a.Config.Archiver.Workers), ants.WithPreAlloc(true))
	if err != nil {
		a.Logger.Error("Failed to create worker pool", "error", err)
		record(outcome{err: err})
		return
	}
	defer pool.Release()

	for _, u := range users {
		wg.Add(1)
		userToProcess := u

		err := pool.Submit(func() {
			defer wg.Done()
			select {
			case <-ctx.Done():
				a.Logger.Info("Skipping job due to context cancellation", "username", userToProcess.Username)
				record(outcome{err: fmt.Errorf("%s: %w", userToProcess.Username, ctx.Err())})
			default:
				record(job(userToProcess))
			}
		})
		if err != nil {
			wg.Done()
			a.Logger.Error("Failed to submit job to ants pool", "username", userToProcess.Username, "error", err)
			record(outcome{err: fmt.Errorf("%s: %w", userToProcess.Username, err)})
		}
	}

	wg.Wait()
}

func (a *ArchiverImpl) notify(r RunReport) {
	if r.Users == 0 && r.Failed == 0 {
		return
	}
	a.Telegram.SendMessageToUser(FormatReport(r))
}

// FormatReport renders r as a MarkdownV2 message.
func FormatReport(r RunReport) string {
	var sb strings.Builder

	title := "Story archive run"
	if r.Kind == user.AutoUpdateProfile {
		title = "Profile refresh run"
	}
	fmt.Fprintf(&sb, "*%s*\n", formatter.EscapeMarkdownV2(title))
	fmt.Fprintf(&sb, "Users: %s\n", formatter.EscapeMarkdownV2(formatter.FormatNumber(r.Users)))
	fmt.Fprintf(&sb, "Updated: %s\n", formatter.EscapeMarkdownV2(formatter.FormatNumber(r.Updated)))
	if r.Kind == user.AutoUpdateStories {
		fmt.Fprintf(&sb, "New stories: %s\n", formatter.EscapeMarkdownV2(formatter.FormatNumber(r.Stories)))
	}
	if r.Limited > 0 {
		fmt.Fprintf(&sb, "Daily limit reached: %s\n", formatter.EscapeMarkdownV2(formatter.Plural(r.Limited, "user", "users")))
	}
	fmt.Fprintf(&sb, "Failures: %s\n", formatter.EscapeMarkdownV2(formatter.FormatNumber(r.Failed)))
	fmt.Fprintf(&sb, "Took: %s", formatter.EscapeMarkdownV2(formatter.FormatDuration(r.Duration)))

	const maxErrors = 5
	for i, e := range r.Errors {
		if i == maxErrors {
			fmt.Fprintf(&sb, "\n_…and %d more_", len(r.Errors)-maxErrors)
			break
		}
		fmt.Fprintf(&sb, "\n• %s", formatter.EscapeMarkdownV2(e))
	}

	return sb.String()
}

func shuffleUsers(users []*domain.InstagramUser) []*domain.InstagramUser {
	result := make([]*domain.InstagramUser, len(users))
	copy(result, users)
	rand.Shuffle(len(result), func(i, j int) {
		result[i], result[j] = result[j], result[i]
	})
	return result
}
