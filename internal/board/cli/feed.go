package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"postboard/internal/board"
	"postboard/internal/models"
)

// ensureMounted opens the live feed view if this session has not already.
func (a *App) ensureMounted(ctx context.Context) error {
	err := a.ctrl.Mount(ctx)
	if err != nil && !errors.Is(err, board.ErrAlreadyMounted) {
		return err
	}
	if err == nil {
		// Give the initial snapshot a moment to arrive so the first
		// listing is not spuriously empty.
		deadline := time.Now().Add(time.Second)
		for len(a.ctrl.Posts()) == 0 && a.ctrl.FeedErr() == nil && time.Now().Before(deadline) {
			time.Sleep(20 * time.Millisecond)
		}
	}
	return nil
}

// Feed prints the current feed snapshot, newest first.
func (a *App) Feed(ctx context.Context) error {
	if err := a.ensureMounted(ctx); err != nil {
		fmt.Fprintf(a.out, "Feed unavailable: %s\n", err)
		return err
	}

	a.printFeed(a.ctrl.Posts())

	if err := a.ctrl.FeedErr(); err != nil {
		fmt.Fprintf(a.out, "Warning: feed is stale (%s)\n", err)
	}
	return nil
}

// Watch follows the feed and reprints it on every change until the user
// presses Enter.
func (a *App) Watch(ctx context.Context) error {
	if err := a.ensureMounted(ctx); err != nil {
		fmt.Fprintf(a.out, "Feed unavailable: %s\n", err)
		return err
	}

	fmt.Fprintln(a.out, "Watching feed, press Enter to stop")

	stop := make(chan struct{})
	go func() {
		_, _ = a.reader.ReadString('\n')
		close(stop)
	}()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	var last string
	for {
		select {
		case <-ticker.C:
			snap := a.ctrl.Posts()
			if fp := feedFingerprint(snap); fp != last {
				last = fp
				a.printFeed(snap)
			}
			if err := a.ctrl.FeedErr(); err != nil {
				fmt.Fprintf(a.out, "Feed stopped: %s\n", err)
				return err
			}
		case <-stop:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (a *App) printFeed(snap models.Snapshot) {
	if len(snap) == 0 {
		fmt.Fprintln(a.out, "The feed is empty.")
		return
	}
	for _, p := range snap {
		marker := " "
		if a.ctrl.CanDelete(p) {
			marker = "*"
		}
		ts := "pending"
		if p.Committed() {
			ts = p.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(a.out, "%s %s  %-30s  %s  %s\n", marker, p.ID, p.Title, p.DisplayAuthor(), ts)
	}
}

// feedFingerprint summarizes a snapshot cheaply enough to detect change
// between watch ticks.
func feedFingerprint(snap models.Snapshot) string {
	s := ""
	for _, p := range snap {
		s += p.ID
		if p.Committed() {
			s += "!"
		}
		s += ";"
	}
	return s
}
