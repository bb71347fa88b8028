package habits

import (
	"fmt"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/constants"
)

type HabitCmd struct {
	Add      HabitAddCmd      `cmd:"" help:"Create a habit."`
	List     HabitListCmd     `cmd:"" help:"List habits, newest first."`
	Toggle   HabitToggleCmd   `cmd:"" help:"Toggle today's completion for a habit."`
	Today    HabitTodayCmd    `cmd:"" help:"Show today's status for every habit."`
	Progress HabitProgressCmd `cmd:"" help:"Show the last 7 days for every habit."`
	Streaks  HabitStreaksCmd  `cmd:"" help:"Show current and longest streaks."`
}

type HabitAddCmd struct {
	Name        string `arg:"" help:"Habit name (2-50 characters)."`
	Description string `short:"d" help:"Optional description (up to 200 characters)."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	s, err := ctx.OpenSession()
	if err != nil {
		return err
	}
	defer s.Close()

	habit, err := s.Tracker.CreateHabit(ctx.Ctx, c.Name, c.Description)
	if err != nil {
		return err
	}

	ctx.Println(successStyle.Render(constants.HabitCreatedText))
	ctx.Printf("  %s  %s\n", habit.Name, mutedStyle.Render(habit.ID))
	return nil
}

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	s, err := ctx.OpenSession()
	if err != nil {
		return err
	}
	defer s.Close()

	habits, err := s.Tracker.ListHabits(ctx.Ctx)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		ctx.Println("No habits created yet. Start by creating a new habit with 'habitual habit add'.")
		return nil
	}

	for _, h := range habits {
		ctx.Printf("%s  %s\n", h.Name, mutedStyle.Render(h.ID))
		if h.Description != "" {
			ctx.Printf("  %s\n", h.Description)
		}
	}
	ctx.Printf("\n%d/%d habits\n", len(habits), constants.MaxHabitsPerOwner)
	return nil
}

type HabitToggleCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
	Yes   bool   `short:"y" help:"Skip the confirmation when reverting today's completion."`
}

func (c *HabitToggleCmd) Run(ctx *cli.Context) error {
	s, err := ctx.OpenSession()
	if err != nil {
		return err
	}
	defer s.Close()

	habit, err := s.Tracker.FindHabit(ctx.Ctx, c.Habit)
	if err != nil {
		return err
	}
	today := s.Tracker.Today()

	needsConfirm, err := s.Tracker.NeedsConfirmation(ctx.Ctx, habit.ID, today)
	if err != nil {
		return err
	}
	if needsConfirm && !c.Yes {
		ok, err := ctx.Confirm(constants.ConfirmUncheckTitle, constants.ConfirmUncheckDetail)
		if err != nil {
			return fmt.Errorf("confirmation failed: %w", err)
		}
		if !ok {
			ctx.Println("No changes made.")
			return nil
		}
	}

	completion, err := s.Tracker.Toggle(ctx.Ctx, habit.ID, today)
	if err != nil {
		return err
	}

	if completion.Completed {
		ctx.Printf("%s %s completed at %s\n", checkStyle.Render("✓"), habit.Name,
			completion.CompletedAt.In(s.Tracker.Location()).Format(constants.ClockFormat))
	} else {
		ctx.Printf("%s %s marked not done for today\n", mutedStyle.Render("○"), habit.Name)
	}
	return nil
}

type HabitTodayCmd struct{}

func (c *HabitTodayCmd) Run(ctx *cli.Context) error {
	s, err := ctx.OpenSession()
	if err != nil {
		return err
	}
	defer s.Close()

	statuses, err := s.Tracker.Overview(ctx.Ctx)
	if err != nil {
		return err
	}
	if len(statuses) == 0 {
		ctx.Println("No habits created yet. Start by creating a new habit with 'habitual habit add'.")
		return nil
	}

	ctx.Println(headerStyle.Render(s.Tracker.Today().Time(s.Tracker.Location()).Format("Monday, January 2")))
	for _, st := range statuses {
		ctx.Println(renderStatus(st, s.Tracker.Location()))
	}
	return nil
}

type HabitProgressCmd struct{}

func (c *HabitProgressCmd) Run(ctx *cli.Context) error {
	s, err := ctx.OpenSession()
	if err != nil {
		return err
	}
	defer s.Close()

	rows, err := s.Tracker.Progress(ctx.Ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		ctx.Println(constants.EmptyProgressText)
		return nil
	}

	ctx.Println(renderProgress(rows, s.Tracker.Today()))
	return nil
}

type HabitStreaksCmd struct{}

func (c *HabitStreaksCmd) Run(ctx *cli.Context) error {
	s, err := ctx.OpenSession()
	if err != nil {
		return err
	}
	defer s.Close()

	statuses, err := s.Tracker.Overview(ctx.Ctx)
	if err != nil {
		return err
	}
	if len(statuses) == 0 {
		ctx.Println("No habits created yet.")
		return nil
	}

	ctx.Println(renderStreaks(statuses))
	return nil
}
