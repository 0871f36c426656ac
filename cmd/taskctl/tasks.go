package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/msomdec/taskboard/internal/domain"
)

func cmdTasks(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return usagef("tasks: expected list, add, edit, done, rm or stats")
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "list", "ls":
		return tasksList(ctx, a, rest)
	case "add":
		return tasksAdd(ctx, a, rest)
	case "edit":
		return tasksEdit(ctx, a, rest)
	case "done", "toggle":
		return tasksToggle(ctx, a, rest)
	case "rm", "delete":
		return tasksRemove(ctx, a, rest)
	case "stats":
		return tasksStats(ctx, a, rest)
	}
	return usagef("tasks: unknown subcommand %q", sub)
}

func (a *app) fetch(ctx context.Context) error {
	a.tasks.FetchTasks(ctx)
	return a.taskFailure()
}

func tasksList(ctx context.Context, a *app, args []string) error {
	var search, status string
	fs := newFlagSet("tasks list", a)
	fs.StringVarP(&search, "search", "s", "", "case-insensitive text to match in title or description")
	fs.StringVar(&status, "status", string(domain.FilterAll), "all, pending or completed")
	if done, err := parseFlags(fs, args); done {
		return err
	}
	filter, err := domain.ParseFilterStatus(status)
	if err != nil {
		return usagef("tasks list: --status must be all, pending or completed")
	}

	if err := a.fetch(ctx); err != nil {
		return err
	}
	a.tasks.SetSearchQuery(search)
	a.tasks.SetFilterStatus(filter)

	renderTasks(a.out, a.tasks.FilteredTasks())
	renderStats(a.out, a.tasks.Stats())
	return nil
}

func tasksAdd(ctx context.Context, a *app, args []string) error {
	var title, description string
	fs := newFlagSet("tasks add", a)
	fs.StringVarP(&title, "title", "t", "", "task title")
	fs.StringVarP(&description, "description", "d", "", "task description")
	if done, err := parseFlags(fs, args); done {
		return err
	}
	if title == "" && fs.NArg() > 0 {
		title = strings.Join(fs.Args(), " ")
	}

	task, err := a.tasks.CreateTask(ctx, domain.NewTask{Title: title, Description: description})
	if err != nil {
		if ferr := a.taskFailure(); ferr != nil {
			return ferr
		}
		return err
	}
	fmt.Fprintf(a.out, "Created %s\n", task.ID)
	return nil
}

func tasksEdit(ctx context.Context, a *app, args []string) error {
	var title, description, status string
	fs := newFlagSet("tasks edit", a)
	fs.StringVarP(&title, "title", "t", "", "new title")
	fs.StringVarP(&description, "description", "d", "", "new description")
	fs.StringVar(&status, "status", "", "pending or completed")
	if done, err := parseFlags(fs, args); done {
		return err
	}
	if fs.NArg() != 1 {
		return usagef("tasks edit: expected exactly one task id")
	}

	var patch domain.TaskPatch
	if fs.Changed("title") {
		patch.Title = &title
	}
	if fs.Changed("description") {
		patch.Description = &description
	}
	if fs.Changed("status") {
		st, err := domain.ParseTaskStatus(status)
		if err != nil {
			return usagef("tasks edit: --status must be pending or completed")
		}
		patch.Status = &st
	}
	if patch == (domain.TaskPatch{}) {
		return usagef("tasks edit: nothing to change")
	}

	id, err := a.resolveTask(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	if err := a.tasks.UpdateTask(ctx, id, patch); err != nil {
		if ferr := a.taskFailure(); ferr != nil {
			return ferr
		}
		return err
	}
	fmt.Fprintf(a.out, "Updated %s\n", id)
	return nil
}

func tasksToggle(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return usagef("tasks done: expected exactly one task id")
	}
	id, err := a.resolveTask(ctx, args[0])
	if err != nil {
		return err
	}

	a.tasks.ToggleStatus(ctx, id)
	if err := a.taskFailure(); err != nil {
		return err
	}
	for _, t := range a.tasks.Tasks() {
		if t.ID == id {
			fmt.Fprintf(a.out, "%s is now %s\n", id, t.Status)
		}
	}
	return nil
}

func tasksRemove(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return usagef("tasks rm: expected exactly one task id")
	}
	id, err := a.resolveTask(ctx, args[0])
	if err != nil {
		return err
	}

	a.tasks.DeleteTask(ctx, id)
	if err := a.taskFailure(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %s\n", id)
	return nil
}

func tasksStats(ctx context.Context, a *app, args []string) error {
	if len(args) > 0 {
		return usagef("tasks stats takes no arguments")
	}
	if err := a.fetch(ctx); err != nil {
		return err
	}
	renderStats(a.out, a.tasks.Stats())
	return nil
}

// resolveTask loads the collection and expands a unique id prefix.
func (a *app) resolveTask(ctx context.Context, prefix string) (string, error) {
	if err := a.fetch(ctx); err != nil {
		return "", err
	}
	var matches []string
	for _, t := range a.tasks.Tasks() {
		if t.ID == prefix {
			return t.ID, nil
		}
		if strings.HasPrefix(t.ID, prefix) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no task matches %q", prefix)
	case 1:
		return matches[0], nil
	}
	return "", fmt.Errorf("%q is ambiguous (%d tasks match)", prefix, len(matches))
}
