package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	rsm "github.com/DevTommyy/cli-client"
)

// app carries the state shared by all subcommands: the config store and
// the config loaded by the root pre-run.
type app struct {
	store *rsm.ConfigStore
	cfg   *rsm.Config
}

func (a *app) authFlow(client *rsm.Client) *rsm.AuthFlow {
	return rsm.NewAuthFlow(a.store, client, os.Stdin, os.Stdout)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "rsm",
		Short:        "Command-line client for the rsm reminder service",
		SilenceUsage: true,
		// Enforce the first-run invariant: every subcommand except new-key
		// walks the user through enrollment before doing anything else.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch cmd.Name() {
			case "new-key", "help", "completion":
				return nil
			}
			cfg, err := a.store.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			if cfg.FirstRun {
				client, err := rsm.NewClientWithoutToken()
				if err != nil {
					return err
				}
				return a.authFlow(client).ShowFirstRunPrompt(cfg)
			}
			return nil
		},
	}
	root.AddCommand(
		newKeyCmd(a),
		logoutCmd(a),
		listCmd(a),
		createCmd(a),
		dropCmd(a),
		addCmd(a),
		updateCmd(a),
		removeCmd(a),
		clearCmd(a),
	)
	return root
}

func newKeyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "new-key",
		Short: "Resets the account key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("DEBUG:'rsm new-key' was used")
			cfg, err := a.store.Load()
			if err != nil {
				return err
			}
			client, err := rsm.NewClientWithoutToken()
			if err != nil {
				return err
			}
			return a.authFlow(client).NewKey(cfg)
		},
	}
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout from the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("DEBUG:'rsm logout' was used")
			client, err := rsm.NewClient(a.store)
			if err != nil {
				return err
			}
			return a.authFlow(client).Logout(a.cfg)
		},
	}
}

func listCmd(a *app) *cobra.Command {
	var group, sortBy string
	cmd := &cobra.Command{
		Use:   "list [tablename]",
		Short: "List tables with specs or table contents",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tablename := ""
			if len(args) == 1 {
				tablename = args[0]
			}
			if tablename == "" && (group != "" || sortBy != "") {
				return errors.New("--group and --sort-by require a tablename")
			}
			fmt.Printf("DEBUG: 'rsm list' was used, tablename is: %q, group is: %q, sort key is: %q\n", tablename, group, sortBy)
			client, err := rsm.NewClient(a.store)
			if err != nil {
				return err
			}
			var resp *rsm.Response
			if tablename == "" {
				resp, err = client.ListTables()
			} else {
				resp, err = client.ListTasks(tablename, group, sortBy)
			}
			if err != nil {
				return err
			}
			// Validate the success payload against the expected shape
			// before echoing it.
			if !resp.IsError() {
				if tablename == "" {
					_, err = resp.Tables()
				} else {
					_, err = resp.Tasks()
				}
				if err != nil {
					return err
				}
			}
			return resp.Print(os.Stdout)
		},
	}
	cmd.Flags().StringVarP(&group, "group", "g", "", "Specify the group to show")
	cmd.Flags().StringVarP(&sortBy, "sort-by", "s", "", "The key to sort the output by")
	return cmd
}

func createCmd(a *app) *cobra.Command {
	var hasDue bool
	cmd := &cobra.Command{
		Use:   "create TABLE",
		Short: "Creates a new table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("DEBUG:'rsm create' was used, tablename is: %q, and due is %v\n", args[0], hasDue)
			client, err := rsm.NewClient(a.store)
			if err != nil {
				return err
			}
			resp, err := client.CreateTable(args[0], hasDue)
			if err != nil {
				return err
			}
			return resp.Print(os.Stdout)
		},
	}
	cmd.Flags().BoolVarP(&hasDue, "due", "d", false, "Set if the table has due time, defaults to false")
	return cmd
}

func dropCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "drop TABLE",
		Short: "Deletes a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("DEBUG:'rsm drop' was used, tablename is: %q\n", args[0])
			client, err := rsm.NewClient(a.store)
			if err != nil {
				return err
			}
			resp, err := client.DropTable(args[0])
			if err != nil {
				return err
			}
			return resp.Print(os.Stdout)
		},
	}
}

// taskFlags are the shared add/update flags selecting the task body, due
// time, and group.
type taskFlags struct {
	task     string
	file     string
	line     uint16
	rangeArg string
	due      string
	group    string
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.task, "task", "t", "", "The task as text")
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "File from where to read the task")
	cmd.Flags().Uint16VarP(&f.line, "line", "l", 0, "Take the task from a specific line of the file")
	cmd.Flags().StringVarP(&f.rangeArg, "range", "r", "", "Take the task from a line range START..END of the file")
	cmd.Flags().StringVarP(&f.due, "due", "d", "", "The due of the task in one of the formats: 'hh:mm' or 'YYYY-MM-dd hh:mm'")
	cmd.Flags().StringVarP(&f.group, "group", "g", "", "The group of the task")
	cmd.MarkFlagsOneRequired("task", "file")
	cmd.MarkFlagsMutuallyExclusive("task", "file")
	cmd.MarkFlagsMutuallyExclusive("line", "range")
}

// payload resolves the task body and normalizes the due time into the
// request payload.
func (f *taskFlags) payload(cmd *cobra.Command) (rsm.TaskPayload, error) {
	var p rsm.TaskPayload
	var line *uint16
	if cmd.Flags().Changed("line") {
		if f.file == "" {
			return p, errors.New("--line requires --file")
		}
		line = &f.line
	}
	var rng *rsm.LineRange
	if f.rangeArg != "" {
		if f.file == "" {
			return p, errors.New("--range requires --file")
		}
		r, err := rsm.ParseLineRange(f.rangeArg)
		if err != nil {
			return p, err
		}
		rng = &r
	}
	body, err := rsm.ResolveInput(f.file, line, rng, f.task)
	if err != nil {
		return p, err
	}
	p.Description = body
	if f.due != "" {
		due, err := rsm.ParseDue(f.due)
		if err != nil {
			return p, err
		}
		p.Due = due
	}
	p.Group = f.group
	return p, nil
}

func addCmd(a *app) *cobra.Command {
	var flags taskFlags
	cmd := &cobra.Command{
		Use:   "add TABLE",
		Short: "Adds a task into a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("DEBUG: 'rsm add' was used, tablename is: %q, task is %q, file is %q, due is %q, group is %q\n",
				args[0], flags.task, flags.file, flags.due, flags.group)
			payload, err := flags.payload(cmd)
			if err != nil {
				return err
			}
			client, err := rsm.NewClient(a.store)
			if err != nil {
				return err
			}
			resp, err := client.AddTask(args[0], payload)
			if err != nil {
				return err
			}
			return resp.Print(os.Stdout)
		},
	}
	flags.register(cmd)
	return cmd
}

func updateCmd(a *app) *cobra.Command {
	var flags taskFlags
	cmd := &cobra.Command{
		Use:   "update TABLE DESC",
		Short: "Updates a task from a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("DEBUG: 'rsm update' was used, tablename is: %q, old_desc is: %q, task is %q, file is %q, due is %q, group is %q\n",
				args[0], args[1], flags.task, flags.file, flags.due, flags.group)
			payload, err := flags.payload(cmd)
			if err != nil {
				return err
			}
			client, err := rsm.NewClient(a.store)
			if err != nil {
				return err
			}
			resp, err := client.UpdateTask(args[0], args[1], payload)
			if err != nil {
				return err
			}
			return resp.Print(os.Stdout)
		},
	}
	flags.register(cmd)
	return cmd
}

func removeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove TABLE DESC",
		Short: "Removes a task from a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("DEBUG:'rsm remove' was used, tablename is: %q, desc is %q\n", args[0], args[1])
			client, err := rsm.NewClient(a.store)
			if err != nil {
				return err
			}
			resp, err := client.RemoveTask(args[0], args[1])
			if err != nil {
				return err
			}
			return resp.Print(os.Stdout)
		},
	}
}

func clearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear TABLE",
		Short: "Clears completely a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("DEBUG:'rsm clear' was used, tablename is: %q\n", args[0])
			client, err := rsm.NewClient(a.store)
			if err != nil {
				return err
			}
			resp, err := client.ClearTable(args[0])
			if err != nil {
				return err
			}
			return resp.Print(os.Stdout)
		},
	}
}
