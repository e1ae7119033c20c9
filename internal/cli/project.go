package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewProjectCmd создаёт группу команд для управления заказами.
func NewProjectCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage production projects",
	}

	cmd.AddCommand(
		newProjectListCmd(clientFn, outputFn),
		newProjectCreateCmd(clientFn, outputFn),
		newProjectShowCmd(clientFn, outputFn),
		newProjectDeleteCmd(clientFn, outputFn),
		newProjectActivateCmd(clientFn, outputFn),
		newProjectCancelCmd(clientFn, outputFn),
		newProjectTasksCmd(clientFn, outputFn),
	)

	return cmd
}

var projectHeaders = []string{"ID", "NAME", "STATUS", "PRODUCT_LINES", "RECIPE_LINES", "CREATED"}

func projectRow(p ProjectResponse) []string {
	return []string{
		p.ID,
		p.Name,
		p.Status,
		strconv.Itoa(len(p.ProductLines)),
		strconv.Itoa(len(p.RecipeLines)),
		p.CreatedAt,
	}
}

func newProjectListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			projects, err := client.ListProjects()
			if err != nil {
				return err
			}

			rows := make([][]string, len(projects))
			for i, p := range projects {
				rows[i] = projectRow(p)
			}

			out.Print(projectHeaders, rows, projects)
			return nil
		},
	}
}

func newProjectCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var name string
	var products []string
	var recipes []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new project in PLANNING",
		Long: `Create a new project in PLANNING.

Lines are passed as repeated flags in the form ID:QUANTITY:

  fabrica project create --name "Batch 42" --product 9f…:10 --recipe 1a…:5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := CreateProjectRequest{Name: name}

			for _, spec := range products {
				id, qty, err := parseIDQuantity(spec)
				if err != nil {
					return fmt.Errorf("invalid --product %q: %w", spec, err)
				}
				req.ProductLines = append(req.ProductLines, LineInput{ProductID: id, TargetQuantity: qty})
			}
			for _, spec := range recipes {
				id, qty, err := parseIDQuantity(spec)
				if err != nil {
					return fmt.Errorf("invalid --recipe %q: %w", spec, err)
				}
				req.RecipeLines = append(req.RecipeLines, LineInput{RecipeID: id, TargetQuantity: qty})
			}

			project, err := client.CreateProject(req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Project created: %s", project.ID))
			out.Print(projectHeaders, [][]string{projectRow(*project)}, project)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name (required)")
	cmd.Flags().StringArrayVar(&products, "product", nil, "Product line PRODUCT_ID:QUANTITY (repeatable)")
	cmd.Flags().StringArrayVar(&recipes, "recipe", nil, "Recipe line RECIPE_ID:QUANTITY (repeatable)")
	cmd.MarkFlagRequired("name")

	return cmd
}

func newProjectShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show project details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			project, err := client.GetProject(args[0])
			if err != nil {
				return err
			}

			out.Print(projectHeaders, [][]string{projectRow(*project)}, project)
			return nil
		},
	}
}

func newProjectDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.DeleteProject(args[0]); err != nil {
				return err
			}

			out.Success("Project deleted: " + args[0])
			return nil
		},
	}
}

func newProjectActivateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "activate ID",
		Short: "Activate a project and fan out tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			result, err := client.ActivateProject(args[0])
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Project activated: %s, %d tasks created",
				result.Project.ID, result.TasksCreated))
			out.Print(projectHeaders, [][]string{projectRow(result.Project)}, result)
			return nil
		},
	}
}

func newProjectCancelCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel ID",
		Short: "Cancel a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			project, err := client.CancelProject(args[0])
			if err != nil {
				return err
			}

			out.Success("Project cancelled: " + project.ID)
			out.Print(projectHeaders, [][]string{projectRow(*project)}, project)
			return nil
		},
	}
}

func newProjectTasksCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "tasks ID",
		Short: "List tasks of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			tasks, err := client.ListProjectTasks(args[0])
			if err != nil {
				return err
			}

			headers := []string{"ID", "STEP", "EXECUTION", "STATUS", "LAST", "CREATED"}
			rows := make([][]string, len(tasks))
			for i, t := range tasks {
				rows[i] = []string{
					t.ID,
					t.StepID,
					fmt.Sprintf("%d/%d", t.ExecutionNumber, t.TotalExecutions),
					t.Status,
					strconv.FormatBool(t.IsLastStep),
					t.CreatedAt,
				}
			}

			out.Print(headers, rows, tasks)
			return nil
		},
	}
}
