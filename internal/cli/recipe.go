package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// NewRecipeCmd создаёт группу команд для управления рецептами.
func NewRecipeCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipe",
		Short: "Manage recipes",
	}

	cmd.AddCommand(
		newRecipeListCmd(clientFn, outputFn),
		newRecipeCreateCmd(clientFn, outputFn),
		newRecipeShowCmd(clientFn, outputFn),
		newRecipeUpdateCmd(clientFn, outputFn),
		newRecipeDeleteCmd(clientFn, outputFn),
		newRecipeValidateCmd(clientFn, outputFn),
		newRecipeSnapshotsCmd(clientFn, outputFn),
		newRecipeSnapshotCmd(clientFn, outputFn),
	)

	return cmd
}

func recipeRow(r RecipeResponse) []string {
	return []string{
		r.ID,
		r.Name,
		strconv.Itoa(r.Version),
		strconv.Itoa(len(r.Steps)),
		strconv.Itoa(r.DurationMin),
		r.UpdatedAt,
	}
}

var recipeHeaders = []string{"ID", "NAME", "VERSION", "STEPS", "DURATION_MIN", "UPDATED"}

func newRecipeListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all recipes",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			recipes, err := client.ListRecipes()
			if err != nil {
				return err
			}

			rows := make([][]string, len(recipes))
			for i, r := range recipes {
				rows[i] = recipeRow(r)
			}

			out.Print(recipeHeaders, rows, recipes)
			return nil
		},
	}
}

func newRecipeCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var name string
	var stepsFile string
	var materialsFile string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new recipe",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := CreateRecipeRequest{Name: name}

			if stepsFile != "" {
				steps, err := readJSONFile(stepsFile)
				if err != nil {
					return err
				}
				req.Steps = steps
			}
			if materialsFile != "" {
				materials, err := readJSONFile(materialsFile)
				if err != nil {
					return err
				}
				req.Materials = materials
			}

			recipe, err := client.CreateRecipe(req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Recipe created: %s", recipe.ID))
			out.Print(recipeHeaders, [][]string{recipeRow(*recipe)}, recipe)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Recipe name (required)")
	cmd.Flags().StringVar(&stepsFile, "steps-file", "", "Path to JSON file with steps")
	cmd.Flags().StringVar(&materialsFile, "materials-file", "", "Path to JSON file with materials")
	cmd.MarkFlagRequired("name")

	return cmd
}

func newRecipeShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show recipe details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			recipe, err := client.GetRecipe(args[0])
			if err != nil {
				return err
			}

			out.Print(recipeHeaders, [][]string{recipeRow(*recipe)}, recipe)
			return nil
		},
	}
}

func newRecipeUpdateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var name string
	var stepsFile string
	var materialsFile string

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a recipe (bumps its version)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := UpdateRecipeRequest{}
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if stepsFile != "" {
				steps, err := readJSONFile(stepsFile)
				if err != nil {
					return err
				}
				req.Steps = steps
			}
			if materialsFile != "" {
				materials, err := readJSONFile(materialsFile)
				if err != nil {
					return err
				}
				req.Materials = materials
			}

			recipe, err := client.UpdateRecipe(args[0], req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Recipe updated: %s (version %d)", recipe.ID, recipe.Version))
			out.Print(recipeHeaders, [][]string{recipeRow(*recipe)}, recipe)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New recipe name")
	cmd.Flags().StringVar(&stepsFile, "steps-file", "", "Path to JSON file with steps")
	cmd.Flags().StringVar(&materialsFile, "materials-file", "", "Path to JSON file with materials")

	return cmd
}

func newRecipeDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.DeleteRecipe(args[0]); err != nil {
				return err
			}

			out.Success("Recipe deleted: " + args[0])
			return nil
		},
	}
}

func newRecipeValidateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var stepsFile string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a step graph without saving",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			steps, err := readJSONFile(stepsFile)
			if err != nil {
				return err
			}

			result, err := client.ValidateSteps(steps)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Steps are valid, total duration %d min", result.DurationMin))
			out.Print(
				[]string{"DURATION_MIN"},
				[][]string{{strconv.Itoa(result.DurationMin)}},
				result,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&stepsFile, "steps-file", "", "Path to JSON file with steps (required)")
	cmd.MarkFlagRequired("steps-file")

	return cmd
}

func newRecipeSnapshotsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshots ID",
		Short: "List snapshots of a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			snaps, err := client.ListRecipeSnapshots(args[0])
			if err != nil {
				return err
			}

			headers := []string{"ID", "VERSION", "RECIPE_VERSION", "STEPS", "CREATED"}
			rows := make([][]string, len(snaps))
			for i, s := range snaps {
				rows[i] = []string{
					s.ID,
					strconv.Itoa(s.Version),
					strconv.Itoa(s.RecipeVersion),
					strconv.Itoa(len(s.Steps)),
					s.CreatedAt,
				}
			}

			out.Print(headers, rows, snaps)
			return nil
		},
	}
}

func newRecipeSnapshotCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot ID",
		Short: "Get or create the current snapshot of a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			snap, err := client.SnapshotRecipe(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"ID", "VERSION", "RECIPE_VERSION", "CREATED"},
				[][]string{{snap.ID, strconv.Itoa(snap.Version), strconv.Itoa(snap.RecipeVersion), snap.CreatedAt}},
				snap,
			)
			return nil
		},
	}
}

// readJSONFile читает файл и проверяет, что в нём валидный JSON.
func readJSONFile(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%s: not a valid JSON document", path)
	}
	return data, nil
}
